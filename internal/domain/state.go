package domain

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active game state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a game concludes.
	PhaseEnded Phase = "ended"
)

// Player holds state for a participant in a game.
type Player struct {
	UserID   string
	Seat     int // 0-based, turn order
	IsDealer bool
	Hand     []Card
}
