package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameGdy is the authoritative match handler name registered with Nakama.
	MatchNameGdy = "gdy_match"

	// LabelGame tags our matches so the quick match query ignores other modules.
	LabelGame = "gdy"

	// DefaultSeats is used when no game config has been loaded.
	DefaultSeats = 4
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlayCards      int64 = 2
	OpPassTurn       int64 = 3
	OpRequestNewGame int64 = 4

	// Server -> Client events
	OpPlayerJoined int64 = 101 // match snapshot
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpCardPlayed   int64 = 105
	OpTurnPassed   int64 = 106
	OpGameEnded    int64 = 107
	OpPlayRejected int64 = 108 // send privately
	OpCardDrawn    int64 = 109 // send privately
	OpGameError    int64 = 110
)

// Runtime env keys read at match init.
const (
	EnvBotsEnabled      = "gdy_bots_enabled"
	EnvBotMinDelay      = "gdy_bot_min_delay_sec"
	EnvBotMaxDelay      = "gdy_bot_max_delay_sec"
	EnvBotAutoFillDelay = "gdy_bot_auto_fill_delay_sec"
	EnvTicketSecret     = "gdy_ticket_secret"
	EnvConfigPath       = "gdy_config_path"
	EnvBotIdentities    = "gdy_bot_identities_path"
)

// MetadataTicket is the join metadata key carrying a quick match ticket.
const MetadataTicket = "ticket"
