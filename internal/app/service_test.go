package app

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/domain"
)

func mustCards(t *testing.T, s string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(s)
	if err != nil {
		t.Fatalf("ParseCards(%q): %v", s, err)
	}
	return cards
}

func TestStartGameDealsHands(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	svc := NewService(rng)

	// Empty seats are skipped.
	game, evs, err := svc.StartGame([]string{"u1", "", "u2", ""})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if game.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", game.Phase)
	}
	if game.ID == "" {
		t.Fatalf("game should be assigned an id")
	}

	handEvents := 0
	var started *GameStartedPayload
	for _, ev := range evs {
		switch ev.Kind {
		case EventHandDealt:
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Fatalf("hand must be sent privately, recipients = %v", ev.Recipients)
			}
			want := domain.HandSize
			if payload.UserID == game.Dealer().UserID {
				want = domain.DealerHandSize
			}
			if len(payload.Hand) != want {
				t.Fatalf("hand size = %d, want %d", len(payload.Hand), want)
			}
		case EventGameStarted:
			p := ev.Payload.(GameStartedPayload)
			started = &p
		}
	}
	if handEvents != 2 {
		t.Fatalf("hand events = %d, want 2", handEvents)
	}
	if started == nil || started.GameID != game.ID || started.FirstTurnUserID != started.DealerUserID {
		t.Fatalf("unexpected game started payload: %+v", started)
	}
	if started.StockSize != 46-domain.DealerHandSize-domain.HandSize {
		t.Fatalf("stock size = %d", started.StockSize)
	}
}

func TestStartGameTooFewPlayers(t *testing.T) {
	svc := NewService(nil)
	if _, _, err := svc.StartGame([]string{"u1", "", "", ""}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("StartGame() error = %v, want %v", err, ErrTooFewPlayers)
	}
}

func TestStartGameConfiguredMinPlayers(t *testing.T) {
	cfg := config.Default()
	cfg.MinPlayers = 3
	svc, err := NewServiceFromConfig(nil, cfg)
	if err != nil {
		t.Fatalf("NewServiceFromConfig() error = %v", err)
	}

	tests := []struct {
		name    string
		seats   []string
		wantErr bool
	}{
		{name: "two seated", seats: []string{"a", "b", "", ""}, wantErr: true},
		{name: "three seated", seats: []string{"a", "b", "c", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, _, err := svc.StartGame(tt.seats)
			if tt.wantErr {
				if !errors.Is(err, ErrTooFewPlayers) || game != nil {
					t.Fatalf("StartGame() = %v, %v, want %v", game, err, ErrTooFewPlayers)
				}
				return
			}
			if err != nil {
				t.Fatalf("StartGame() error = %v", err)
			}
			if len(game.Players) != 3 {
				t.Fatalf("players = %d, want 3", len(game.Players))
			}
		})
	}
}

func TestNewServiceFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TripleRule = "higher"
	svc, err := NewServiceFromConfig(nil, cfg)
	if err != nil {
		t.Fatalf("NewServiceFromConfig() error = %v", err)
	}
	if svc.Rules().Triple != domain.TripleRuleHigher {
		t.Fatalf("rules = %+v", svc.Rules())
	}

	cfg.PairRun = "loose"
	if _, err := NewServiceFromConfig(nil, cfg); err == nil {
		t.Fatalf("expected error for unknown pair run policy")
	}
}

func startTwoPlayer(t *testing.T) (*Service, *domain.Game, *domain.Player, *domain.Player) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(99)))
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	first := game.CurrentPlayer()
	second := game.Players[(game.CurrentSeat+1)%2]
	return svc, game, first, second
}

func TestPlayCardsAndEnd(t *testing.T) {
	svc, game, first, second := startTwoPlayer(t)
	first.Hand = mustCards(t, "5S 9H")
	second.Hand = mustCards(t, "6D")

	evs, err := svc.PlayCards(game, first.UserID, mustCards(t, "5S"))
	if err != nil {
		t.Fatalf("play cards error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventCardPlayed {
		t.Fatalf("events = %+v", evs)
	}
	played := evs[0].Payload.(CardPlayedPayload)
	if played.NextTurnUserID != second.UserID || played.CardsLeft != 1 {
		t.Fatalf("unexpected payload: %+v", played)
	}
	if played.Shape != (domain.Shape{Kind: domain.Single, Rank: 5}) {
		t.Fatalf("shape = %v", played.Shape)
	}

	evs, err = svc.PlayCards(game, second.UserID, mustCards(t, "6D"))
	if err != nil {
		t.Fatalf("play cards error: %v", err)
	}
	if game.Phase != domain.PhaseEnded {
		t.Fatalf("game should have ended when a hand emptied")
	}
	last := evs[len(evs)-1]
	if last.Kind != EventGameEnded {
		t.Fatalf("expected game ended event, got %s", last.Kind)
	}
	if ended := last.Payload.(GameEndedPayload); ended.WinnerUserID != second.UserID || ended.Tie {
		t.Fatalf("unexpected game ended payload: %+v", ended)
	}
}

func TestPlayCardsRejected(t *testing.T) {
	svc, game, first, _ := startTwoPlayer(t)
	first.Hand = mustCards(t, "5S 7H 2C 2D JK")

	tests := []struct {
		name   string
		cards  string
		reason domain.RejectionReason
	}{
		{name: "no shape", cards: "5S 7H", reason: domain.ReasonNotARecognizedShape},
		{name: "joker for a 2", cards: "2C 2D JK", reason: domain.ReasonIllegalWildcardUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs, err := svc.PlayCards(game, first.UserID, mustCards(t, tt.cards))
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if len(evs) != 1 || evs[0].Kind != EventPlayRejected {
				t.Fatalf("events = %+v", evs)
			}
			p := evs[0].Payload.(PlayRejectedPayload)
			if p.Reason != tt.reason {
				t.Fatalf("reason = %s, want %s", p.Reason, tt.reason)
			}
			if len(evs[0].Recipients) != 1 || evs[0].Recipients[0] != first.UserID {
				t.Fatalf("rejection must be private, recipients = %v", evs[0].Recipients)
			}
			if len(first.Hand) != 5 || game.CurrentPlayer() != first {
				t.Fatalf("rejected play must keep hand and turn")
			}
		})
	}
}

func TestPlayCardsOutOfTurn(t *testing.T) {
	svc, game, _, second := startTwoPlayer(t)
	evs, err := svc.PlayCards(game, second.UserID, second.Hand[:1])
	if !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("PlayCards() error = %v, want %v", err, domain.ErrNotYourTurn)
	}
	if evs != nil {
		t.Fatalf("turn errors should not emit events: %+v", evs)
	}
	if _, err := svc.PlayCards(nil, second.UserID, nil); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("PlayCards(nil) error = %v", err)
	}
}

func TestPassTurnDrawsPrivately(t *testing.T) {
	svc, game, first, second := startTwoPlayer(t)
	game.Stock = mustCards(t, "3S 4S")

	evs, err := svc.PassTurn(game, first.UserID)
	if err != nil {
		t.Fatalf("pass turn error: %v", err)
	}
	if len(evs) != 2 || evs[0].Kind != EventCardDrawn || evs[1].Kind != EventTurnPassed {
		t.Fatalf("events = %+v", evs)
	}
	if drawn := evs[0].Payload.(CardDrawnPayload); drawn.Card != mustCards(t, "3S")[0] {
		t.Fatalf("drawn = %v", drawn.Card)
	}
	if len(evs[0].Recipients) != 1 || evs[0].Recipients[0] != first.UserID {
		t.Fatalf("draw must be private")
	}
	if passed := evs[1].Payload.(TurnPassedPayload); passed.NextTurnUserID != second.UserID || passed.StockSize != 1 {
		t.Fatalf("unexpected pass payload: %+v", passed)
	}

	evs, err = svc.PassTurn(game, second.UserID)
	if err != nil {
		t.Fatalf("pass turn error: %v", err)
	}
	last := evs[len(evs)-1]
	if last.Kind != EventGameEnded || !last.Payload.(GameEndedPayload).Tie {
		t.Fatalf("empty stock should end in a tie, events = %+v", evs)
	}
}
