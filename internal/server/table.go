package server

import (
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/domain"
	"github.com/ritksm/gdy/internal/protocol"
)

// seat is one place at a table. A seat with an agent is played by a bot,
// including a human's seat taken over after they disconnect.
type seat struct {
	id     string
	name   string
	client *Client
	agent  *bot.Agent
}

// Table is a lobby that turns into a game once the owner starts it.
type Table struct {
	Code       string
	seats      []*seat
	ownerID    string
	maxPlayers int
	game       *domain.Game
}

func newTable(code string, maxPlayers int) *Table {
	return &Table{Code: code, maxPlayers: maxPlayers}
}

func (t *Table) full() bool {
	return len(t.seats) >= t.maxPlayers
}

func (t *Table) playing() bool {
	return t.game != nil && t.game.Phase == domain.PhasePlaying
}

func (t *Table) seatByID(id string) *seat {
	for _, s := range t.seats {
		if s.id == id {
			return s
		}
	}
	return nil
}

func (t *Table) seatOf(c *Client) *seat {
	for _, s := range t.seats {
		if s.client == c {
			return s
		}
	}
	return nil
}

func (t *Table) nameTaken(name string) bool {
	for _, s := range t.seats {
		if s.name == name {
			return true
		}
	}
	return false
}

func (t *Table) playerIDs() []string {
	ids := make([]string, len(t.seats))
	for i, s := range t.seats {
		ids[i] = s.id
	}
	return ids
}

// humans returns the seats with a connected client.
func (t *Table) humans() []*seat {
	var out []*seat
	for _, s := range t.seats {
		if s.client != nil {
			out = append(out, s)
		}
	}
	return out
}

// removeSeat drops a lobby seat and hands ownership to the next human.
func (t *Table) removeSeat(id string) {
	kept := t.seats[:0]
	for _, s := range t.seats {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	t.seats = kept
	t.ensureOwner()
}

func (t *Table) ensureOwner() {
	if s := t.seatByID(t.ownerID); s != nil && s.client != nil {
		return
	}
	t.ownerID = ""
	if humans := t.humans(); len(humans) > 0 {
		t.ownerID = humans[0].id
	}
}

// snapshot describes the table for table_update messages.
func (t *Table) snapshot() protocol.TableUpdatePayload {
	update := protocol.TableUpdatePayload{
		Code:    t.Code,
		Phase:   domain.PhaseLobby,
		OwnerID: t.ownerID,
		Players: make([]protocol.PlayerInfo, 0, len(t.seats)),
	}
	for i, s := range t.seats {
		info := protocol.PlayerInfo{ID: s.id, Name: s.name, Seat: i, Bot: s.agent != nil}
		if t.game != nil {
			if p, ok := t.game.Player(s.id); ok {
				info.CardsLeft = len(p.Hand)
			}
		}
		update.Players = append(update.Players, info)
	}

	if t.game == nil {
		return update
	}
	update.Phase = t.game.Phase
	update.StockSize = len(t.game.Stock)
	if t.game.Phase == domain.PhasePlaying {
		update.CurrentTurnID = t.game.CurrentPlayer().UserID
	}
	if play, ok := t.game.Table.Active(); ok {
		update.Active = &protocol.ActivePlay{Cards: protocol.CardCodes(play.Cards), Shape: play.Shape}
	}
	return update
}
