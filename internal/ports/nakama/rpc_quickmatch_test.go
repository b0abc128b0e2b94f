package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/ritksm/gdy/internal/app"
)

// mockNakama implements the match listing calls used by quick match.
type mockNakama struct {
	runtime.NakamaModule
	matches    []*api.Match
	lastQuery  string
	created    int
	newMatchID string
}

func (m *mockNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	m.lastQuery = query
	return m.matches, nil
}

func (m *mockNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	m.created++
	return m.newMatchID, nil
}

func quickMatch(t *testing.T, ctx context.Context, nk *mockNakama) QuickMatchResponse {
	t.Helper()
	raw, err := rpcQuickMatch(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpcQuickMatch() error = %v", err)
	}
	var resp QuickMatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return resp
}

func TestRpcQuickMatch(t *testing.T) {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "user-1")

	t.Run("JoinsExistingLobby", func(t *testing.T) {
		nk := &mockNakama{matches: []*api.Match{{MatchId: "match-1"}}}
		resp := quickMatch(t, ctx, nk)
		if resp.MatchID != "match-1" || resp.IsNew || nk.created != 0 {
			t.Fatalf("resp = %+v, created = %d", resp, nk.created)
		}
		if nk.lastQuery != quickMatchQuery() {
			t.Fatalf("query = %q", nk.lastQuery)
		}
		if resp.Ticket != "" {
			t.Fatalf("no ticket expected without a secret")
		}
	})

	t.Run("CreatesMatch", func(t *testing.T) {
		nk := &mockNakama{newMatchID: "match-new"}
		resp := quickMatch(t, ctx, nk)
		if resp.MatchID != "match-new" || !resp.IsNew || nk.created != 1 {
			t.Fatalf("resp = %+v, created = %d", resp, nk.created)
		}
	})

	t.Run("IssuesTicket", func(t *testing.T) {
		env := map[string]string{EnvTicketSecret: "s3cret"}
		ctx := context.WithValue(ctx, runtime.RUNTIME_CTX_ENV, env)
		nk := &mockNakama{matches: []*api.Match{{MatchId: "match-1"}}}

		resp := quickMatch(t, ctx, nk)
		if resp.Ticket == "" {
			t.Fatalf("ticket expected when a secret is configured")
		}
		tickets := app.NewTicketService("s3cret", MatchNameGdy, 0)
		if err := tickets.VerifyTicket(resp.Ticket, "user-1", "match-1"); err != nil {
			t.Fatalf("VerifyTicket() error = %v", err)
		}
	})
}

func TestRpcQuickMatch_RequiresUser(t *testing.T) {
	if _, err := rpcQuickMatch(context.Background(), noopLogger{}, nil, &mockNakama{}, ""); err == nil {
		t.Fatalf("rpcQuickMatch() should fail without a user")
	}
}
