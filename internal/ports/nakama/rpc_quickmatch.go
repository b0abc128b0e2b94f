package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/config"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	// Ticket must be passed as join metadata when the server requires tickets.
	Ticket string `json:"ticket,omitempty"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// quickMatchQuery selects our lobbies that still have a free seat.
func quickMatchQuery() string {
	return fmt.Sprintf("+label.%s:>=1 +label.game:%s +label.state:%s", MatchLabelKey_OpenSeats, LabelGame, labelLobby)
}

func ticketsFromEnv(ctx context.Context) *app.TicketService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if secret := env[EnvTicketSecret]; secret != "" {
		return app.NewTicketService(secret, MatchNameGdy, 0)
	}
	return nil
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16)
	}

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := config.GetGameConfig().MaxPlayers - 1

	resp := QuickMatchResponse{}
	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat/owner assignment happens in MatchJoin (server-authoritative).
		resp.MatchID, err = nk.MatchCreate(ctx, MatchNameGdy, map[string]interface{}{})
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
			return "", err
		}
		resp.IsNew = true
		logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, resp.MatchID)
	}

	if tickets := ticketsFromEnv(ctx); tickets.Enabled() {
		resp.Ticket, err = tickets.GenerateTicket(userID, resp.MatchID)
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: Failed to issue ticket: %v", userID, err)
			return "", runtime.NewError("failed to issue ticket", 13)
		}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
