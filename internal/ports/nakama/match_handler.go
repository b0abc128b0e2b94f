package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/domain"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label

	labelLobby   = "lobby"
	labelPlaying = "playing"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          []string                    `json:"seats"`         // User IDs in seat order, empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`    // Seat index of the match owner
	Tick           int64                       `json:"tick"`          // Current tick of the match
	GamesPlayed    int                         `json:"games_played"`  // Completed games in this match
	Presences      map[string]runtime.Presence `json:"-"`             // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`             // Game use-cases
	Game           *domain.Game                `json:"-"`             // Current active game state (nil if in lobby)
	Tickets        *app.TicketService          `json:"-"`             // Join ticket checks, disabled when nil
	TurnDuration   int                         `json:"turn_duration"` // Seconds a human has before an automatic pass
	TurnUserID     string                      `json:"turn_user_id"`  // Player the turn timer is running for
	TurnDeadline   int64                       `json:"turn_deadline"` // Tick when the current human turn times out

	BotsEnabled          bool                  `json:"bots_enabled"`            // Whether AI players are allowed
	BotLevel             bot.BotLevel          `json:"bot_level"`               // Strategy for bots without their own level
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// seatOf returns the seat index of userID or -1.
func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// connectedSeats returns the seats with disconnected humans blanked out.
// A human who drops mid-game keeps their seat until the game ends.
func (ms *MatchState) connectedSeats() []string {
	out := make([]string, len(ms.Seats))
	for i, seat := range ms.Seats {
		if seat == "" {
			continue
		}
		if _, ok := ms.Presences[seat]; ok || isBotUserId(seat) {
			out[i] = seat
		}
	}
	return out
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// newMatchState builds lobby state from the loaded game config and runtime env.
func newMatchState(cfg *config.GameConfig, env map[string]string) (*MatchState, error) {
	service, err := app.NewServiceFromConfig(nil, cfg)
	if err != nil {
		return nil, err
	}

	seats := cfg.MaxPlayers
	if seats <= 0 {
		seats = DefaultSeats
	}

	state := &MatchState{
		Seats:            make([]string, seats),
		OwnerSeat:        -1,
		Presences:        make(map[string]runtime.Presence),
		App:              service,
		TurnDuration:     cfg.TurnDurationSeconds,
		BotsEnabled:      cfg.Bots.Enabled,
		BotLevel:         bot.BotLevel(cfg.Bots.Level),
		BotMinDelay:      cfg.Bots.MinDelaySeconds,
		BotMaxDelay:      cfg.Bots.MaxDelaySeconds,
		BotAutoFillDelay: cfg.Bots.AutoFillDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
	}

	if val, ok := env[EnvBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env[EnvBotMinDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env[EnvBotMaxDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env[EnvBotAutoFillDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if secret := env[EnvTicketSecret]; secret != "" {
		state.Tickets = app.NewTicketService(secret, MatchNameGdy, 0)
	}
	return state, nil
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	state, err := newMatchState(config.GetGameConfig(), env)
	if err != nil {
		logger.Error("MatchInit: Invalid game config: %v", err)
		return nil, 0, ""
	}
	state.Tick = time.Now().Unix()

	label, err := encodeLabel(state.GetOpenSeatsCount(), labelLobby)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // one tick per second drives bot delays and the turn timer
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if matchState.Tickets.Enabled() {
		matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
		if err := matchState.Tickets.VerifyTicket(metadata[MetadataTicket], userID, matchID); err != nil {
			logger.Warn("MatchJoinAttempt: Rejected %s: %v", userID, err)
			return state, false, "invalid ticket"
		}
	}

	// Seated players may always reconnect.
	if matchState.seatOf(userID) >= 0 {
		return state, true, ""
	}
	if matchState.Game != nil {
		return state, false, "Game in progress"
	}

	// Allow join if there is an empty seat or a bot to replace
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		mh.seatPlayer(matchState, logger, p.GetUserId())
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	// A reconnecting player needs their hand again.
	if matchState.Game != nil {
		for _, p := range presences {
			mh.sendHand(matchState, dispatcher, logger, p.GetUserId())
		}
	}

	return matchState
}

// seatPlayer assigns userID an empty seat, or a bot's seat in the lobby.
func (mh *matchHandler) seatPlayer(state *MatchState, logger runtime.Logger, userID string) bool {
	if state.seatOf(userID) >= 0 {
		return true
	}
	for i, seat := range state.Seats {
		if seat == "" {
			state.Seats[i] = userID
			return true
		}
	}
	if state.Game == nil {
		for i, seat := range state.Seats {
			if isBotUserId(seat) {
				logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seat, userID, i)
				delete(state.Bots, seat)
				state.Seats[i] = userID
				return true
			}
		}
	}
	logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
	return false
}

// ensureOwner keeps the owner seat on a connected human.
func (mh *matchHandler) ensureOwner(state *MatchState, logger runtime.Logger) {
	seats := state.connectedSeats()
	if isHumanSeat(seats, state.OwnerSeat) {
		return
	}
	state.OwnerSeat = findFirstHumanSeat(seats)
	if state.OwnerSeat >= 0 {
		logger.Debug("Owner set to human seat %d.", state.OwnerSeat)
	}
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if matchState.Game == nil {
			if i := matchState.seatOf(userID); i >= 0 {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, i)
			}
		} else {
			logger.Info("MatchLeave: User %s dropped mid-game, seat kept.", userID)
		}
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, []app.Event{{
			Kind:    app.EventPlayerLeft,
			Payload: app.PlayerLeftPayload{UserID: userID},
		}})
	}

	if shouldTerminateNoHumans(matchState.connectedSeats()) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg, false)
		case OpRequestNewGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg, true)
		case OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processTurnTimer(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// processTurnTimer passes for a human who lets the turn run out.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying || state.TurnDuration <= 0 {
		return
	}
	current := state.Game.CurrentPlayer().UserID
	if isBotUserId(current) {
		state.TurnUserID = ""
		return
	}
	if current != state.TurnUserID {
		state.TurnUserID = current
		state.TurnDeadline = state.Tick + int64(state.TurnDuration)
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}

	logger.Info("processTurnTimer: %s ran out of time, passing.", current)
	events, err := state.App.PassTurn(state.Game, current)
	if err != nil {
		logger.Error("processTurnTimer: Failed to pass for %s: %v", current, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Game == nil {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				if mh.fillWithBots(state, logger) > 0 {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	if state.Game.Phase != domain.PhasePlaying {
		return
	}
	currentUserID := state.Game.CurrentPlayer().UserID
	if !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if span := state.BotMaxDelay - state.BotMinDelay; span > 0 {
			delay += rand.Intn(span + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, err := mh.agentFor(state, currentUserID)
	if err != nil {
		logger.Error("processBots: Failed to create agent for %s: %v", currentUserID, err)
		return
	}

	move, err := agent.Play(state.Game)
	if err != nil {
		logger.Warn("processBots: Bot %s failed to calculate move, passing: %v", currentUserID, err)
	}

	if !move.Pass {
		events, err := state.App.PlayCards(state.Game, currentUserID, move.Cards)
		if err == nil {
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
			return
		}
		logger.Warn("processBots: Bot %s play %v refused, passing: %v", currentUserID, move.Cards, err)
	}

	events, err := state.App.PassTurn(state.Game, currentUserID)
	if err != nil {
		logger.Error("processBots: Bot %s failed to pass: %v", currentUserID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// fillWithBots seats a bot in every empty seat and returns how many were added.
func (mh *matchHandler) fillWithBots(state *MatchState, logger runtime.Logger) int {
	added := 0
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.GetBotIdentity(i)
		if state.seatOf(identity.UserID) >= 0 {
			continue
		}
		if _, err := mh.agentFor(state, identity.UserID); err != nil {
			logger.Error("Failed to create bot agent for %s: %v", identity.UserID, err)
			continue
		}
		state.Seats[i] = identity.UserID
		logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
		added++
	}
	return added
}

func (mh *matchHandler) agentFor(state *MatchState, userID string) (*bot.Agent, error) {
	if agent, ok := state.Bots[userID]; ok {
		return agent, nil
	}
	agent, err := bot.NewAgent(userID, state.BotLevel)
	if err != nil {
		return nil, err
	}
	state.Bots[userID] = agent
	return agent, nil
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]interface{}, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		avatar := 0
		_, connected := state.Presences[userID]
		if p, ok := state.Presences[userID]; ok {
			displayName = p.GetUsername()
		} else if identity, ok := bot.GetBotConfig(userID); ok {
			displayName = identity.DisplayName
			avatar = identity.AvatarIndex
			connected = true
		}

		cardsRemaining := 0
		if state.Game != nil {
			if p, ok := state.Game.Player(userID); ok {
				cardsRemaining = len(p.Hand)
			}
		}

		players = append(players, map[string]interface{}{
			"user_id":         userID,
			"seat":            i,
			"is_owner":        i == state.OwnerSeat,
			"is_bot":          isBotUserId(userID),
			"connected":       connected,
			"cards_remaining": cardsRemaining,
			"display_name":    displayName,
			"avatar_index":    avatar,
		})
	}

	seats := make([]interface{}, len(state.Seats))
	for i, s := range state.Seats {
		seats[i] = s
	}

	snapshot := map[string]interface{}{
		"seats":        seats,
		"owner_seat":   state.OwnerSeat,
		"tick":         state.Tick,
		"games_played": state.GamesPlayed,
		"players":      players,
		"phase":        string(domain.PhaseLobby),
	}
	if g := state.Game; g != nil {
		snapshot["game_id"] = g.ID
		snapshot["phase"] = string(g.Phase)
		snapshot["stock_size"] = len(g.Stock)
		if g.Phase == domain.PhasePlaying {
			snapshot["current_turn_user_id"] = g.CurrentPlayer().UserID
		}
		if play, ok := g.Table.Active(); ok {
			snapshot["active"] = map[string]interface{}{
				"cards": cardsToValue(play.Cards),
				"shape": shapeToValue(play.Shape),
			}
		}
	}

	data, err := encodeStruct(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, data, nil, nil, true)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, rematch bool) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d, rematch=%t)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount(), rematch)

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the match owner can start a game")
		return
	}
	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, 409, "game already in progress")
		return
	}
	if rematch && state.GamesPlayed == 0 {
		mh.sendError(state, dispatcher, logger, senderID, 409, "no game to replay")
		return
	}

	game, events, err := state.App.StartGame(state.Seats)
	if err != nil {
		logger.Warn("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Game = game
	state.TurnUserID = ""
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game %s started with %d players.", game.ID, len(game.Players))
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game == nil {
		logger.Warn("handlePlayCards: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, 409, app.ErrGameNotStarted.Error())
		return
	}

	cards, err := cardsFromRequest(msg.GetData())
	if err != nil {
		logger.Warn("handlePlayCards: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.PlayCards(state.Game, senderID, cards)
	if err != nil {
		logger.Warn("handlePlayCards: User %s failed to play %v: %v", senderID, cards, err)
		if len(events) == 0 {
			mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
			return
		}
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game == nil {
		logger.Warn("handlePassTurn: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, 409, app.ErrGameNotStarted.Error())
		return
	}

	events, err := state.App.PassTurn(state.Game, senderID)
	if err != nil {
		logger.Warn("handlePassTurn: User %s failed to pass turn: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// errorCode maps turn errors to the codes sent in OpGameError.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotYourTurn):
		return 409
	case errors.Is(err, domain.ErrUnknownPlayer):
		return 403
	default:
		return 400
	}
}

// dispatchEvents feeds events to the bots and sends them to connected players.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		for id, agent := range state.Bots {
			if len(ev.Recipients) == 0 || containsUser(ev.Recipients, id) {
				agent.OnGameEvent(ev)
			}
		}

		mh.broadcastEvent(state, dispatcher, logger, ev)

		switch ev.Kind {
		case app.EventCardPlayed, app.EventTurnPassed:
			state.TurnUserID = ""
		case app.EventGameEnded:
			mh.finishGame(state, dispatcher, logger)
		}
	}
}

// broadcastEvent encodes one app event and sends it to its recipients.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Private events for bots or disconnected players go nowhere.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// finishGame returns the match to the lobby and frees seats of players who left.
func (mh *matchHandler) finishGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.Game = nil
	state.GamesPlayed++
	state.TurnUserID = ""
	state.BotWaitUntil = 0

	for i, seat := range state.Seats {
		if seat == "" || isBotUserId(seat) {
			continue
		}
		if _, ok := state.Presences[seat]; !ok {
			logger.Debug("finishGame: Freeing seat %d of disconnected user %s.", i, seat)
			state.Seats[i] = ""
		}
	}

	mh.ensureOwner(state, logger)
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

// sendHand privately resends a player's hand, e.g. after reconnecting.
func (mh *matchHandler) sendHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	p, ok := state.Game.Player(userID)
	if !ok {
		return
	}
	mh.broadcastEvent(state, dispatcher, logger, app.Event{
		Kind:       app.EventHandDealt,
		Payload:    app.HandDealtPayload{UserID: userID, Hand: append([]domain.Card(nil), p.Hand...)},
		Recipients: []string{userID},
	})
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := encodeError(code, message)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	matchState := labelLobby
	if state.Game != nil {
		matchState = labelPlaying
	}

	label, err := encodeLabel(state.GetOpenSeatsCount(), matchState)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func containsUser(ids []string, userID string) bool {
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}
