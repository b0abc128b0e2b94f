package server

import (
	"math/rand"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/domain"
	"github.com/ritksm/gdy/internal/protocol"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

const tableCodeLength = 5

// Hub owns every client and table. All state is touched only by the Run
// goroutine, so handlers need no locks.
type Hub struct {
	clients        map[*Client]bool
	tables         map[string]*Table
	clientTable    map[*Client]*Table
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	quit           chan struct{}

	service    *app.Service
	botLevel   bot.BotLevel
	maxPlayers int
	rng        *rand.Rand
}

// Options configure a Hub. Zero values pick the defaults.
type Options struct {
	MaxPlayers int
	BotLevel   bot.BotLevel
	Rand       *rand.Rand
}

// NewHub creates a hub dealing games through service.
func NewHub(service *app.Service, opts Options) *Hub {
	if opts.MaxPlayers < domain.MinPlayers || opts.MaxPlayers > domain.MaxPlayers {
		opts.MaxPlayers = 4
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		tables:         make(map[string]*Table),
		clientTable:    make(map[*Client]*Table),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		quit:           make(chan struct{}),
		service:        service,
		botLevel:       opts.BotLevel,
		maxPlayers:     opts.MaxPlayers,
		rng:            opts.Rand,
	}
}

// Run starts the Hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.processMessage:
			h.handleMessage(msg.client, msg.message)
		case <-h.quit:
			return
		}
	}
}

// Stop ends Run.
func (h *Hub) Stop() {
	close(h.quit)
}

// requestUnregister hands client to Run for removal. It gives up once the hub
// has stopped.
func (h *Hub) requestUnregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// submit hands a client message to Run. It reports false once the hub has
// stopped.
func (h *Hub) submit(msg clientMessage) bool {
	select {
	case h.processMessage <- msg:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) addClient(client *Client) {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	h.clients[client] = true
	glog.Infof("Client %s connected", client.ID)
}

func (h *Hub) removeClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	close(client.send)
	glog.Infof("Client %s (%s) disconnected", client.ID, client.Name)

	table, ok := h.clientTable[client]
	if !ok {
		return
	}
	delete(h.clientTable, client)
	h.leaveTable(table, client)
}

// leaveTable frees a lobby seat, or hands a running game's seat to a bot.
func (h *Hub) leaveTable(table *Table, client *Client) {
	s := table.seatOf(client)
	if s == nil {
		return
	}

	if table.playing() {
		agent, err := bot.NewAgent(s.id, h.botLevel)
		if err != nil {
			glog.Errorf("Table %s: no bot can take over seat of %s: %v", table.Code, s.id, err)
			return
		}
		s.client = nil
		s.agent = agent
		table.ensureOwner()
		glog.Infof("Table %s: bot took over for %s", table.Code, s.name)
	} else {
		table.removeSeat(s.id)
	}

	if len(table.humans()) == 0 {
		delete(h.tables, table.Code)
		glog.Infof("Table %s closed: no players left", table.Code)
		return
	}

	h.deliver(table, []app.Event{{Kind: app.EventPlayerLeft, Payload: app.PlayerLeftPayload{UserID: s.id}}})
	h.runBots(table)
	h.broadcastTableUpdate(table)
}

// generateTableCode creates a unique alphanumeric table code.
func (h *Hub) generateTableCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		var sb strings.Builder
		for i := 0; i < tableCodeLength; i++ {
			sb.WriteByte(letters[h.rng.Intn(len(letters))])
		}
		code := sb.String()
		if _, exists := h.tables[code]; !exists {
			return code
		}
		glog.V(1).Infof("Generated table code %s collided, retrying...", code)
	}
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeCreateTable:
		h.handleCreateTable(client, msg)
	case protocol.TypeJoinTable:
		h.handleJoinTable(client, msg)
	case protocol.TypeAddBot:
		h.handleAddBot(client)
	case protocol.TypeStartGame:
		h.handleStartGame(client)
	case protocol.TypePlayCards:
		h.handlePlayCards(client, msg)
	case protocol.TypePass:
		h.handlePass(client)
	case protocol.TypePing:
		h.send(client, protocol.TypePong, nil)
	default:
		glog.Warningf("Unknown message type '%s' from client %s", msg.Type, client.ID)
		h.sendError(client, "Unknown message type.", "")
	}
}

func (h *Hub) handleCreateTable(client *Client, msg protocol.Message) {
	if _, inTable := h.clientTable[client]; inTable {
		h.sendError(client, "Already at a table.", "")
		return
	}

	var payload protocol.CreateTablePayload
	if err := msg.Decode(&payload); err != nil {
		glog.Warningf("Client %s: %v", client.ID, err)
		h.sendError(client, "Invalid create_table message format.", "")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		h.sendError(client, "Name cannot be empty.", "")
		return
	}

	table := newTable(h.generateTableCode(), h.maxPlayers)
	client.Name = payload.Name
	table.seats = append(table.seats, &seat{id: client.ID, name: client.Name, client: client})
	table.ownerID = client.ID
	h.tables[table.Code] = table
	h.clientTable[client] = table

	glog.Infof("Client %s (%s) created table %s", client.ID, client.Name, table.Code)

	h.send(client, protocol.TypeTableCreated, protocol.TableCreatedPayload{Code: table.Code, PlayerID: client.ID})
	h.broadcastTableUpdate(table)
}

func (h *Hub) handleJoinTable(client *Client, msg protocol.Message) {
	if _, inTable := h.clientTable[client]; inTable {
		h.sendError(client, "Already at a table.", "")
		return
	}

	var payload protocol.JoinTablePayload
	if err := msg.Decode(&payload); err != nil {
		glog.Warningf("Client %s: %v", client.ID, err)
		h.sendError(client, "Invalid join_table message format.", "")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		h.sendError(client, "Name cannot be empty.", "")
		return
	}

	table, ok := h.tables[strings.ToUpper(payload.Code)]
	switch {
	case !ok:
		h.sendError(client, "Table code not found.", "")
		return
	case table.playing():
		h.sendError(client, "Game already in progress.", "")
		return
	case table.full():
		h.sendError(client, "Table is full.", "")
		return
	case table.nameTaken(payload.Name):
		h.sendError(client, "Name already taken at this table.", "")
		return
	}

	client.Name = payload.Name
	table.seats = append(table.seats, &seat{id: client.ID, name: client.Name, client: client})
	h.clientTable[client] = table
	table.ensureOwner()

	glog.Infof("Client %s (%s) joined table %s (%d/%d)", client.ID, client.Name, table.Code, len(table.seats), table.maxPlayers)
	h.broadcastTableUpdate(table)
}

func (h *Hub) handleAddBot(client *Client) {
	table, ok := h.ownedLobby(client)
	if !ok {
		return
	}
	if table.full() {
		h.sendError(client, "Table is full.", "")
		return
	}

	identity := h.freeBotIdentity(table)
	agent, err := bot.NewAgent(identity.UserID, h.botLevel)
	if err != nil {
		glog.Errorf("Table %s: failed to create bot: %v", table.Code, err)
		h.sendError(client, "Could not add a bot.", "")
		return
	}

	name := identity.DisplayName
	if name == "" {
		name = agent.Name
	}
	table.seats = append(table.seats, &seat{id: identity.UserID, name: name, agent: agent})
	glog.Infof("Table %s: added bot %s", table.Code, name)
	h.broadcastTableUpdate(table)
}

// freeBotIdentity picks a pool bot not yet seated at table. When the pool is
// exhausted it makes up a fresh identity.
func (h *Hub) freeBotIdentity(table *Table) bot.BotIdentity {
	for i := 0; i < domain.MaxPlayers; i++ {
		identity := bot.GetBotIdentity(i)
		if table.seatByID(identity.UserID) == nil {
			return identity
		}
	}
	id := "bot-" + uuid.NewString()
	return bot.BotIdentity{UserID: id, Username: id, DisplayName: "AI Player"}
}

// ownedLobby returns the client's table if they own it and no game is running.
func (h *Hub) ownedLobby(client *Client) (*Table, bool) {
	table, ok := h.clientTable[client]
	if !ok {
		h.sendError(client, "You are not at a table.", "")
		return nil, false
	}
	if table.ownerID != client.ID {
		h.sendError(client, "Only the table owner can do that.", "")
		return nil, false
	}
	if table.playing() {
		h.sendError(client, "Game already in progress.", "")
		return nil, false
	}
	return table, true
}

func (h *Hub) handleStartGame(client *Client) {
	table, ok := h.ownedLobby(client)
	if !ok {
		return
	}

	game, events, err := h.service.StartGame(table.playerIDs())
	if err != nil {
		glog.Warningf("Table %s: failed to start game: %v", table.Code, err)
		h.sendError(client, err.Error(), "")
		return
	}
	table.game = game

	glog.Infof("Table %s: game %s started with %d players", table.Code, game.ID, len(game.Players))
	h.deliver(table, events)
	h.runBots(table)
	h.broadcastTableUpdate(table)
}

// activeGame returns the client's table when a game is running there.
func (h *Hub) activeGame(client *Client) (*Table, bool) {
	table, ok := h.clientTable[client]
	if !ok || !table.playing() {
		h.sendError(client, app.ErrGameNotStarted.Error(), "")
		return nil, false
	}
	return table, true
}

func (h *Hub) handlePlayCards(client *Client, msg protocol.Message) {
	table, ok := h.activeGame(client)
	if !ok {
		return
	}

	var payload protocol.PlayCardsPayload
	if err := msg.Decode(&payload); err != nil {
		h.sendError(client, "Invalid play_cards message format.", "")
		return
	}
	cards, err := protocol.ParseCardCodes(payload.Cards)
	if err != nil {
		h.sendError(client, err.Error(), "")
		return
	}

	events, err := h.service.PlayCards(table.game, client.ID, cards)
	if err != nil {
		glog.V(1).Infof("Table %s: %s play %v refused: %v", table.Code, client.Name, cards, err)
		if len(events) == 0 {
			h.sendError(client, err.Error(), string(domain.ReasonOf(err)))
			return
		}
		h.deliver(table, events)
		return
	}

	h.deliver(table, events)
	h.runBots(table)
	h.broadcastTableUpdate(table)
}

func (h *Hub) handlePass(client *Client) {
	table, ok := h.activeGame(client)
	if !ok {
		return
	}

	events, err := h.service.PassTurn(table.game, client.ID)
	if err != nil {
		h.sendError(client, err.Error(), "")
		return
	}

	h.deliver(table, events)
	h.runBots(table)
	h.broadcastTableUpdate(table)
}

// runBots plays bot turns until a human is to act or the game ends.
func (h *Hub) runBots(table *Table) {
	for table.playing() {
		current := table.seatByID(table.game.CurrentPlayer().UserID)
		if current == nil || current.agent == nil {
			return
		}

		move, err := current.agent.Play(table.game)
		if err != nil {
			glog.Warningf("Table %s: bot %s failed to choose, passing: %v", table.Code, current.name, err)
		}

		if !move.Pass {
			events, err := h.service.PlayCards(table.game, current.id, move.Cards)
			if err == nil {
				h.deliver(table, events)
				continue
			}
			glog.Warningf("Table %s: bot %s play %v refused, passing: %v", table.Code, current.name, move.Cards, err)
		}

		events, err := h.service.PassTurn(table.game, current.id)
		if err != nil {
			glog.Errorf("Table %s: bot %s cannot pass: %v", table.Code, current.name, err)
			return
		}
		h.deliver(table, events)
	}
}

// deliver feeds events to the table's bots and sends them to its players.
// Events with recipients go only to those players.
func (h *Hub) deliver(table *Table, events []app.Event) {
	for _, ev := range events {
		data, err := protocol.FromEvent(ev)
		if err != nil {
			glog.Errorf("Table %s: %v", table.Code, err)
			continue
		}

		for _, s := range table.seats {
			if len(ev.Recipients) > 0 && !containsID(ev.Recipients, s.id) {
				continue
			}
			if s.agent != nil {
				s.agent.OnGameEvent(ev)
			}
			if s.client != nil {
				h.sendRaw(s.client, data)
			}
		}

		if ev.Kind == app.EventGameEnded {
			glog.Infof("Table %s: game %s ended (winner=%q)", table.Code, table.game.ID, table.game.WinnerID)
		}
	}
}

func (h *Hub) broadcastTableUpdate(table *Table) {
	data, err := protocol.NewMessage(protocol.TypeTableUpdate, table.snapshot())
	if err != nil {
		glog.Errorf("Table %s: %v", table.Code, err)
		return
	}
	for _, s := range table.humans() {
		h.sendRaw(s.client, data)
	}
}

func (h *Hub) send(client *Client, msgType string, payload interface{}) {
	data, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		glog.Errorf("Client %s: %v", client.ID, err)
		return
	}
	h.sendRaw(client, data)
}

func (h *Hub) sendError(client *Client, message, reason string) {
	h.send(client, protocol.TypeError, protocol.ErrorPayload{Message: message, Reason: reason})
}

// sendRaw never blocks the hub; a client that cannot keep up is dropped.
func (h *Hub) sendRaw(client *Client, data []byte) {
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
		glog.Warningf("Client %s send buffer full, disconnecting", client.ID)
		go h.requestUnregister(client)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
