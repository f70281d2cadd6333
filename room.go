// Push-maker headline game
//
// One authoritative room per process. A privileged "host" display connects
// first and drives the game; up to six players join with a shared room code
// and play four rounds of "bluff the headline": each round every player
// writes fake completions for three fill-in-the-blank news pushes, then the
// group votes question by question on which of the presented completions
// (one of which is the real one) actually ran.
//
// Features:
// - WebSocket endpoint at /game/ws, shared by the host and player clients
// - host_connect resets the room and kicks any lingering players
// - Join with a fixed 4-character code; reconnect with a stable client UUID
// - Disconnected players are marked offline, never deleted, and their
//   submissions and votes are relabeled to the new connection on reconnect
// - Writing and voting phases auto-advance when everyone has acted, with a
//   phase timer as fallback and a "hurry up" warning near expiry
// - Submissions too close to the real answer are bounced back to the writer
// - Voting for your own bluff is rejected
// - Scores: 10 to a voter who finds the truth, 5 to the author of a bluff
//   that draws a vote, everything doubled in round four
// - In-browser QR to share the join URL, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type GameStatus string

const (
	StatusLobby        GameStatus = "LOBBY"
	StatusInstructions GameStatus = "INSTRUCTIONS"
	StatusWriting      GameStatus = "WRITING"
	StatusVoting       GameStatus = "VOTING"
	StatusWinner       GameStatus = "WINNER"
)

const (
	roomCapacity      = 6
	totalRounds       = 4
	questionsPerRound = 3
	warningLead       = 10 * time.Second

	// PlayerID of the synthetic truth option in a voting set.
	truthPlayerID = "TRUTH"
)

// option is one entry in a voting set: either a player's bluff or the
// truth. The same shape backs the per-question submission lists, where
// IsReal is always false.
type option struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
	IsReal   bool   `json:"isReal"`
}

// roundData is reset at the start of every round.
type roundData struct {
	questions        []QuestionRecord
	submissions      [questionsPerRound][]option
	votingStep       int
	currentOptions   []option
	votes            map[string]int
	stepResultsShown bool
}

func newRoundData() roundData {
	return roundData{votes: make(map[string]int)}
}

type inbound struct {
	client *client
	msg    clientMessage
}

// Room is the single game session. All mutation happens on the run
// goroutine: inbound messages, connection changes and timer fires are
// discrete run-to-completion reactions, so no field needs a lock.
type Room struct {
	cfg   *Config
	log   zerolog.Logger
	clock clockwork.Clock
	rng   *rand.Rand
	bank  Bank

	register chan *client
	unreg    chan *client
	events   chan inbound

	host    *client
	clients map[*client]bool
	players map[string]*Player // connection ID -> profile

	status   GameStatus
	roundNum int
	round    roundData
	used     map[int]bool // bank indices already played this session

	phaseTimer   clockwork.Timer
	warningTimer clockwork.Timer
}

func newRoom(cfg *Config, bank Bank, logger zerolog.Logger, clock clockwork.Clock) *Room {
	return &Room{
		cfg:      cfg,
		log:      logger,
		clock:    clock,
		rng:      rand.New(rand.NewSource(clock.Now().UnixNano())),
		bank:     bank,
		register: make(chan *client),
		unreg:    make(chan *client),
		events:   make(chan inbound, 16),
		clients:  make(map[*client]bool),
		players:  make(map[string]*Player),
		status:   StatusLobby,
		round:    newRoundData(),
		used:     make(map[int]bool),
	}
}

func (r *Room) run(ctx context.Context) {
	for {
		select {
		case c := <-r.register:
			r.clients[c] = true
			r.log.Debug().Str("conn", c.id).Msg("client connected")

		case c := <-r.unreg:
			r.dropClient(c)

		case ev := <-r.events:
			r.dispatch(ev.client, ev.msg)

		case <-r.phaseChan():
			r.onPhaseExpired()

		case <-r.warningChan():
			r.broadcastAll("hurry_up", nil)

		case <-ctx.Done():
			r.stopTimers()
			return
		}
	}
}

func (r *Room) phaseChan() <-chan time.Time {
	if r.phaseTimer == nil {
		return nil
	}
	return r.phaseTimer.Chan()
}

func (r *Room) warningChan() <-chan time.Time {
	if r.warningTimer == nil {
		return nil
	}
	return r.warningTimer.Chan()
}

// armTimers replaces both phase timers for a freshly entered phase. The
// warning fires shortly before expiry, and only for phases long enough to
// warn about.
func (r *Room) armTimers(d time.Duration) {
	r.stopTimers()
	if d > warningLead {
		r.warningTimer = r.clock.NewTimer(d - warningLead)
	}
	r.phaseTimer = r.clock.NewTimer(d)
}

func (r *Room) stopTimers() {
	if r.phaseTimer != nil {
		r.phaseTimer.Stop()
		r.phaseTimer = nil
	}
	if r.warningTimer != nil {
		r.warningTimer.Stop()
		r.warningTimer = nil
	}
}

// onPhaseExpired is the timeout path for the current phase. Stale fires
// land here too; the status switch and the one-shot finalization flag make
// them no-ops.
func (r *Room) onPhaseExpired() {
	switch r.status {
	case StatusWriting:
		r.log.Info().Int("round", r.roundNum).Msg("writing time over")
		r.round.votingStep = 0
		r.startVoting()
	case StatusVoting:
		r.log.Info().Int("round", r.roundNum).Int("step", r.round.votingStep).Msg("voting time over")
		r.finalizeStep()
	}
}

func (r *Room) dispatch(c *client, msg clientMessage) {
	switch msg.Event {
	case "host_connect":
		r.handleHostConnect(c)
	case "player_attempt_join":
		var p joinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.handleAttemptJoin(c, p)
	case "player_register":
		var p registerPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.handleRegister(c, p)
	case "host_start_game":
		r.handleStartGame()
	case "host_restart_game":
		r.handleRestartGame()
	case "host_start_round":
		r.startRound()
	case "submit_headline":
		var p headlinePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.handleSubmitHeadline(c, p.Text)
	case "host_next_phase":
		r.handleNextPhase()
	case "host_truth_revealed":
		var p truthPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.broadcastAll("truth_revealed_haptic", p)
	case "submit_vote":
		var p votePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.handleSubmitVote(c, p.OptionIndex)
	default:
		r.log.Debug().Str("event", msg.Event).Str("conn", c.id).Msg("ignoring unknown event")
	}
}

// handleHostConnect admits a connection as the host display and resets the
// entire room: a fresh host means a fresh game, so lingering players from
// a previous session are kicked.
func (r *Room) handleHostConnect(c *client) {
	r.log.Info().Str("conn", c.id).Msg("host connected, resetting room")

	for other := range r.clients {
		if other != c {
			r.send(other, "kick_player", nil)
		}
	}

	r.stopTimers()
	r.host = c
	r.players = make(map[string]*Player)
	r.status = StatusLobby
	r.roundNum = 0
	r.round = newRoundData()
	r.used = make(map[int]bool)

	r.sendHost("update_player_list", []*Player{})
	r.send(c, "server_info", serverInfoPayload{IP: localIP(), Port: r.cfg.port})
}

func (r *Room) handleAttemptJoin(c *client, p joinPayload) {
	code := normalizeRoomCode(p.Code)
	if code == "" {
		r.send(c, "join_error", userMessage(errMissingCode))
		return
	}
	if code != normalizeRoomCode(r.cfg.roomCode) {
		r.send(c, "join_error", userMessage(errInvalidRoomCode))
		return
	}

	if p.UUID != "" {
		for _, existing := range r.players {
			if existing.UUID == p.UUID {
				r.reconnect(c, existing)
				return
			}
		}
	}

	// Capacity counts every profile, connected or not: seats belong to
	// the roster for the whole session.
	if len(r.players) >= roomCapacity {
		r.send(c, "join_error", userMessage(errRoomFull))
		return
	}

	r.send(c, "join_success", nil)
}

// reconnect rebinds an existing profile to a new connection and restores
// the client to wherever the game currently is.
func (r *Room) reconnect(c *client, p *Player) {
	oldID := p.ID
	r.log.Info().Str("nickname", p.Nickname).Str("old", oldID).Str("new", c.id).Msg("player reconnecting")

	r.rebindConnection(oldID, c.id)
	p.Connected = true

	r.send(c, "join_success", nil)

	switch r.status {
	case StatusWriting:
		if next := p.HeadlinesWritten; next < questionsPerRound && next < len(r.round.questions) {
			r.send(c, "move_to_writing", writingPrompt{
				Prompt:      r.round.questions[next].Prompt,
				Source:      r.round.questions[next].Source,
				QuestionNum: next + 1,
			})
		} else {
			r.send(c, "wait_for_others", nil)
		}
	case StatusVoting:
		r.send(c, "move_to_voting_screen", votingScreenPayload{Options: r.round.currentOptions})
		if _, voted := r.round.votes[c.id]; voted {
			r.send(c, "wait_for_others", nil)
		}
	default:
		r.send(c, "wait_for_others", nil)
	}

	r.sendHost("player_reconnected", playerRefPayload{PlayerID: c.id})
	r.sendHost("update_player_list", r.playerList())
}

// rebindConnection relabels every reference to an old connection ID inside
// the room in one place: the roster and all of the active round's
// substructures.
func (r *Room) rebindConnection(oldID, newID string) {
	if p, ok := r.players[oldID]; ok {
		delete(r.players, oldID)
		p.ID = newID
		r.players[newID] = p
	}

	for i := range r.round.submissions {
		for j := range r.round.submissions[i] {
			if r.round.submissions[i][j].PlayerID == oldID {
				r.round.submissions[i][j].PlayerID = newID
			}
		}
	}

	if choice, ok := r.round.votes[oldID]; ok {
		delete(r.round.votes, oldID)
		r.round.votes[newID] = choice
	}

	for i := range r.round.currentOptions {
		if r.round.currentOptions[i].PlayerID == oldID {
			r.round.currentOptions[i].PlayerID = newID
		}
	}
}

func (r *Room) handleRegister(c *client, p registerPayload) {
	player := &Player{
		ID:        c.id,
		UUID:      p.UUID,
		Nickname:  p.Nickname,
		Gender:    p.Gender,
		FavThing:  p.FavThing,
		Specialty: specialtyTitle(p.Gender, p.FavThing),
		Connected: true,
	}
	r.players[c.id] = player

	r.log.Info().Str("nickname", p.Nickname).Str("conn", c.id).Msg("player registered")

	r.sendHost("player_joined", player)
	r.sendHost("update_player_list", r.playerList())
}

func (r *Room) handleStartGame() {
	for _, p := range r.players {
		p.Score = 0
		p.RoundScore = 0
		p.HeadlinesWritten = 0
	}

	r.sendHost("update_player_list", r.playerList())

	r.roundNum = 0
	r.status = StatusInstructions
	r.sendHost("host_phase_instructions", nil)
}

func (r *Room) handleRestartGame() {
	r.log.Info().Msg("restarting game")

	r.stopTimers()
	r.roundNum = 0
	r.status = StatusInstructions
	r.used = make(map[int]bool)
	r.round = newRoundData()

	for _, p := range r.players {
		p.Score = 0
		p.RoundScore = 0
		p.HeadlinesWritten = 0
	}

	r.sendHost("update_player_list", r.playerList())
	r.sendHost("host_phase_instructions", nil)
}

// dropClient handles a transport-level disconnect. Player profiles are
// kept so the same UUID can reconnect and pick up its submissions, votes
// and score.
func (r *Room) dropClient(c *client) {
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}

	if c == r.host {
		r.log.Info().Str("conn", c.id).Msg("host disconnected")
		r.host = nil
		return
	}

	p, ok := r.players[c.id]
	if !ok {
		return
	}

	r.log.Info().Str("nickname", p.Nickname).Str("conn", c.id).Msg("player disconnected, keeping profile")
	p.Connected = false

	r.sendHost("player_disconnect", playerRefPayload{PlayerID: c.id})
	r.sendHost("update_player_list", r.playerList())

	// A departure never shrinks the quorum denominator (the full roster
	// does), but re-checking here keeps the completion rule in one place
	// should that policy ever change.
	switch r.status {
	case StatusWriting:
		r.checkWritingQuorum()
	case StatusVoting:
		r.checkVotingQuorum()
	}
}

func (r *Room) playerList() []*Player {
	list := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Nickname < list[j].Nickname
	})
	return list
}

// send queues a message for one connection. Connections that already
// dropped are skipped: their channel is closed, and the read pump may
// still be delivering events that reference them. A full buffer drops the
// client the same way a transport error would.
func (r *Room) send(c *client, event string, data any) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	select {
	case c.send <- serverMessage{Event: event, Data: data}:
	default:
		delete(r.clients, c)
		close(c.send)
		if c == r.host {
			r.host = nil
		}
	}
}

func (r *Room) sendHost(event string, data any) {
	if r.host == nil {
		return
	}
	r.send(r.host, event, data)
}

// broadcastAll reaches every connection, host display included; clients
// ignore events that are not for their role.
func (r *Room) broadcastAll(event string, data any) {
	for c := range r.clients {
		r.send(c, event, data)
	}
}
