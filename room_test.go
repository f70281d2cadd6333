package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

func testConfig() *Config {
	return &Config{
		port:        3000,
		roomCode:    "ABCD",
		writingTime: 60 * time.Second,
		votingTime:  20 * time.Second,
	}
}

// newTestBank builds a bank with six questions per difficulty tier, all
// with distinct prompts and truths.
func newTestBank() Bank {
	var questions []QuestionRecord
	for difficulty := 1; difficulty <= 3; difficulty++ {
		for i := 0; i < 6; i++ {
			questions = append(questions, QuestionRecord{
				Prompt:     fmt.Sprintf("prompt-%d-%d", difficulty, i),
				Missing:    fmt.Sprintf("reality-%d-%d", difficulty, i),
				Original:   fmt.Sprintf("original-%d-%d", difficulty, i),
				Source:     "source",
				Difficulty: difficulty,
			})
		}
	}
	return &staticBank{questions: questions}
}

func newTestRoom() *Room {
	return newRoom(testConfig(), newTestBank(), zerolog.Nop(), clockwork.NewFakeClock())
}

func newTestClient(id string) *client {
	return &client{id: id, send: make(chan serverMessage, 256)}
}

// expectEvent drains queued messages until one with the wanted event name
// shows up.
func expectEvent(t *testing.T, c *client, event string) serverMessage {
	t.Helper()
	for {
		select {
		case m := <-c.send:
			if m.Event == event {
				return m
			}
		default:
			t.Fatalf("no %q message queued for %s", event, c.id)
			return serverMessage{}
		}
	}
}

func drainAll(c *client) []serverMessage {
	var out []serverMessage
	for {
		select {
		case m := <-c.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func countEvents(msgs []serverMessage, event string) int {
	n := 0
	for _, m := range msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

func connectHost(t *testing.T, r *Room) *client {
	t.Helper()
	host := newTestClient("host")
	r.clients[host] = true
	r.handleHostConnect(host)
	expectEvent(t, host, "server_info")
	return host
}

func joinPlayer(t *testing.T, r *Room, id, nickname string) *client {
	t.Helper()
	c := newTestClient(id)
	r.clients[c] = true
	r.handleAttemptJoin(c, joinPayload{Code: " abcd ", UUID: "uuid-" + nickname})
	expectEvent(t, c, "join_success")
	r.handleRegister(c, registerPayload{
		UUID:     "uuid-" + nickname,
		Nickname: nickname,
		Gender:   "male",
		FavThing: "דגים",
	})
	return c
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestJoinRejectsWrongCode(t *testing.T) {
	r := newTestRoom()
	c := newTestClient("c1")
	r.clients[c] = true

	r.handleAttemptJoin(c, joinPayload{Code: "WXYZ"})
	if m := expectEvent(t, c, "join_error"); m.Data != userMessage(errInvalidRoomCode) {
		t.Fatalf("unexpected join_error payload: %v", m.Data)
	}

	r.handleAttemptJoin(c, joinPayload{Code: "   "})
	if m := expectEvent(t, c, "join_error"); m.Data != userMessage(errMissingCode) {
		t.Fatalf("unexpected join_error payload: %v", m.Data)
	}
}

func TestJoinRejectsWhenRoomFull(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)

	for i := 0; i < roomCapacity; i++ {
		joinPlayer(t, r, fmt.Sprintf("c%d", i), fmt.Sprintf("player%d", i))
	}

	late := newTestClient("late")
	r.clients[late] = true
	r.handleAttemptJoin(late, joinPayload{Code: "ABCD"})
	if m := expectEvent(t, late, "join_error"); m.Data != userMessage(errRoomFull) {
		t.Fatalf("unexpected join_error payload: %v", m.Data)
	}

	// A seated player can still reconnect into the full room.
	back := newTestClient("back")
	r.clients[back] = true
	r.handleAttemptJoin(back, joinPayload{Code: "ABCD", UUID: "uuid-player0"})
	expectEvent(t, back, "join_success")
}

func TestHostConnectResetsRoom(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	r.handleStartGame()
	r.startRound()

	host2 := newTestClient("host2")
	r.clients[host2] = true
	r.handleHostConnect(host2)

	expectEvent(t, p1, "kick_player")
	expectEvent(t, host2, "server_info")

	if r.status != StatusLobby || r.roundNum != 0 {
		t.Fatalf("room not reset: status=%s round=%d", r.status, r.roundNum)
	}
	if len(r.players) != 0 || len(r.used) != 0 {
		t.Fatalf("roster or question history not cleared")
	}
	if r.host != host2 {
		t.Fatal("new connection did not become host")
	}
	if r.phaseTimer != nil || r.warningTimer != nil {
		t.Fatal("phase timers survived the reset")
	}
}

func TestRoundDifficultySchedule(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	r.handleStartGame()

	want := map[int][3]int{
		1: {3, 0, 0},
		2: {2, 1, 0},
		3: {0, 3, 0},
		4: {0, 0, 3},
	}

	seen := make(map[string]bool)

	for round := 1; round <= totalRounds; round++ {
		r.startRound()

		var got [3]int
		for _, q := range r.round.questions {
			got[q.Difficulty-1]++
		}
		if got != want[round] {
			t.Errorf("round %d selected difficulties %v, want %v", round, got, want[round])
		}

		for _, q := range r.round.questions {
			if seen[q.Prompt] {
				t.Errorf("question %q selected twice in one session", q.Prompt)
			}
			seen[q.Prompt] = true
		}
	}
}

func TestSelectQuestionsBackfill(t *testing.T) {
	bank := &staticBank{questions: []QuestionRecord{
		{Prompt: "a", Missing: "ra", Difficulty: 1},
		{Prompt: "b", Missing: "rb", Difficulty: 2},
		{Prompt: "c", Missing: "rc", Difficulty: 2},
		{Prompt: "d", Missing: "rd", Difficulty: 2},
	}}
	r := newRoom(testConfig(), bank, zerolog.Nop(), clockwork.NewFakeClock())
	r.roundNum = 1 // wants three difficulty-1 questions

	questions := r.selectQuestions()
	if len(questions) != questionsPerRound {
		t.Fatalf("selected %d questions, want %d", len(questions), questionsPerRound)
	}

	prompts := make(map[string]bool)
	for _, q := range questions {
		prompts[q.Prompt] = true
	}
	if len(prompts) != questionsPerRound {
		t.Fatalf("backfill produced duplicates: %v", prompts)
	}
	if !prompts["a"] {
		t.Fatal("the only difficulty-1 question was not selected")
	}
}

func TestStartRoundWithEmptyBankStaysPut(t *testing.T) {
	r := newRoom(testConfig(), &staticBank{}, zerolog.Nop(), clockwork.NewFakeClock())
	connectHost(t, r)
	r.handleStartGame()

	r.startRound()

	if r.status != StatusInstructions {
		t.Fatalf("status = %s after round start with empty bank, want INSTRUCTIONS", r.status)
	}
	if r.roundNum != 0 {
		t.Fatalf("round counter advanced to %d with nothing to play", r.roundNum)
	}
}

func TestSubmitHeadlineRejectsTooSimilar(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	r.handleStartGame()
	r.startRound()
	drainAll(p1)

	truth := r.round.questions[0].Missing
	r.handleSubmitHeadline(p1, truth)

	if m := expectEvent(t, p1, "submit_error"); m.Data != userMessage(errTooSimilar) {
		t.Fatalf("unexpected submit_error payload: %v", m.Data)
	}
	if len(r.round.submissions[0]) != 0 {
		t.Fatal("rejected submission was stored")
	}
	if r.players["c1"].HeadlinesWritten != 0 {
		t.Fatal("rejected submission advanced the player's cursor")
	}

	// The player may resubmit once the text is an honest lie.
	r.handleSubmitHeadline(p1, "a perfectly plausible lie")
	if len(r.round.submissions[0]) != 1 {
		t.Fatal("valid resubmission was not stored")
	}
	if m := expectEvent(t, p1, "move_to_writing"); m.Data.(writingPrompt).QuestionNum != 2 {
		t.Fatalf("next prompt has questionNum %d, want 2", m.Data.(writingPrompt).QuestionNum)
	}
}

func TestSubmitHeadlineCapsAtThree(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")
	r.handleStartGame()
	r.startRound()

	for i := 0; i < 5; i++ {
		r.handleSubmitHeadline(p1, fmt.Sprintf("lie number %d", i))
	}

	if got := r.players["c1"].HeadlinesWritten; got != questionsPerRound {
		t.Fatalf("headlines written = %d, want %d", got, questionsPerRound)
	}
	if got := r.totalSubmissions(); got != questionsPerRound {
		t.Fatalf("total submissions = %d, want %d", got, questionsPerRound)
	}
}

func TestVotingOptionsContainExactlyOneTruth(t *testing.T) {
	r := newTestRoom()
	r.round.questions = r.bank.All()[:3]
	r.round.submissions[0] = []option{
		{PlayerID: "c1", Text: "lie one"},
		{PlayerID: "c2", Text: "lie two"},
	}
	r.status = StatusWriting

	positions := make([]int, 3)
	for i := 0; i < 300; i++ {
		r.round.votingStep = 0
		r.startVoting()

		truthCount := 0
		for idx, opt := range r.round.currentOptions {
			if opt.IsReal {
				truthCount++
				positions[idx]++
				if opt.Text != r.round.questions[0].Missing {
					t.Fatalf("truth option text %q, want %q", opt.Text, r.round.questions[0].Missing)
				}
			}
		}
		if truthCount != 1 {
			t.Fatalf("option set has %d truth entries, want exactly 1", truthCount)
		}
	}

	// Uniform shuffle: over 300 rounds each slot should hold the truth a
	// fair share of the time.
	for idx, n := range positions {
		if n < 50 {
			t.Errorf("truth landed in position %d only %d/300 times", idx, n)
		}
	}
}

func TestSelfVoteRejected(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")

	r.status = StatusVoting
	r.round.questions = r.bank.All()[:3]
	r.round.currentOptions = []option{
		{PlayerID: "c1", Text: "own lie"},
		{PlayerID: truthPlayerID, Text: "reality", IsReal: true},
	}
	drainAll(p1)

	r.handleSubmitVote(p1, 0)

	if m := expectEvent(t, p1, "submit_error"); m.Data != userMessage(errSelfVote) {
		t.Fatalf("unexpected submit_error payload: %v", m.Data)
	}
	if len(r.round.votes) != 0 {
		t.Fatal("self-vote mutated the vote map")
	}
}

func TestVoteOverwriteKeepsLatest(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")

	r.status = StatusVoting
	r.round.questions = r.bank.All()[:3]
	r.round.currentOptions = []option{
		{PlayerID: "c2", Text: "lie"},
		{PlayerID: truthPlayerID, Text: "reality", IsReal: true},
	}

	r.handleSubmitVote(p1, 0)
	r.handleSubmitVote(p1, 1)

	if got := r.round.votes["c1"]; got != 1 {
		t.Fatalf("vote = %d after overwrite, want 1", got)
	}
	if len(r.round.votes) != 1 {
		t.Fatalf("vote map has %d entries, want 1", len(r.round.votes))
	}
}

func TestFinalizeStepExactlyOnce(t *testing.T) {
	r := newTestRoom()
	host := connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	p2 := joinPlayer(t, r, "c2", "two")

	r.status = StatusVoting
	r.roundNum = 1
	r.round.questions = r.bank.All()[:3]
	r.round.currentOptions = []option{
		{PlayerID: "c1", Text: "lie one"},
		{PlayerID: truthPlayerID, Text: "reality", IsReal: true},
	}
	drainAll(host)

	r.handleSubmitVote(p1, 1)
	r.handleSubmitVote(p2, 0)

	// Quorum finalized the step; a late timer fire must be a no-op.
	r.onPhaseExpired()
	r.finalizeStep()

	msgs := drainAll(host)
	if n := countEvents(msgs, "game_over_results"); n != 1 {
		t.Fatalf("step finalized %d times, want exactly once", n)
	}
	if r.players["c1"].Score != 15 { // 10 for finding the truth, 5 for the drawn bluff
		t.Fatalf("c1 score = %d, want 15", r.players["c1"].Score)
	}
	if r.players["c2"].Score != 0 {
		t.Fatalf("c2 score = %d, want 0", r.players["c2"].Score)
	}
}

func TestReconnectMidWritingResumesAtNextQuestion(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")
	r.handleStartGame()
	r.startRound()

	r.handleSubmitHeadline(p1, "first lie")
	r.dropClient(p1)

	if r.players["c1"].Connected {
		t.Fatal("disconnect did not clear the liveness flag")
	}

	back := newTestClient("c1b")
	r.clients[back] = true
	r.handleAttemptJoin(back, joinPayload{Code: "ABCD", UUID: "uuid-one"})

	expectEvent(t, back, "join_success")
	m := expectEvent(t, back, "move_to_writing")
	prompt := m.Data.(writingPrompt)
	if prompt.QuestionNum != 2 {
		t.Fatalf("restored prompt questionNum = %d, want 2", prompt.QuestionNum)
	}
	if prompt.Prompt != r.round.questions[1].Prompt {
		t.Fatalf("restored prompt %q, want %q", prompt.Prompt, r.round.questions[1].Prompt)
	}
	if prompt.Duration != nil {
		t.Fatal("restored prompt restarted the countdown")
	}

	p := r.players["c1b"]
	if p == nil || p.UUID != "uuid-one" || !p.Connected || p.HeadlinesWritten != 1 {
		t.Fatalf("profile not rebound cleanly: %+v", p)
	}
	if _, stale := r.players["c1"]; stale {
		t.Fatal("old connection ID still in the roster")
	}
	if got := r.round.submissions[0][0].PlayerID; got != "c1b" {
		t.Fatalf("submission author = %q, want relabeled %q", got, "c1b")
	}
}

func TestReconnectMidVotingRestoresOptionsAndVote(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")

	r.status = StatusVoting
	r.roundNum = 1
	r.round.questions = r.bank.All()[:3]
	r.round.currentOptions = []option{
		{PlayerID: "c1", Text: "lie one"},
		{PlayerID: "c2", Text: "lie two"},
		{PlayerID: truthPlayerID, Text: "reality", IsReal: true},
	}
	r.round.submissions[0] = []option{{PlayerID: "c1", Text: "lie one"}}
	r.round.votes["c1"] = 1

	r.dropClient(p1)

	back := newTestClient("c1b")
	r.clients[back] = true
	r.handleAttemptJoin(back, joinPayload{Code: "ABCD", UUID: "uuid-one"})

	expectEvent(t, back, "join_success")
	expectEvent(t, back, "move_to_voting_screen")
	expectEvent(t, back, "wait_for_others")

	if _, stale := r.round.votes["c1"]; stale {
		t.Fatal("vote still attributed to the old connection")
	}
	if got := r.round.votes["c1b"]; got != 1 {
		t.Fatalf("vote = %d after rebind, want 1", got)
	}
	if got := r.round.currentOptions[0].PlayerID; got != "c1b" {
		t.Fatalf("option author = %q, want relabeled %q", got, "c1b")
	}
	if got := r.round.submissions[0][0].PlayerID; got != "c1b" {
		t.Fatalf("submission author = %q, want relabeled %q", got, "c1b")
	}
}

func TestFifthStartRoundRevealsWinner(t *testing.T) {
	r := newTestRoom()
	host := connectHost(t, r)
	joinPlayer(t, r, "c1", "one")
	joinPlayer(t, r, "c2", "two")
	r.players["c1"].Score = 30
	r.players["c2"].Score = 55
	r.roundNum = totalRounds
	r.status = StatusVoting
	drainAll(host)

	r.startRound()

	if r.status != StatusWinner {
		t.Fatalf("status = %s, want WINNER", r.status)
	}
	m := expectEvent(t, host, "game_winner_reveal")
	ranked := m.Data.([]*Player)
	if len(ranked) != 2 || ranked[0].Nickname != "two" || ranked[1].Nickname != "one" {
		t.Fatalf("winner reveal not ranked by score: %+v", ranked)
	}
}

func TestNextPhaseAdvancesStepsThenLeaderboard(t *testing.T) {
	r := newTestRoom()
	host := connectHost(t, r)
	joinPlayer(t, r, "c1", "one")
	r.handleStartGame()
	r.startRound()
	r.round.votingStep = 0
	r.startVoting()
	drainAll(host)

	r.handleNextPhase()
	if r.round.votingStep != 1 {
		t.Fatalf("voting step = %d, want 1", r.round.votingStep)
	}
	if m := expectEvent(t, host, "start_voting_display"); m.Data.(votingDisplayPayload).Step != 2 {
		t.Fatalf("host display step = %d, want 2", m.Data.(votingDisplayPayload).Step)
	}

	r.handleNextPhase()
	drainAll(host)

	// Past the last step of a non-final round the host gets the
	// leaderboard and the status stays VOTING until the next round.
	r.handleNextPhase()
	expectEvent(t, host, "show_leaderboard")
	if r.status != StatusVoting {
		t.Fatalf("status = %s after leaderboard, want VOTING", r.status)
	}
}

func TestOverflowedHostDropsCleanly(t *testing.T) {
	r := newTestRoom()
	host := &client{id: "host", send: make(chan serverMessage, 1)}
	r.clients[host] = true
	r.host = host

	// First send fills the one-slot buffer, the second overflows and
	// drops the host, the third must be a no-op rather than a send on
	// the closed channel.
	r.sendHost("update_player_list", nil)
	r.sendHost("update_player_list", nil)
	r.sendHost("update_player_list", nil)

	if r.host != nil {
		t.Fatal("dropped host still referenced as the host display")
	}
	if _, ok := r.clients[host]; ok {
		t.Fatal("dropped host still in the connection registry")
	}
}

func TestSendToDroppedClientIsNoOp(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	p1 := joinPlayer(t, r, "c1", "one")

	r.dropClient(p1)

	// The read pump can still deliver a queued event for the old
	// connection; any reply it triggers must not touch the closed
	// channel.
	r.send(p1, "wait_for_others", nil)

	for m := range p1.send {
		t.Fatalf("dropped client received %q", m.Event)
	}
}

func TestRestartGameKeepsRosterResetsScores(t *testing.T) {
	r := newTestRoom()
	connectHost(t, r)
	joinPlayer(t, r, "c1", "one")
	r.handleStartGame()
	r.startRound()
	r.players["c1"].Score = 40

	r.handleRestartGame()

	if r.status != StatusInstructions || r.roundNum != 0 {
		t.Fatalf("restart left status=%s round=%d", r.status, r.roundNum)
	}
	if len(r.players) != 1 {
		t.Fatal("restart dropped the roster")
	}
	if r.players["c1"].Score != 0 {
		t.Fatal("restart kept old scores")
	}
	if len(r.used) != 0 {
		t.Fatal("restart kept the used-question history")
	}
}

// TestFullRoundFlow walks three players through a complete writing phase
// and the first voting step, entirely through the wire-shaped dispatch
// path.
func TestFullRoundFlow(t *testing.T) {
	r := newTestRoom()
	host := connectHost(t, r)
	players := []*client{
		joinPlayer(t, r, "c1", "one"),
		joinPlayer(t, r, "c2", "two"),
		joinPlayer(t, r, "c3", "three"),
	}
	r.handleStartGame()
	r.startRound()
	drainAll(host)

	for pi, p := range players {
		for q := 0; q < questionsPerRound; q++ {
			r.dispatch(p, clientMessage{
				Event: "submit_headline",
				Data:  raw(t, headlinePayload{Text: fmt.Sprintf("bluff %d from player %d", q, pi)}),
			})
		}
	}

	// Nine accepted submissions for three players: the writing phase
	// must auto-advance without waiting for the timer.
	if r.status != StatusVoting || r.round.votingStep != 0 {
		t.Fatalf("status=%s step=%d after full quorum, want VOTING step 0", r.status, r.round.votingStep)
	}
	msgs := drainAll(host)
	if countEvents(msgs, "start_voting_display") != 1 {
		t.Fatal("host did not get the voting display")
	}

	truthIndex := -1
	for idx, opt := range r.round.currentOptions {
		if opt.IsReal {
			truthIndex = idx
		}
	}
	if truthIndex == -1 {
		t.Fatal("no truth option in the voting set")
	}
	if len(r.round.currentOptions) != 4 {
		t.Fatalf("voting set has %d options, want 3 bluffs + truth", len(r.round.currentOptions))
	}

	for _, p := range players {
		r.dispatch(p, clientMessage{
			Event: "submit_vote",
			Data:  raw(t, votePayload{OptionIndex: truthIndex}),
		})
	}

	msgs = drainAll(host)
	if n := countEvents(msgs, "game_over_results"); n != 1 {
		t.Fatalf("step finalized %d times, want exactly once", n)
	}
	if n := countEvents(msgs, "host_player_voted"); n != 3 {
		t.Fatalf("host saw %d votes, want 3", n)
	}
	for id, p := range r.players {
		if p.Score != 10 {
			t.Fatalf("player %s score = %d, want 10 for finding the truth", id, p.Score)
		}
	}

	// A stale timer fire after quorum finalization changes nothing.
	r.onPhaseExpired()
	if countEvents(drainAll(host), "game_over_results") != 0 {
		t.Fatal("stale timer fire re-finalized the step")
	}
}

// TestWritingTimeoutForcesVoting drives the real run loop with a fake
// clock: the warning fires ten seconds before expiry and the phase timer
// then forces the transition to voting.
func TestWritingTimeoutForcesVoting(t *testing.T) {
	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	r := newRoom(cfg, newTestBank(), zerolog.Nop(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.run(ctx)

	host := newTestClient("host")
	r.register <- host
	r.events <- inbound{client: host, msg: clientMessage{Event: "host_connect"}}

	p1 := newTestClient("c1")
	r.register <- p1
	r.events <- inbound{client: p1, msg: clientMessage{
		Event: "player_attempt_join",
		Data:  raw(t, joinPayload{Code: "ABCD"}),
	}}
	r.events <- inbound{client: p1, msg: clientMessage{
		Event: "player_register",
		Data:  raw(t, registerPayload{UUID: "uuid-one", Nickname: "one"}),
	}}
	r.events <- inbound{client: host, msg: clientMessage{Event: "host_start_game"}}
	r.events <- inbound{client: host, msg: clientMessage{Event: "host_start_round"}}

	awaitEvent(t, p1, "move_to_writing")

	// Both phase timers are armed once the round starts.
	clock.BlockUntil(2)

	clock.Advance(cfg.writingTime - warningLead)
	awaitEvent(t, p1, "hurry_up")

	clock.Advance(warningLead)
	awaitEvent(t, host, "start_voting_display")
	awaitEvent(t, p1, "move_to_voting_screen")
}

func awaitEvent(t *testing.T, c *client, event string) serverMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				t.Fatalf("connection %s closed while waiting for %q", c.id, event)
			}
			if m.Event == event {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q on %s", event, c.id)
		}
	}
}
