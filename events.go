package main

import (
	"encoding/json"
)

// Messages coming from clients. Every frame is an envelope carrying the
// event name and an event-specific payload.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Messages sent to clients use the same envelope shape.
type serverMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// player_attempt_join
type joinPayload struct {
	Code string `json:"code"`
	UUID string `json:"uuid,omitempty"`
}

// player_register
type registerPayload struct {
	UUID     string `json:"uuid"`
	Nickname string `json:"nickname"`
	Gender   string `json:"gender"`
	FavThing string `json:"favThing"`
}

// submit_headline
type headlinePayload struct {
	Text string `json:"text"`
}

// submit_vote
type votePayload struct {
	OptionIndex int `json:"optionIndex"`
}

// host_truth_revealed / truth_revealed_haptic
type truthPayload struct {
	TruthIndex int `json:"truthIndex"`
}

// server_info, sent to the host so it can render a join code and QR image
type serverInfoPayload struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// move_to_writing. Duration is nil when the client is mid-phase and the
// countdown must not restart (next question, reconnect restore).
type writingPrompt struct {
	Prompt      string `json:"prompt"`
	Source      string `json:"source"`
	QuestionNum int    `json:"questionNum"`
	Duration    *int   `json:"duration"`
}

type hostQuestion struct {
	Prompt string `json:"prompt"`
	Audio  string `json:"audio,omitempty"`
}

// host_phase_writing
type hostWritingPayload struct {
	TotalQuestions int            `json:"totalQuestions"`
	Questions      []hostQuestion `json:"questions"`
	Duration       int            `json:"duration"`
	RoundNum       int            `json:"roundNum"`
}

// player_done_writing
type doneWritingPayload struct {
	PlayerID string `json:"playerId"`
	Count    int    `json:"count"`
}

// start_voting_display, host side of a voting step
type votingDisplayPayload struct {
	Question string   `json:"question"`
	Options  []option `json:"options"`
	Step     int      `json:"step"`
	Duration int      `json:"duration"`
	Audio    string   `json:"audio,omitempty"`
}

// move_to_voting_screen
type votingScreenPayload struct {
	Options  []option `json:"options"`
	Duration *int     `json:"duration"`
}

// host_player_voted
type playerVotedPayload struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
}

// player_reconnected / player_disconnect
type playerRefPayload struct {
	PlayerID string `json:"playerId"`
}

// game_over_results, the full reveal for one voting step
type stepResultsPayload struct {
	Question   string             `json:"question"`
	Original   string             `json:"original"`
	Source     string             `json:"source"`
	Audio      string             `json:"audio,omitempty"`
	Options    []option           `json:"options"`
	Votes      map[string]int     `json:"votes"`
	Players    map[string]*Player `json:"players"`
	IsLastStep bool               `json:"isLastStep"`
}

func durationMS(ms int) *int {
	return &ms
}
