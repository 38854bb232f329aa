package quiz

import "github.com/ags-games/partyhall/internal/room"

// Game phases.
const (
	PhaseLobby    = "lobby"
	PhaseBuzzing  = "buzzing" // window open or answer locked
	PhaseReveal   = "reveal"  // answer shown, waiting for next round
	PhaseReadyUp  = "ready_up"
	PhaseDrawing  = "drawing"
	PhaseVoting   = "voting"
	PhaseFinished = "finished"
)

// Host participation modes.
const (
	HostModePlayer    = "player"    // host buzzes and scores like anyone
	HostModeModerator = "moderator" // host runs the game, never plays
	HostModeAI        = "ai"        // host plays, rounds advance automatically
)

const defaultTargetScore = 10

// QuestionView is the question as clients see it. The answer never
// leaves the server before reveal.
type QuestionView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// StateView is the full room snapshot sent on room:state_sync.
type StateView struct {
	Phase          string         `json:"phase"`
	HostMode       string         `json:"host_mode"`
	TargetScore    int            `json:"target_score"`
	Round          int            `json:"round"`
	Paused         bool           `json:"paused"`
	HostID         string         `json:"host_id"`
	Players        []room.Player  `json:"players"`
	Scores         map[string]int `json:"scores"`
	Question       *QuestionView  `json:"question,omitempty"`
	WindowID       string         `json:"window_id,omitempty"`
	LockedPlayerID string         `json:"locked_player_id,omitempty"`
	ExcludedIDs    []string       `json:"excluded_ids,omitempty"`
	GiveUpVotes    int            `json:"give_up_votes"`
	RepeatVotes    int            `json:"repeat_votes"`
	VotesNeeded    int            `json:"votes_needed"`
	ReadyIDs       []string       `json:"ready_ids,omitempty"`
	SubmittedIDs   []string       `json:"submitted_ids,omitempty"`
	CurrentVoterID string         `json:"current_voter_id,omitempty"`
	DeadlineUnixMs int64          `json:"deadline_unix_ms,omitempty"`
	WinnerID       string         `json:"winner_id,omitempty"`
}

// Event payloads.

type buzzWindowEvent struct {
	WindowID string       `json:"window_id"`
	Round    int          `json:"round"`
	Question QuestionView `json:"question"`
}

type buzzLockedEvent struct {
	PlayerID       string `json:"player_id"`
	DeadlineUnixMs int64  `json:"deadline_unix_ms"`
}

type answerResultEvent struct {
	PlayerID string `json:"player_id"`
	Correct  bool   `json:"correct"`
	TimedOut bool   `json:"timed_out,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Score    int    `json:"score"`
}

type answerRevealEvent struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type roundEndEvent struct {
	Round  int            `json:"round"`
	Scores map[string]int `json:"scores"`
}

type gameOverEvent struct {
	WinnerID string         `json:"winner_id"`
	Scores   map[string]int `json:"scores"`
}

type drawingPhaseEvent struct {
	Prompt         string `json:"prompt"`
	DeadlineUnixMs int64  `json:"deadline_unix_ms"`
}

type submissionView struct {
	PlayerID     string `json:"player_id"`
	ImageDataURL string `json:"image_data_url"`
}

type votingPhaseEvent struct {
	Submissions    []submissionView `json:"submissions"`
	CurrentVoterID string           `json:"current_voter_id"`
}

type voteRecordedEvent struct {
	VoterID        string `json:"voter_id"`
	CurrentVoterID string `json:"current_voter_id,omitempty"`
}

type votingResultEvent struct {
	Tallies   map[string]int `json:"tallies"`
	WinnerIDs []string       `json:"winner_ids"`
}

type voteCountEvent struct {
	Votes  int `json:"votes"`
	Needed int `json:"needed"`
}

type hostTransferredEvent struct {
	NewHostID string `json:"new_host_id"`
}
