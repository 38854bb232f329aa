// Package quiz implements the buzzer quiz engine: buzz windows, fuzzy
// answer checking, drawing rounds with voting, and table votes.
package quiz

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/answer"
	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/content"
	"github.com/ags-games/partyhall/internal/game"
	"github.com/ags-games/partyhall/internal/game/clock"
	"github.com/ags-games/partyhall/internal/ident"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

// Engine runs one quiz room. Every exported action method must be called
// with the room lock held (the transport wraps calls in Room.WithLock);
// timer callbacks take the lock themselves and re-check state, since a
// fired timer can race the action that canceled it.
type Engine struct {
	room *room.Room
	cfg  config.GameConfig
	emit game.Emitter
	log  *zap.Logger
	rnd  *rand.Rand

	questions []content.Question

	phase       string
	hostMode    string
	targetScore int
	round       int
	paused      bool
	winnerID    string

	scores   map[string]int
	excluded map[string]bool
	giveUp   map[string]bool
	repeat   map[string]bool

	typeBag  []string
	lastKind string
	banks    map[string][]int
	used     map[string]map[string]bool
	current  *content.Question

	windowID   string
	windowOpen bool
	lockedID   string

	ready       map[string]bool
	submissions map[string]string
	votes       map[string]string
	voteOrder   []string
	voteIdx     int

	deadline        time.Time
	pausedRemaining time.Duration

	answerTimer clock.Timer
	phaseTimer  clock.Timer
}

// New builds an engine bound to a room. Attach it as the room's service.
func New(r *room.Room, cfg config.GameConfig, questions []content.Question, emit game.Emitter, log *zap.Logger) *Engine {
	banks := make(map[string][]int)
	for i := range questions {
		banks[questions[i].Kind] = append(banks[questions[i].Kind], i)
	}
	return &Engine{
		room:      r,
		cfg:       cfg,
		emit:      emit,
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: questions,
		banks:     banks,
		phase:     PhaseLobby,
		scores:    make(map[string]int),
		excluded:  make(map[string]bool),
		giveUp:    make(map[string]bool),
		repeat:    make(map[string]bool),
		used:      make(map[string]map[string]bool),
	}
}

// StartGame begins play. Host only, lobby only, needs two seats.
func (e *Engine) StartGame(actorID, hostMode string, targetScore int) *apperrors.GameError {
	if actorID != e.room.HostID() {
		return apperrors.ErrForbidden
	}
	if e.phase != PhaseLobby {
		return apperrors.ErrAlreadyStarted
	}
	if len(e.room.Players()) < 2 {
		return apperrors.ErrInvalidAction
	}

	switch hostMode {
	case HostModePlayer, HostModeModerator, HostModeAI:
	case "":
		hostMode = HostModePlayer
	default:
		return apperrors.ErrInvalidPayload
	}
	if targetScore <= 0 {
		targetScore = defaultTargetScore
	}

	e.hostMode = hostMode
	e.targetScore = targetScore
	for _, p := range e.room.Players() {
		e.scores[p.ID] = 0
	}
	e.log.Info("quiz started",
		zap.String("room", e.room.Code),
		zap.String("host_mode", hostMode),
		zap.Int("target_score", targetScore))

	e.startRoundLocked()
	return nil
}

// NextRound advances from reveal to a fresh question. Host only; with
// an AI host the reveal timer advances on its own.
func (e *Engine) NextRound(actorID string) *apperrors.GameError {
	if actorID != e.room.HostID() {
		return apperrors.ErrForbidden
	}
	if e.phase != PhaseReveal {
		return apperrors.ErrInvalidAction
	}
	e.phaseTimer.Stop()
	e.startRoundLocked()
	return nil
}

// BuzzPress locks the buzzer for the presser. Presses carrying a stale
// window id lost the race and are dropped without an error.
func (e *Engine) BuzzPress(actorID, windowID string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseBuzzing {
		return apperrors.ErrInvalidAction
	}
	if !e.windowOpen || windowID != e.windowID {
		return nil
	}
	if !e.isPlayableLocked(actorID) || e.excluded[actorID] {
		return apperrors.ErrInvalidAction
	}

	e.windowOpen = false
	e.lockedID = actorID
	e.deadline = time.Now().Add(e.cfg.AnswerTimeout())

	wid := e.windowID
	e.answerTimer.Arm(e.cfg.AnswerTimeout(), func() {
		e.room.WithLock(func() { e.onAnswerTimeout(wid) })
	})

	e.broadcast(protocol.TypeQuizBuzzLocked, buzzLockedEvent{
		PlayerID:       actorID,
		DeadlineUnixMs: e.deadline.UnixMilli(),
	})
	e.pushStateLocked()
	return nil
}

// AnswerSubmit resolves the locked player's answer. A wrong answer costs
// a point and reopens the window for everyone, including the submitter.
// Submissions from anyone but the locked player lost a race with the
// lock or the timeout and are dropped without an error.
func (e *Engine) AnswerSubmit(actorID, text string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseBuzzing || e.windowOpen || e.lockedID != actorID {
		return nil
	}

	e.answerTimer.Stop()
	correct := answer.Matches(text, e.current.Answer, e.current.Alternates)
	if correct {
		e.scores[actorID]++
	} else {
		e.scores[actorID]--
	}
	e.broadcast(protocol.TypeQuizAnswerResult, answerResultEvent{
		PlayerID: actorID,
		Correct:  correct,
		Answer:   text,
		Score:    e.scores[actorID],
	})

	if correct {
		e.endRoundLocked(true)
	} else {
		e.openWindowLocked()
	}
	return nil
}

// GiveUpVote asks to reveal the answer. Idempotent per round; the round
// ends once half the playable table agrees.
func (e *Engine) GiveUpVote(actorID string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseBuzzing || !e.isPlayableLocked(actorID) {
		return apperrors.ErrInvalidAction
	}

	e.giveUp[actorID] = true
	e.broadcast(protocol.TypeQuizGiveUpUpdate, voteCountEvent{
		Votes:  len(e.giveUp),
		Needed: e.votesNeededLocked(),
	})
	e.checkGiveUpLocked()
	return nil
}

// RepeatVote asks for the scrambled word to be replayed. Advisory:
// clients re-animate the prompt when the count reaches the threshold.
// Only reversed rounds can be repeated.
func (e *Engine) RepeatVote(actorID string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseBuzzing || !e.isPlayableLocked(actorID) {
		return apperrors.ErrInvalidAction
	}
	if e.current == nil || e.current.Kind != content.QuestionReversed {
		return apperrors.ErrInvalidAction
	}

	e.repeat[actorID] = true
	e.broadcast(protocol.TypeQuizRepeatUpdate, voteCountEvent{
		Votes:  len(e.repeat),
		Needed: e.votesNeededLocked(),
	})
	return nil
}

func (e *Engine) startRoundLocked() {
	e.round++
	e.excluded = make(map[string]bool)
	e.giveUp = make(map[string]bool)
	e.repeat = make(map[string]bool)
	e.ready = make(map[string]bool)
	e.submissions = make(map[string]string)
	e.votes = make(map[string]string)
	e.voteOrder = nil
	e.voteIdx = 0
	e.lockedID = ""
	e.windowOpen = false

	e.current = e.pickQuestionLocked(e.drawRoundKindLocked())
	if e.current.Kind == content.QuestionDrawing {
		e.phase = PhaseReadyUp
		e.pushStateLocked()
		return
	}
	e.phase = PhaseBuzzing
	e.openWindowLocked()
}

// drawRoundKindLocked pops the next round type from a shuffled bag of
// type tokens. An empty bag refills with one token per stocked kind,
// shuffled so the same type does not run twice back to back.
func (e *Engine) drawRoundKindLocked() string {
	if len(e.typeBag) == 0 {
		var kinds []string
		for _, kind := range []string{content.QuestionReversed, content.QuestionFlag, content.QuestionTrivia, content.QuestionDrawing} {
			if len(e.banks[kind]) > 0 {
				kinds = append(kinds, kind)
			}
		}
		e.rnd.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
		if len(kinds) > 1 && kinds[len(kinds)-1] == e.lastKind {
			kinds[0], kinds[len(kinds)-1] = kinds[len(kinds)-1], kinds[0]
		}
		e.typeBag = kinds
	}
	kind := e.typeBag[len(e.typeBag)-1]
	e.typeBag = e.typeBag[:len(e.typeBag)-1]
	e.lastKind = kind
	return kind
}

// pickQuestionLocked draws an unused question of the given kind. A
// spent category forgets its used list and starts over.
func (e *Engine) pickQuestionLocked(kind string) *content.Question {
	if e.used[kind] == nil {
		e.used[kind] = make(map[string]bool)
	}
	var fresh []int
	for _, idx := range e.banks[kind] {
		if !e.used[kind][e.questions[idx].ID] {
			fresh = append(fresh, idx)
		}
	}
	if len(fresh) == 0 {
		e.used[kind] = make(map[string]bool)
		fresh = e.banks[kind]
	}
	idx := fresh[e.rnd.Intn(len(fresh))]
	q := &e.questions[idx]
	e.used[kind][q.ID] = true
	return q
}

func (e *Engine) openWindowLocked() {
	e.windowID = ident.NewID("window")
	e.windowOpen = true
	e.lockedID = ""
	e.deadline = time.Time{}
	e.broadcast(protocol.TypeQuizBuzzWindow, buzzWindowEvent{
		WindowID: e.windowID,
		Round:    e.round,
		Question: QuestionView{ID: e.current.ID, Kind: e.current.Kind, Text: e.current.Text},
	})
	e.pushStateLocked()
}

func (e *Engine) onAnswerTimeout(windowID string) {
	if e.phase != PhaseBuzzing || e.windowOpen || e.lockedID == "" || windowID != e.windowID || e.paused {
		return
	}
	loser := e.lockedID
	e.scores[loser]--
	e.excluded[loser] = true
	e.broadcast(protocol.TypeQuizAnswerResult, answerResultEvent{
		PlayerID: loser,
		Correct:  false,
		TimedOut: true,
		Score:    e.scores[loser],
	})

	if e.countEligibleLocked() == 0 {
		e.endRoundLocked(true)
		return
	}
	e.openWindowLocked()
}

// endRoundLocked closes the round, optionally revealing the answer, and
// either finishes the game or waits for the next round.
func (e *Engine) endRoundLocked(reveal bool) {
	e.answerTimer.Stop()
	e.phaseTimer.Stop()
	e.windowOpen = false
	e.lockedID = ""

	if reveal && e.current != nil && e.current.Buzzer() {
		e.broadcast(protocol.TypeQuizAnswerReveal, answerRevealEvent{
			QuestionID: e.current.ID,
			Answer:     e.current.Answer,
		})
	}
	e.broadcast(protocol.TypeQuizRoundEnd, roundEndEvent{Round: e.round, Scores: e.copyScoresLocked()})

	if winner := e.findWinnerLocked(); winner != "" {
		e.finishLocked(winner)
		return
	}

	e.phase = PhaseReveal
	if e.hostMode == HostModeAI {
		e.deadline = time.Now().Add(e.cfg.AutoAdvanceDelay())
		round := e.round
		e.phaseTimer.Arm(e.cfg.AutoAdvanceDelay(), func() {
			e.room.WithLock(func() {
				if e.phase == PhaseReveal && e.round == round && !e.paused {
					e.startRoundLocked()
				}
			})
		})
	}
	e.pushStateLocked()
}

func (e *Engine) checkGiveUpLocked() {
	if e.phase != PhaseBuzzing {
		return
	}
	votes := 0
	for id := range e.giveUp {
		if e.isPlayableLocked(id) {
			votes++
		}
	}
	if votes >= e.votesNeededLocked() {
		e.endRoundLocked(true)
	}
}

func (e *Engine) votesNeededLocked() int {
	n := len(e.playableLocked())
	if n == 0 {
		return 1
	}
	return int(math.Ceil(float64(n) / 2))
}

// findWinnerLocked returns the first playable player in seat order at
// or over the target score, or "".
func (e *Engine) findWinnerLocked() string {
	for _, p := range e.playableLocked() {
		if e.scores[p.ID] >= e.targetScore {
			return p.ID
		}
	}
	return ""
}

// finishLocked ends the game and announces the winner.
func (e *Engine) finishLocked(winner string) {
	e.answerTimer.Stop()
	e.phaseTimer.Stop()
	e.windowOpen = false
	e.lockedID = ""
	e.phase = PhaseFinished
	e.winnerID = winner
	e.broadcast(protocol.TypeQuizGameOver, gameOverEvent{WinnerID: winner, Scores: e.copyScoresLocked()})
	e.log.Info("quiz finished", zap.String("room", e.room.Code), zap.String("winner", winner))
	e.pushStateLocked()
}

func (e *Engine) requireRunning() *apperrors.GameError {
	if e.phase == PhaseLobby {
		return apperrors.ErrNotStarted
	}
	if e.phase == PhaseFinished {
		return apperrors.ErrInvalidAction
	}
	if e.paused {
		return apperrors.ErrInvalidAction
	}
	return nil
}

// playableLocked lists connected seats that take part in rounds. The
// host plays unless moderating.
func (e *Engine) playableLocked() []*room.Player {
	var out []*room.Player
	for _, p := range e.room.Players() {
		if !p.Connected {
			continue
		}
		if p.Role == room.RolePlayer || e.hostMode != HostModeModerator {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) isPlayableLocked(id string) bool {
	for _, p := range e.playableLocked() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) countEligibleLocked() int {
	n := 0
	for _, p := range e.playableLocked() {
		if !e.excluded[p.ID] {
			n++
		}
	}
	return n
}

func (e *Engine) copyScoresLocked() map[string]int {
	out := make(map[string]int, len(e.scores))
	for k, v := range e.scores {
		out[k] = v
	}
	return out
}

func (e *Engine) broadcast(msgType string, payload any) {
	e.emit.Broadcast(protocol.NewMessage(msgType, payload))
}
