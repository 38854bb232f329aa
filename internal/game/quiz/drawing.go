package quiz

import (
	"sort"
	"time"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/protocol"
)

// ReadySignal marks a player ready for the drawing round. The round
// starts once every playable seat is ready.
func (e *Engine) ReadySignal(actorID string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseReadyUp || !e.isPlayableLocked(actorID) {
		return apperrors.ErrInvalidAction
	}

	e.ready[actorID] = true
	e.pushStateLocked()
	e.checkAllReadyLocked()
	return nil
}

// DrawingSubmit stores a drawing. Resubmitting before the deadline
// replaces the earlier image.
func (e *Engine) DrawingSubmit(actorID, imageDataURL string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseDrawing || !e.isPlayableLocked(actorID) {
		return apperrors.ErrInvalidAction
	}

	e.submissions[actorID] = imageDataURL
	e.pushStateLocked()
	if len(e.submissions) >= len(e.playableLocked()) {
		e.startVotingLocked()
	}
	return nil
}

// VoteCast records the current voter's pick. Voting is strictly in turn
// order; self-votes and repeat votes are rejected.
func (e *Engine) VoteCast(actorID, targetID string) *apperrors.GameError {
	if gerr := e.requireRunning(); gerr != nil {
		return gerr
	}
	if e.phase != PhaseVoting {
		return apperrors.ErrInvalidAction
	}
	if e.currentVoterLocked() != actorID {
		return apperrors.ErrInvalidAction
	}
	if targetID == actorID {
		return apperrors.ErrInvalidAction
	}
	if _, ok := e.submissions[targetID]; !ok {
		return apperrors.ErrInvalidAction
	}
	if _, voted := e.votes[actorID]; voted {
		return apperrors.ErrInvalidAction
	}

	e.votes[actorID] = targetID
	e.voteIdx++
	e.advanceVoterLocked()

	e.broadcast(protocol.TypeQuizVoteRecorded, voteRecordedEvent{
		VoterID:        actorID,
		CurrentVoterID: e.currentVoterLocked(),
	})
	e.pushStateLocked()

	if e.currentVoterLocked() == "" {
		e.tallyVotesLocked()
	}
	return nil
}

func (e *Engine) checkAllReadyLocked() {
	if e.phase != PhaseReadyUp {
		return
	}
	playable := e.playableLocked()
	if len(playable) == 0 {
		return
	}
	for _, p := range playable {
		if !e.ready[p.ID] {
			return
		}
	}
	e.startDrawingLocked()
}

func (e *Engine) startDrawingLocked() {
	e.phase = PhaseDrawing
	e.deadline = time.Now().Add(e.cfg.DrawingTimeout())

	round := e.round
	e.phaseTimer.Arm(e.cfg.DrawingTimeout(), func() {
		e.room.WithLock(func() {
			if e.phase == PhaseDrawing && e.round == round && !e.paused {
				e.onDrawingDeadline()
			}
		})
	})

	e.broadcast(protocol.TypeQuizDrawingPhase, drawingPhaseEvent{
		Prompt:         e.current.Text,
		DeadlineUnixMs: e.deadline.UnixMilli(),
	})
	e.pushStateLocked()
}

func (e *Engine) onDrawingDeadline() {
	if len(e.submissions) == 0 {
		e.endRoundLocked(false)
		return
	}
	e.startVotingLocked()
}

func (e *Engine) startVotingLocked() {
	e.phaseTimer.Stop()
	e.phase = PhaseVoting
	e.deadline = time.Time{}
	e.voteIdx = 0

	// voters in seat order, only those with someone else's drawing to
	// judge
	e.voteOrder = nil
	for _, p := range e.playableLocked() {
		if e.hasVotableTargetLocked(p.ID) {
			e.voteOrder = append(e.voteOrder, p.ID)
		}
	}

	subs := make([]submissionView, 0, len(e.submissions))
	for id, img := range e.submissions {
		subs = append(subs, submissionView{PlayerID: id, ImageDataURL: img})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].PlayerID < subs[j].PlayerID })

	e.broadcast(protocol.TypeQuizVotingPhase, votingPhaseEvent{
		Submissions:    subs,
		CurrentVoterID: e.currentVoterLocked(),
	})
	e.pushStateLocked()

	if e.currentVoterLocked() == "" {
		e.tallyVotesLocked()
	}
}

func (e *Engine) hasVotableTargetLocked(voterID string) bool {
	for id := range e.submissions {
		if id != voterID {
			return true
		}
	}
	return false
}

func (e *Engine) currentVoterLocked() string {
	if e.phase != PhaseVoting || e.voteIdx >= len(e.voteOrder) {
		return ""
	}
	return e.voteOrder[e.voteIdx]
}

// advanceVoterLocked skips voters who already voted or dropped.
func (e *Engine) advanceVoterLocked() {
	for e.voteIdx < len(e.voteOrder) {
		id := e.voteOrder[e.voteIdx]
		if _, voted := e.votes[id]; !voted && e.isPlayableLocked(id) {
			return
		}
		e.voteIdx++
	}
}

// tallyVotesLocked scores the drawing round: every leader of a non-zero
// plurality gains a point.
func (e *Engine) tallyVotesLocked() {
	tallies := make(map[string]int, len(e.submissions))
	for id := range e.submissions {
		tallies[id] = 0
	}
	for _, target := range e.votes {
		tallies[target]++
	}

	max := 0
	for _, n := range tallies {
		if n > max {
			max = n
		}
	}
	var winners []string
	if max > 0 {
		for id, n := range tallies {
			if n == max {
				winners = append(winners, id)
			}
		}
		sort.Strings(winners)
		for _, id := range winners {
			e.scores[id]++
		}
	}

	e.broadcast(protocol.TypeQuizVotingResult, votingResultEvent{
		Tallies:   tallies,
		WinnerIDs: winners,
	})
	e.endRoundLocked(false)
}
