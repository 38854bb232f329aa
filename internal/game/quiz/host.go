package quiz

import (
	"sort"
	"time"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

// HostAction performs a moderation action. Host only.
func (e *Engine) HostAction(actorID string, p *protocol.HostActionPayload) *apperrors.GameError {
	if actorID != e.room.HostID() {
		return apperrors.ErrForbidden
	}

	switch p.Action {
	case "pause":
		return e.pauseLocked()
	case "resume":
		return e.resumeLocked()
	case "skip":
		return e.skipLocked()
	case "kick":
		return e.kickLocked(actorID, p.PlayerID)
	case "score_adjust":
		return e.adjustScoreLocked(p.PlayerID, p.Delta)
	default:
		return apperrors.ErrInvalidAction
	}
}

func (e *Engine) pauseLocked() *apperrors.GameError {
	if e.phase == PhaseLobby {
		return apperrors.ErrNotStarted
	}
	if e.phase == PhaseFinished || e.paused {
		return apperrors.ErrInvalidAction
	}
	e.paused = true
	if !e.deadline.IsZero() {
		e.pausedRemaining = time.Until(e.deadline)
		if e.pausedRemaining < time.Second {
			e.pausedRemaining = time.Second
		}
	}
	e.answerTimer.Stop()
	e.phaseTimer.Stop()
	e.pushStateLocked()
	return nil
}

func (e *Engine) resumeLocked() *apperrors.GameError {
	if !e.paused {
		return apperrors.ErrInvalidAction
	}
	e.paused = false

	rem := e.pausedRemaining
	e.pausedRemaining = 0
	switch {
	case e.phase == PhaseBuzzing && e.lockedID != "":
		e.deadline = time.Now().Add(rem)
		wid := e.windowID
		e.answerTimer.Arm(rem, func() {
			e.room.WithLock(func() { e.onAnswerTimeout(wid) })
		})
	case e.phase == PhaseDrawing:
		e.deadline = time.Now().Add(rem)
		round := e.round
		e.phaseTimer.Arm(rem, func() {
			e.room.WithLock(func() {
				if e.phase == PhaseDrawing && e.round == round && !e.paused {
					e.onDrawingDeadline()
				}
			})
		})
	case e.phase == PhaseReveal && e.hostMode == HostModeAI:
		e.deadline = time.Now().Add(rem)
		round := e.round
		e.phaseTimer.Arm(rem, func() {
			e.room.WithLock(func() {
				if e.phase == PhaseReveal && e.round == round && !e.paused {
					e.startRoundLocked()
				}
			})
		})
	}
	e.pushStateLocked()
	return nil
}

func (e *Engine) skipLocked() *apperrors.GameError {
	switch e.phase {
	case PhaseLobby:
		return apperrors.ErrNotStarted
	case PhaseFinished:
		return apperrors.ErrInvalidAction
	case PhaseReveal:
		e.phaseTimer.Stop()
		e.startRoundLocked()
	default:
		e.endRoundLocked(true)
	}
	return nil
}

func (e *Engine) kickLocked(actorID, targetID string) *apperrors.GameError {
	if targetID == "" || targetID == actorID {
		return apperrors.ErrInvalidAction
	}
	if e.room.PlayerByID(targetID) == nil {
		return apperrors.ErrInvalidAction
	}
	e.room.RemoveLocked(targetID)
	return nil
}

// adjustScoreLocked applies a direct delta. Any score mutation can end
// the game, so the win check runs here too.
func (e *Engine) adjustScoreLocked(targetID string, delta int) *apperrors.GameError {
	if e.phase == PhaseLobby {
		return apperrors.ErrNotStarted
	}
	if e.room.PlayerByID(targetID) == nil {
		return apperrors.ErrInvalidAction
	}
	e.scores[targetID] += delta
	if e.phase != PhaseFinished {
		if winner := e.findWinnerLocked(); winner != "" {
			e.finishLocked(winner)
			return nil
		}
	}
	e.pushStateLocked()
	return nil
}

// room.Service hooks. The room calls these with its lock held.

func (e *Engine) OnPlayerJoined(p *room.Player) {
	if e.phase != PhaseLobby {
		if _, ok := e.scores[p.ID]; !ok {
			e.scores[p.ID] = 0
		}
	}
	e.pushStateLocked()
}

func (e *Engine) OnPlayerDisconnected(p *room.Player) {
	switch e.phase {
	case PhaseBuzzing:
		if e.lockedID == p.ID {
			// a dropped answerer forfeits immediately
			e.answerTimer.Stop()
			e.onAnswerTimeout(e.windowID)
		} else {
			e.checkGiveUpLocked()
		}
	case PhaseReadyUp:
		e.checkAllReadyLocked()
	case PhaseDrawing:
		if len(e.submissions) >= len(e.playableLocked()) && len(e.playableLocked()) > 0 {
			e.startVotingLocked()
		}
	case PhaseVoting:
		if e.currentVoterLocked() == p.ID {
			e.advanceVoterLocked()
			if e.currentVoterLocked() == "" {
				e.tallyVotesLocked()
				return
			}
		}
	}
	e.pushStateLocked()
}

func (e *Engine) OnPlayerRemoved(p *room.Player) {
	delete(e.scores, p.ID)
	delete(e.excluded, p.ID)
	delete(e.giveUp, p.ID)
	delete(e.repeat, p.ID)
	delete(e.ready, p.ID)
	delete(e.submissions, p.ID)
	delete(e.votes, p.ID)
	for voter, target := range e.votes {
		if target == p.ID {
			delete(e.votes, voter)
		}
	}

	if len(e.voteOrder) > 0 {
		order := make([]string, 0, len(e.voteOrder))
		for _, id := range e.voteOrder {
			if id != p.ID {
				order = append(order, id)
			}
		}
		e.voteOrder = order
		e.voteIdx = 0
		e.advanceVoterLocked()
	}

	switch e.phase {
	case PhaseBuzzing:
		if e.lockedID == p.ID {
			e.answerTimer.Stop()
			e.lockedID = ""
			if e.countEligibleLocked() == 0 {
				e.endRoundLocked(true)
				return
			}
			e.openWindowLocked()
			return
		}
		e.checkGiveUpLocked()
	case PhaseReadyUp:
		e.checkAllReadyLocked()
	case PhaseDrawing:
		playable := len(e.playableLocked())
		if playable > 0 && len(e.submissions) >= playable {
			e.startVotingLocked()
			return
		}
	case PhaseVoting:
		if e.currentVoterLocked() == "" {
			e.tallyVotesLocked()
			return
		}
	}
	e.pushStateLocked()
}

func (e *Engine) OnHostTransferred(newHostID string) {
	e.broadcast(protocol.TypeRoomHostTransferred, hostTransferredEvent{NewHostID: newHostID})
	e.pushStateLocked()
}

func (e *Engine) Dispose() {
	e.answerTimer.Stop()
	e.phaseTimer.Stop()
}

// Snapshot returns a state_sync frame for one client. Room lock must be
// held.
func (e *Engine) Snapshot() protocol.Message {
	return protocol.NewMessage(protocol.TypeRoomStateSync, e.stateLocked())
}

// pushStateLocked broadcasts a fresh snapshot. Everything inside the
// view is copied so marshaling can happen off-lock.
func (e *Engine) pushStateLocked() {
	e.emit.Broadcast(protocol.NewMessage(protocol.TypeRoomStateSync, e.stateLocked()))
}

func (e *Engine) stateLocked() StateView {
	players := make([]room.Player, 0, len(e.room.Players()))
	for _, p := range e.room.Players() {
		players = append(players, *p)
	}

	view := StateView{
		Phase:          e.phase,
		HostMode:       e.hostMode,
		TargetScore:    e.targetScore,
		Round:          e.round,
		Paused:         e.paused,
		HostID:         e.room.HostID(),
		Players:        players,
		Scores:         e.copyScoresLocked(),
		WindowID:       e.windowID,
		LockedPlayerID: e.lockedID,
		ExcludedIDs:    sortedKeys(e.excluded),
		GiveUpVotes:    len(e.giveUp),
		RepeatVotes:    len(e.repeat),
		VotesNeeded:    e.votesNeededLocked(),
		ReadyIDs:       sortedKeys(e.ready),
		CurrentVoterID: e.currentVoterLocked(),
		WinnerID:       e.winnerID,
	}
	if e.current != nil && e.phase != PhaseLobby {
		view.Question = &QuestionView{ID: e.current.ID, Kind: e.current.Kind, Text: e.current.Text}
	}
	if len(e.submissions) > 0 {
		ids := make([]string, 0, len(e.submissions))
		for id := range e.submissions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		view.SubmittedIDs = ids
	}
	if !e.deadline.IsZero() && !e.paused {
		view.DeadlineUnixMs = e.deadline.UnixMilli()
	}
	return view
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
