package board

import (
	"sort"

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
		return e.skipLocked(p.PlayerID)
	case "kick":
		return e.kickLocked(actorID, p.PlayerID)
	case "score_adjust":
		return e.adjustCashLocked(p.PlayerID, p.CashDelta)
	case "toggle_timer":
		return e.toggleTimerLocked()
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
	e.turnTimer.Stop()
	e.pushStateLocked()
	return nil
}

func (e *Engine) resumeLocked() *apperrors.GameError {
	if !e.paused {
		return apperrors.ErrInvalidAction
	}
	e.paused = false
	e.armTurnClockLocked()
	e.pushStateLocked()
	return nil
}

// skipLocked ends the current turn outright. With a player id it instead
// hands the turn to that player.
func (e *Engine) skipLocked(playerID string) *apperrors.GameError {
	if e.phase == PhaseLobby {
		return apperrors.ErrNotStarted
	}
	if e.phase == PhaseFinished {
		return apperrors.ErrInvalidAction
	}

	if e.pendingAction == PendingAuction {
		e.closeAuctionLocked()
	}
	e.extraTurn = false

	if playerID != "" {
		idx := -1
		for i, id := range e.order {
			if id == playerID {
				idx = i
				break
			}
		}
		if idx < 0 || e.seats[playerID].Bankrupt {
			return apperrors.ErrInvalidAction
		}
		e.currentIdx = idx
		e.turnNumber++
		e.pendingTileID = -1
		e.pendingAction = PendingRoll
		e.armTurnClockLocked()
		e.broadcast(protocol.TypeBoardTurnChanged, turnChangedEvent{
			CurrentPlayerID: playerID,
			TurnNumber:      e.turnNumber,
		})
		e.pushStateLocked()
		return nil
	}

	e.advanceTurnLocked()
	e.pushStateLocked()
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

func (e *Engine) adjustCashLocked(targetID string, delta int) *apperrors.GameError {
	if e.phase == PhaseLobby {
		return apperrors.ErrNotStarted
	}
	s, ok := e.seats[targetID]
	if !ok || s.Bankrupt {
		return apperrors.ErrInvalidAction
	}
	s.Cash += delta
	if s.Cash < 0 {
		s.Cash = 0
	}
	e.pushStateLocked()
	return nil
}

func (e *Engine) toggleTimerLocked() *apperrors.GameError {
	if e.phase != PhasePlaying {
		return apperrors.ErrInvalidAction
	}
	e.timerEnabled = !e.timerEnabled
	e.armTurnClockLocked()
	e.pushStateLocked()
	return nil
}

// room.Service hooks. The room calls these with its lock held.

func (e *Engine) OnPlayerJoined(p *room.Player) {
	e.pushStateLocked()
}

func (e *Engine) OnPlayerDisconnected(p *room.Player) {
	// seats survive disconnects; the host can skip a stalled turn
	e.pushStateLocked()
}

// OnPlayerRemoved retires the seat like a bankruptcy to the bank.
func (e *Engine) OnPlayerRemoved(p *room.Player) {
	if e.phase != PhasePlaying {
		delete(e.seats, p.ID)
		e.pushStateLocked()
		return
	}
	s, ok := e.seats[p.ID]
	if !ok || s.Bankrupt {
		e.pushStateLocked()
		return
	}
	s.Cash = 0
	e.bankruptLocked(p.ID, "")
	e.pushStateLocked()
}

func (e *Engine) OnHostTransferred(newHostID string) {
	e.broadcast(protocol.TypeRoomHostTransferred, hostTransferredEvent{NewHostID: newHostID})
	e.pushStateLocked()
}

func (e *Engine) Dispose() {
	e.turnTimer.Stop()
}

// Snapshot returns a state_sync frame for one client. Room lock must be
// held.
func (e *Engine) Snapshot() protocol.Message {
	return protocol.NewMessage(protocol.TypeRoomStateSync, e.stateLocked())
}

func (e *Engine) pushStateLocked() {
	e.emit.Broadcast(protocol.NewMessage(protocol.TypeRoomStateSync, e.stateLocked()))
}

func (e *Engine) stateLocked() StateView {
	players := make([]SeatView, 0, len(e.room.Players()))
	for _, p := range e.room.Players() {
		s := e.seats[p.ID]
		if s == nil {
			s = &seat{}
		}
		players = append(players, seatViewOf(p, s))
	}

	view := StateView{
		Phase:           e.phase,
		Preset:          e.preset,
		Paused:          e.paused,
		HostID:          e.room.HostID(),
		Players:         players,
		CurrentPlayerID: e.currentPlayerLocked(),
		PendingAction:   e.pendingAction,
		PendingTileID:   e.pendingTileID,
		LastDice:        e.lastDice,
		TurnNumber:      e.turnNumber,
		FreeParkingPot:  e.freeParkingPot,
		TimerEnabled:    e.timerEnabled,
		WinnerID:        e.winnerID,
	}
	if e.phase == PhaseLobby {
		view.CurrentPlayerID = ""
		view.PendingAction = ""
	}

	if len(e.tileStates) > 0 {
		ids := make([]int, 0, len(e.tileStates))
		for id := range e.tileStates {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			st := e.tileStates[id]
			view.TileStates = append(view.TileStates, TileStateView{
				TileID:    id,
				OwnerID:   st.OwnerID,
				Houses:    st.Houses,
				Hotel:     st.Hotel,
				Mortgaged: st.Mortgaged,
			})
		}
	}
	if e.auction != nil {
		view.Auction = &AuctionView{
			TileID:       e.auction.TileID,
			HighBid:      e.auction.HighBid,
			HighBidderID: e.auction.HighBidderID,
		}
	}
	if len(e.trades) > 0 {
		ids := make([]string, 0, len(e.trades))
		for id := range e.trades {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			view.Trades = append(view.Trades, tradeViewOf(e.trades[id]))
		}
	}
	if e.timerEnabled && !e.deadline.IsZero() && !e.paused && e.phase == PhasePlaying {
		view.DeadlineUnixMs = e.deadline.UnixMilli()
	}
	return view
}
