// Package board implements the property-trading board engine: movement,
// rent, auctions, mortgages, building, trading and bankruptcy.
package board

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/content"
	"github.com/ags-games/partyhall/internal/game"
	"github.com/ags-games/partyhall/internal/game/clock"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

// Engine runs one board room. Exported action methods expect the room
// lock to be held; timer callbacks take it themselves and re-check the
// turn they were armed for.
type Engine struct {
	room *room.Room
	cfg  config.GameConfig
	emit game.Emitter
	log  *zap.Logger
	rnd  *rand.Rand

	board  []content.Tile
	chance []card
	chest  []card

	// rollDice is swappable for tests
	rollDice func() (int, int)

	phase  string
	preset string
	paused bool

	seats      map[string]*seat
	tileStates map[int]*tileState
	order      []string
	currentIdx int
	turnNumber int

	pendingAction string
	pendingTileID int
	lastDice      [2]int
	extraTurn     bool

	freeParkingPot int
	auction        *auctionState
	trades         map[string]*tradeState

	timerEnabled bool
	deadline     time.Time
	turnTimer    clock.Timer

	winnerID string
}

// New builds an engine bound to a room. Attach it as the room's service.
func New(r *room.Room, cfg config.GameConfig, board []content.Tile, emit game.Emitter, log *zap.Logger) *Engine {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &Engine{
		room:       r,
		cfg:        cfg,
		emit:       emit,
		log:        log,
		rnd:        rnd,
		board:      board,
		chance:     chanceCards(),
		chest:      chestCards(),
		phase:      PhaseLobby,
		seats:      make(map[string]*seat),
		tileStates: make(map[int]*tileState),
		trades:     make(map[string]*tradeState),
		lastDice:   [2]int{3, 4},
	}
	e.rollDice = func() (int, int) {
		return rnd.Intn(6) + 1, rnd.Intn(6) + 1
	}
	return e
}

// StartGame begins play and closes the room to new joins.
func (e *Engine) StartGame(actorID, preset string, timerEnabled bool) *apperrors.GameError {
	if actorID != e.room.HostID() {
		return apperrors.ErrForbidden
	}
	if e.phase != PhaseLobby {
		return apperrors.ErrAlreadyStarted
	}
	players := e.room.Players()
	if len(players) < 2 {
		return apperrors.ErrInvalidAction
	}
	switch preset {
	case PresetOfficial, PresetHouse:
	case "":
		preset = PresetOfficial
	default:
		return apperrors.ErrInvalidPayload
	}

	e.phase = PhasePlaying
	e.preset = preset
	e.timerEnabled = timerEnabled
	e.order = e.order[:0]
	for _, p := range players {
		e.seats[p.ID] = &seat{Cash: startingCash}
		e.order = append(e.order, p.ID)
	}
	for i := range e.board {
		if e.board[i].Purchasable() {
			e.tileStates[i] = &tileState{}
		}
	}
	e.currentIdx = 0
	e.turnNumber = 1
	e.pendingAction = PendingRoll
	e.pendingTileID = -1
	e.room.SetJoinable(false)

	e.log.Info("board game started",
		zap.String("room", e.room.Code),
		zap.String("preset", preset),
		zap.Int("players", len(players)))

	e.armTurnClockLocked()
	e.broadcast(protocol.TypeBoardTurnChanged, turnChangedEvent{
		CurrentPlayerID: e.currentPlayerLocked(),
		TurnNumber:      e.turnNumber,
	})
	e.pushStateLocked()
	return nil
}

// RollRequest rolls for the turn holder and resolves the landing.
func (e *Engine) RollRequest(actorID string) *apperrors.GameError {
	ok, gerr := e.requireTurn(actorID, PendingRoll)
	if gerr != nil {
		return gerr
	}
	if !ok {
		return nil
	}

	d1, d2 := e.rollDice()
	e.lastDice = [2]int{d1, d2}
	double := d1 == d2
	e.broadcast(protocol.TypeBoardDiceRolled, diceRolledEvent{
		PlayerID: actorID,
		Dice:     e.lastDice,
		Double:   double,
	})

	s := e.seats[actorID]
	if s.InJail {
		e.rollFromJailLocked(actorID, s, d1+d2, double)
		e.pushStateLocked()
		return nil
	}

	if double {
		s.RunningDoubles++
		if s.RunningDoubles >= 3 {
			// speeding: straight to jail, turn over
			s.RunningDoubles = 0
			e.sendToJailLocked(actorID)
			e.pushStateLocked()
			return nil
		}
		e.extraTurn = true
	} else {
		s.RunningDoubles = 0
		e.extraTurn = false
	}

	e.moveLocked(actorID, d1+d2)
	e.pushStateLocked()
	return nil
}

// rollFromJailLocked applies the jail roll rules: a double frees and
// moves, a third failed attempt charges the fine and releases without
// movement, anything else waits another turn.
func (e *Engine) rollFromJailLocked(actorID string, s *seat, steps int, double bool) {
	s.RunningDoubles = 0
	e.extraTurn = false

	if double {
		s.InJail = false
		s.JailTurns = 0
		e.moveLocked(actorID, steps)
		return
	}

	s.JailTurns++
	if s.JailTurns >= maxJailTurns {
		s.InJail = false
		s.JailTurns = 0
		e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
			PlayerID: actorID,
			TileID:   jailPosition,
			Action:   "jail_fine",
			Amount:   jailFine,
		})
		e.payLocked(actorID, jailFine, "", payReasonJailFine)
	}
	if !e.seats[actorID].Bankrupt {
		e.pendingAction = PendingEndTurn
	}
}

// moveLocked advances a player, paying salary on a wrap, then resolves
// the destination tile.
func (e *Engine) moveLocked(actorID string, steps int) {
	s := e.seats[actorID]
	from := s.Position
	passedGo := from+steps >= content.BoardSize
	s.Position = (from + steps) % content.BoardSize
	if passedGo {
		s.Cash += goSalary
	}
	e.broadcast(protocol.TypeBoardMoved, movedEvent{
		PlayerID: actorID,
		From:     from,
		To:       s.Position,
		PassedGo: passedGo,
	})
	e.landLocked(actorID)
}

func (e *Engine) landLocked(actorID string) {
	s := e.seats[actorID]
	tile := &e.board[s.Position]

	switch tile.Kind {
	case content.TileProperty, content.TileRailroad, content.TileUtility:
		e.landOnPurchasableLocked(actorID, s.Position, tile)
	case content.TileTax:
		e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
			PlayerID: actorID, TileID: tile.ID, Action: "tax_paid", Amount: tile.TaxAmount,
		})
		e.payLocked(actorID, tile.TaxAmount, "", payReasonTax)
		e.settlePendingLocked(actorID)
	case content.TileChance:
		e.drawCardLocked(actorID, e.chance)
	case content.TileChest:
		e.drawCardLocked(actorID, e.chest)
	case content.TileFreeParking:
		if e.preset == PresetHouse && e.freeParkingPot > 0 {
			s.Cash += e.freeParkingPot
			e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
				PlayerID: actorID, TileID: tile.ID, Action: "jackpot", Amount: e.freeParkingPot,
			})
			e.freeParkingPot = 0
		}
		e.pendingAction = PendingEndTurn
	case content.TileGoToJail:
		e.sendToJailLocked(actorID)
	default: // go, jail (just visiting)
		e.pendingAction = PendingEndTurn
	}
}

func (e *Engine) landOnPurchasableLocked(actorID string, tileID int, tile *content.Tile) {
	st := e.tileStates[tileID]
	switch {
	case st.OwnerID == "":
		e.pendingAction = PendingBuyOrAuction
		e.pendingTileID = tileID
		e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
			PlayerID: actorID, TileID: tileID, Action: "buy_or_auction", Amount: tile.Price,
		})
	case st.OwnerID == actorID || st.Mortgaged:
		e.pendingAction = PendingEndTurn
	default:
		rent := e.rentLocked(tileID)
		e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
			PlayerID: actorID, TileID: tileID, Action: "rent_paid", Amount: rent, ToID: st.OwnerID,
		})
		e.payLocked(actorID, rent, st.OwnerID, payReasonRent)
		e.settlePendingLocked(actorID)
	}
}

func (e *Engine) drawCardLocked(actorID string, deck []card) {
	c := deck[e.rnd.Intn(len(deck))]
	s := e.seats[actorID]
	tileID := s.Position

	e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
		PlayerID: actorID, TileID: tileID, Action: "card", CardText: c.Text, Amount: c.Amount,
	})

	switch {
	case c.Jail:
		e.sendToJailLocked(actorID)
	case c.MoveTo >= 0:
		steps := (c.MoveTo - s.Position + content.BoardSize) % content.BoardSize
		if steps == 0 {
			steps = content.BoardSize
		}
		e.moveLocked(actorID, steps)
	case c.Amount > 0:
		s.Cash += c.Amount
		e.pendingAction = PendingEndTurn
	default:
		e.payLocked(actorID, -c.Amount, "", payReasonCard)
		e.settlePendingLocked(actorID)
	}
}

// sendToJailLocked jails a player and ends their movement. A jailing
// always forfeits a pending extra turn.
func (e *Engine) sendToJailLocked(actorID string) {
	s := e.seats[actorID]
	s.Position = jailPosition
	s.InJail = true
	s.JailTurns = 0
	e.extraTurn = false
	e.pendingAction = PendingEndTurn
	e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
		PlayerID: actorID, TileID: jailPosition, Action: "go_to_jail",
	})
}

// settlePendingLocked sets the post-payment pending action unless the
// payer just went bankrupt, which already advanced the turn.
func (e *Engine) settlePendingLocked(actorID string) {
	if e.phase != PhasePlaying {
		return
	}
	if s, ok := e.seats[actorID]; ok && !s.Bankrupt {
		e.pendingAction = PendingEndTurn
	}
}

// EndTurn closes the turn holder's turn. The host may also force it.
// Ending a turn that still has an unresolved action is a stale frame
// and drops silently.
func (e *Engine) EndTurn(actorID string) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	if actorID != e.currentPlayerLocked() && actorID != e.room.HostID() {
		return apperrors.ErrInvalidAction
	}
	if e.pendingAction != PendingEndTurn {
		return nil
	}
	e.advanceTurnLocked()
	e.pushStateLocked()
	return nil
}

func (e *Engine) advanceTurnLocked() {
	e.turnNumber++
	e.pendingTileID = -1

	if e.extraTurn && !e.seats[e.currentPlayerLocked()].Bankrupt {
		e.extraTurn = false
		e.pendingAction = PendingRoll
		e.armTurnClockLocked()
		e.broadcast(protocol.TypeBoardTurnChanged, turnChangedEvent{
			CurrentPlayerID: e.currentPlayerLocked(),
			TurnNumber:      e.turnNumber,
			ExtraTurn:       true,
		})
		return
	}
	e.extraTurn = false

	for i := 0; i < len(e.order); i++ {
		e.currentIdx = (e.currentIdx + 1) % len(e.order)
		if s, ok := e.seats[e.order[e.currentIdx]]; ok && !s.Bankrupt {
			break
		}
	}
	e.pendingAction = PendingRoll
	e.armTurnClockLocked()
	e.broadcast(protocol.TypeBoardTurnChanged, turnChangedEvent{
		CurrentPlayerID: e.currentPlayerLocked(),
		TurnNumber:      e.turnNumber,
	})
}

func (e *Engine) armTurnClockLocked() {
	if !e.timerEnabled {
		e.turnTimer.Stop()
		e.deadline = time.Time{}
		return
	}
	e.deadline = time.Now().Add(e.cfg.TurnTimeout())
	turn := e.turnNumber
	e.turnTimer.Arm(e.cfg.TurnTimeout(), func() {
		e.room.WithLock(func() {
			if e.phase == PhasePlaying && e.turnNumber == turn && !e.paused {
				e.onTurnTimeout()
			}
		})
	})
}

// onTurnTimeout forces the turn forward: a live auction settles at the
// standing bid, a pending purchase lapses to nothing.
func (e *Engine) onTurnTimeout() {
	if e.pendingAction == PendingAuction {
		e.closeAuctionLocked()
	}
	e.pendingAction = PendingEndTurn
	e.extraTurn = false
	e.advanceTurnLocked()
	e.pushStateLocked()
}

func (e *Engine) currentPlayerLocked() string {
	if len(e.order) == 0 {
		return ""
	}
	return e.order[e.currentIdx]
}

func (e *Engine) requirePlaying() *apperrors.GameError {
	switch e.phase {
	case PhaseLobby:
		return apperrors.ErrNotStarted
	case PhaseFinished:
		return apperrors.ErrInvalidAction
	}
	if e.paused {
		return apperrors.ErrInvalidAction
	}
	return nil
}

// requireTurn gates a turn-holder action. Phase and authorization
// failures come back as errors; a pending-action mismatch or a retired
// seat is a stale frame and drops silently (false, nil).
func (e *Engine) requireTurn(actorID, pending string) (bool, *apperrors.GameError) {
	if gerr := e.requirePlaying(); gerr != nil {
		return false, gerr
	}
	if actorID != e.currentPlayerLocked() {
		return false, apperrors.ErrInvalidAction
	}
	if s := e.seats[actorID]; s == nil || s.Bankrupt {
		return false, nil
	}
	if e.pendingAction != pending {
		return false, nil
	}
	return true, nil
}

func (e *Engine) broadcast(msgType string, payload any) {
	e.emit.Broadcast(protocol.NewMessage(msgType, payload))
}
