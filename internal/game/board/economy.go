package board

import (
	"math"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/content"
	"github.com/ags-games/partyhall/internal/ident"
	"github.com/ags-games/partyhall/internal/protocol"
)

// BuyCommit resolves a pending purchase: accept pays the list price,
// decline opens an auction for everyone.
func (e *Engine) BuyCommit(actorID string, tileID int, accept bool) *apperrors.GameError {
	ok, gerr := e.requireTurn(actorID, PendingBuyOrAuction)
	if gerr != nil {
		return gerr
	}
	if !ok || tileID != e.pendingTileID {
		return nil
	}

	if !accept {
		e.auction = &auctionState{TileID: tileID}
		e.pendingAction = PendingAuction
		e.broadcast(protocol.TypeBoardAuctionUpdate, auctionUpdateEvent{TileID: tileID})
		e.pushStateLocked()
		return nil
	}

	tile := &e.board[tileID]
	s := e.seats[actorID]
	if s.Cash < tile.Price {
		return apperrors.ErrInvalidAction
	}
	s.Cash -= tile.Price
	e.tileStates[tileID].OwnerID = actorID
	e.pendingAction = PendingEndTurn
	e.broadcast(protocol.TypeBoardTileAction, tileActionEvent{
		PlayerID: actorID, TileID: tileID, Action: "bought", Amount: tile.Price,
	})
	e.pushStateLocked()
	return nil
}

// AuctionBid raises the standing bid. Bids must strictly increase and
// stay within the bidder's cash. A bid arriving after the auction
// settled is a stale frame and drops silently.
func (e *Engine) AuctionBid(actorID string, amount int) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	if e.pendingAction != PendingAuction || e.auction == nil {
		return nil
	}
	s := e.seats[actorID]
	if s == nil || s.Bankrupt {
		return nil
	}
	if amount <= e.auction.HighBid || amount > s.Cash {
		return apperrors.ErrInvalidAction
	}

	e.auction.HighBid = amount
	e.auction.HighBidderID = actorID
	e.broadcast(protocol.TypeBoardAuctionUpdate, auctionUpdateEvent{
		TileID:       e.auction.TileID,
		HighBid:      amount,
		HighBidderID: actorID,
	})
	e.pushStateLocked()
	return nil
}

// AuctionClose settles the auction at the standing bid. The turn holder
// or the host may close it.
func (e *Engine) AuctionClose(actorID string) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	if e.pendingAction != PendingAuction || e.auction == nil {
		return nil
	}
	if actorID != e.currentPlayerLocked() && actorID != e.room.HostID() {
		return apperrors.ErrInvalidAction
	}
	e.closeAuctionLocked()
	e.pushStateLocked()
	return nil
}

// closeAuctionLocked transfers the tile to the high bidder. Auction
// proceeds always go to the bank, never the pot.
func (e *Engine) closeAuctionLocked() {
	a := e.auction
	e.auction = nil
	e.pendingAction = PendingEndTurn
	if a == nil {
		return
	}

	if a.HighBidderID != "" {
		if s := e.seats[a.HighBidderID]; s != nil && !s.Bankrupt && s.Cash >= a.HighBid {
			s.Cash -= a.HighBid
			e.tileStates[a.TileID].OwnerID = a.HighBidderID
		}
	}
	e.broadcast(protocol.TypeBoardAuctionClosed, auctionClosedEvent{
		TileID:   a.TileID,
		WinnerID: a.HighBidderID,
		FinalBid: a.HighBid,
	})
}

// MortgageToggle moves a tile to the requested mortgage state:
// mortgaging an undeveloped tile pays out its mortgage value, lifting
// costs the value plus ten percent interest. The frame carries the
// target state, so a duplicate delivery is a no-op instead of an
// accidental double flip.
func (e *Engine) MortgageToggle(actorID string, tileID int, mortgaged bool) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	st, ok := e.tileStates[tileID]
	if !ok || st.OwnerID != actorID {
		return apperrors.ErrInvalidAction
	}
	s := e.seats[actorID]
	if s == nil || s.Bankrupt {
		return apperrors.ErrInvalidAction
	}
	if st.Mortgaged == mortgaged {
		return nil
	}
	tile := &e.board[tileID]

	if mortgaged {
		if st.level() > 0 {
			return apperrors.ErrInvalidAction
		}
		st.Mortgaged = true
		s.Cash += tile.MortgageValue
	} else {
		cost := int(math.Ceil(mortgageInterest * float64(tile.MortgageValue)))
		if s.Cash < cost {
			return apperrors.ErrInvalidAction
		}
		s.Cash -= cost
		st.Mortgaged = false
	}
	e.pushStateLocked()
	return nil
}

// HouseAction builds or sells one development step, keeping the group
// even: building targets the least developed tile, selling the most.
func (e *Engine) HouseAction(actorID string, tileID int, op string) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	st, ok := e.tileStates[tileID]
	if !ok || st.OwnerID != actorID {
		return apperrors.ErrInvalidAction
	}
	tile := &e.board[tileID]
	if tile.Kind != content.TileProperty {
		return apperrors.ErrInvalidAction
	}
	s := e.seats[actorID]
	if s == nil || s.Bankrupt {
		return apperrors.ErrInvalidAction
	}

	switch op {
	case "buy":
		if !e.ownsGroupLocked(actorID, tile.Group) || st.Mortgaged {
			return apperrors.ErrInvalidAction
		}
		if st.level() >= 5 || st.level() > e.groupMinLevelLocked(tile.Group) {
			return apperrors.ErrInvalidAction
		}
		if s.Cash < tile.HousePrice {
			return apperrors.ErrInvalidAction
		}
		s.Cash -= tile.HousePrice
		if st.Houses == 4 {
			st.Houses = 0
			st.Hotel = true
		} else {
			st.Houses++
		}
	case "sell":
		if st.level() == 0 || st.level() < e.groupMaxLevelLocked(tile.Group) {
			return apperrors.ErrInvalidAction
		}
		if st.Hotel {
			st.Hotel = false
			st.Houses = 4
		} else {
			st.Houses--
		}
		s.Cash += tile.HousePrice / 2
	default:
		return apperrors.ErrInvalidAction
	}
	e.pushStateLocked()
	return nil
}

// TradePropose opens a trade offer. Developed tiles cannot change hands.
func (e *Engine) TradePropose(actorID string, p *protocol.TradeProposePayload) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	from := e.seats[actorID]
	to := e.seats[p.ToPlayerID]
	if from == nil || from.Bankrupt || to == nil || to.Bankrupt || p.ToPlayerID == actorID {
		return apperrors.ErrInvalidAction
	}
	if !e.tilesTradableLocked(actorID, p.OfferTiles) || !e.tilesTradableLocked(p.ToPlayerID, p.RequestTiles) {
		return apperrors.ErrInvalidAction
	}
	if p.OfferCash > from.Cash || p.RequestCash > to.Cash {
		return apperrors.ErrInvalidAction
	}

	tr := &tradeState{
		ID:           ident.NewID("trade"),
		FromID:       actorID,
		ToID:         p.ToPlayerID,
		OfferCash:    p.OfferCash,
		OfferTiles:   append([]int(nil), p.OfferTiles...),
		RequestCash:  p.RequestCash,
		RequestTiles: append([]int(nil), p.RequestTiles...),
	}
	e.trades[tr.ID] = tr
	e.broadcast(protocol.TypeBoardTradeUpdate, tradeUpdateEvent{Trade: tradeViewOf(tr), Status: "proposed"})
	e.pushStateLocked()
	return nil
}

// TradeDecide accepts or rejects an offer. Acceptance re-validates the
// whole trade against current cash and ownership; if anything moved
// since the proposal, the trade is rejected as a unit.
func (e *Engine) TradeDecide(actorID, tradeID string, accept bool) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	tr, ok := e.trades[tradeID]
	if !ok || tr.ToID != actorID {
		return apperrors.ErrInvalidAction
	}
	delete(e.trades, tradeID)

	if !accept {
		e.broadcast(protocol.TypeBoardTradeUpdate, tradeUpdateEvent{Trade: tradeViewOf(tr), Status: "rejected"})
		e.pushStateLocked()
		return nil
	}

	from := e.seats[tr.FromID]
	to := e.seats[tr.ToID]
	valid := from != nil && !from.Bankrupt && to != nil && !to.Bankrupt &&
		from.Cash >= tr.OfferCash && to.Cash >= tr.RequestCash &&
		e.tilesTradableLocked(tr.FromID, tr.OfferTiles) &&
		e.tilesTradableLocked(tr.ToID, tr.RequestTiles)
	if !valid {
		e.broadcast(protocol.TypeBoardTradeUpdate, tradeUpdateEvent{Trade: tradeViewOf(tr), Status: "rejected"})
		e.pushStateLocked()
		return nil
	}

	from.Cash += tr.RequestCash - tr.OfferCash
	to.Cash += tr.OfferCash - tr.RequestCash
	for _, id := range tr.OfferTiles {
		e.tileStates[id].OwnerID = tr.ToID
	}
	for _, id := range tr.RequestTiles {
		e.tileStates[id].OwnerID = tr.FromID
	}
	e.broadcast(protocol.TypeBoardTradeUpdate, tradeUpdateEvent{Trade: tradeViewOf(tr), Status: "accepted"})
	e.pushStateLocked()
	return nil
}

// TradeCancel withdraws a pending offer. Proposer only.
func (e *Engine) TradeCancel(actorID, tradeID string) *apperrors.GameError {
	if gerr := e.requirePlaying(); gerr != nil {
		return gerr
	}
	tr, ok := e.trades[tradeID]
	if !ok || tr.FromID != actorID {
		return apperrors.ErrInvalidAction
	}
	delete(e.trades, tradeID)
	e.broadcast(protocol.TypeBoardTradeUpdate, tradeUpdateEvent{Trade: tradeViewOf(tr), Status: "canceled"})
	e.pushStateLocked()
	return nil
}

func (e *Engine) tilesTradableLocked(ownerID string, tiles []int) bool {
	for _, id := range tiles {
		st, ok := e.tileStates[id]
		if !ok || st.OwnerID != ownerID || st.level() > 0 {
			return false
		}
	}
	return true
}

// rentLocked computes the rent owed on a tile. Mortgaged holdings never
// earn and never count toward railroad or utility multipliers.
func (e *Engine) rentLocked(tileID int) int {
	tile := &e.board[tileID]
	st := e.tileStates[tileID]

	switch tile.Kind {
	case content.TileProperty:
		switch {
		case st.Hotel:
			return tile.RentWithHotel
		case st.Houses > 0:
			return tile.RentWithHouse[st.Houses-1]
		case e.ownsGroupLocked(st.OwnerID, tile.Group):
			return tile.Rent * 2
		default:
			return tile.Rent
		}
	case content.TileRailroad:
		n := e.countOwnedUnmortgagedLocked(st.OwnerID, content.TileRailroad)
		idx := n - 1
		if idx < 0 {
			idx = 0
		}
		if idx > 3 {
			idx = 3
		}
		return tile.RentByCount[idx]
	case content.TileUtility:
		sum := e.lastDice[0] + e.lastDice[1]
		if sum == 0 {
			sum = defaultDiceSum
		}
		if e.countOwnedUnmortgagedLocked(st.OwnerID, content.TileUtility) >= 2 {
			return UtilityRentPair(sum)
		}
		return UtilityRentSingle(sum)
	}
	return 0
}

// UtilityRentSingle is the rent for one owned utility.
func UtilityRentSingle(diceSum int) int {
	return content.UtilityMultiplierSingle * diceSum
}

// UtilityRentPair is the rent when the owner holds both utilities.
func UtilityRentPair(diceSum int) int {
	return content.UtilityMultiplierPair * diceSum
}

func (e *Engine) countOwnedUnmortgagedLocked(ownerID, kind string) int {
	n := 0
	for id, st := range e.tileStates {
		if st.OwnerID == ownerID && !st.Mortgaged && e.board[id].Kind == kind {
			n++
		}
	}
	return n
}

func (e *Engine) ownsGroupLocked(ownerID, group string) bool {
	if ownerID == "" {
		return false
	}
	for i := range e.board {
		if e.board[i].Kind == content.TileProperty && e.board[i].Group == group {
			if e.tileStates[i].OwnerID != ownerID {
				return false
			}
		}
	}
	return true
}

func (e *Engine) groupMinLevelLocked(group string) int {
	min := 5
	for i := range e.board {
		if e.board[i].Kind == content.TileProperty && e.board[i].Group == group {
			if lvl := e.tileStates[i].level(); lvl < min {
				min = lvl
			}
		}
	}
	return min
}

func (e *Engine) groupMaxLevelLocked(group string) int {
	max := 0
	for i := range e.board {
		if e.board[i].Kind == content.TileProperty && e.board[i].Group == group {
			if lvl := e.tileStates[i].level(); lvl > max {
				max = lvl
			}
		}
	}
	return max
}

// payLocked moves money out of a player: to another player, to the free
// parking pot when the house preset routes the reason there, or to the
// bank. Shortfalls trigger bankruptcy with a partial payment.
func (e *Engine) payLocked(payerID string, amount int, creditorID, reason string) {
	if amount <= 0 {
		return
	}
	s := e.seats[payerID]

	toPot := e.preset == PresetHouse && (reason == payReasonTax || reason == payReasonCard)

	if s.Cash >= amount {
		s.Cash -= amount
		switch {
		case creditorID != "":
			e.seats[creditorID].Cash += amount
		case toPot:
			e.freeParkingPot += amount
		}
		return
	}

	// partial payment, then bankruptcy
	paid := s.Cash
	s.Cash = 0
	switch {
	case creditorID != "":
		e.seats[creditorID].Cash += paid
	case toPot:
		e.freeParkingPot += paid
	}
	e.bankruptLocked(payerID, creditorID)
}

// bankruptLocked retires a player: assets go to the creditor player, or
// back to the bank cleared of development and mortgages.
func (e *Engine) bankruptLocked(playerID, creditorID string) {
	s := e.seats[playerID]
	s.Bankrupt = true

	creditorSeat := e.seats[creditorID]
	toCreditor := creditorID != "" && creditorSeat != nil && !creditorSeat.Bankrupt
	for _, st := range e.tileStates {
		if st.OwnerID != playerID {
			continue
		}
		if toCreditor {
			st.OwnerID = creditorID
		} else {
			*st = tileState{}
		}
	}

	for id, tr := range e.trades {
		if tr.FromID == playerID || tr.ToID == playerID {
			delete(e.trades, id)
		}
	}

	e.broadcast(protocol.TypeBoardPlayerBankrupt, playerBankruptEvent{
		PlayerID:   playerID,
		CreditorID: creditorID,
	})
	e.log.Info("player bankrupt",
		zap.String("room", e.room.Code),
		zap.String("player", playerID))

	if e.checkWinnerLocked() {
		return
	}
	if playerID == e.currentPlayerLocked() {
		e.extraTurn = false
		e.advanceTurnLocked()
	}
}

// checkWinnerLocked finishes the game when one solvent player remains.
func (e *Engine) checkWinnerLocked() bool {
	alive := ""
	count := 0
	for id, s := range e.seats {
		if !s.Bankrupt {
			alive = id
			count++
		}
	}
	if count != 1 {
		return false
	}
	e.phase = PhaseFinished
	e.winnerID = alive
	e.turnTimer.Stop()
	e.broadcast(protocol.TypeBoardGameOver, gameOverEvent{WinnerID: alive})
	e.log.Info("board game finished",
		zap.String("room", e.room.Code),
		zap.String("winner", alive))
	return true
}

func tradeViewOf(tr *tradeState) TradeView {
	return TradeView{
		ID:           tr.ID,
		FromID:       tr.FromID,
		ToID:         tr.ToID,
		OfferCash:    tr.OfferCash,
		OfferTiles:   tr.OfferTiles,
		RequestCash:  tr.RequestCash,
		RequestTiles: tr.RequestTiles,
	}
}
