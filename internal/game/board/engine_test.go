package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/content"
	"github.com/ags-games/partyhall/internal/game"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

type fixture struct {
	reg     *room.Registry
	room    *room.Room
	engine  *Engine
	players []*room.Player
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	reg := room.NewRegistry(24*time.Hour, nil, zap.NewNop())
	t.Cleanup(reg.Close)
	r, gerr := reg.Create(room.GameBoard)
	require.Nil(t, gerr)

	e := New(r, config.Default().Game, content.DefaultBoard(), game.NopEmitter{}, zap.NewNop())
	r.AttachService(e)

	f := &fixture{reg: reg, room: r, engine: e}
	names := []string{"host", "sara", "omar", "nour"}
	for i := 0; i < n; i++ {
		p, _, gerr := r.Join(names[i], "")
		require.Nil(t, gerr)
		f.players = append(f.players, p)
	}
	return f
}

func (f *fixture) do(fn func() *apperrors.GameError) *apperrors.GameError {
	var gerr *apperrors.GameError
	f.room.WithLock(func() { gerr = fn() })
	return gerr
}

func (f *fixture) start(t *testing.T, preset string) {
	t.Helper()
	gerr := f.do(func() *apperrors.GameError {
		return f.engine.StartGame(f.players[0].ID, preset, false)
	})
	require.Nil(t, gerr)
}

func (f *fixture) setDice(d1, d2 int) {
	f.engine.rollDice = func() (int, int) { return d1, d2 }
}

func (f *fixture) roll(t *testing.T, playerID string) {
	t.Helper()
	gerr := f.do(func() *apperrors.GameError { return f.engine.RollRequest(playerID) })
	require.Nil(t, gerr)
}

func (f *fixture) seat(id string) *seat { return f.engine.seats[id] }

func TestStartGame(t *testing.T) {
	f := newFixture(t, 2)

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.StartGame(f.players[1].ID, "", false)
	})
	assert.Equal(t, apperrors.ErrForbidden, gerr)

	f.start(t, "")
	assert.Equal(t, PhasePlaying, f.engine.phase)
	assert.Equal(t, PresetOfficial, f.engine.preset)
	assert.Equal(t, PendingRoll, f.engine.pendingAction)
	assert.Equal(t, f.players[0].ID, f.engine.currentPlayerLocked())
	for _, p := range f.players {
		assert.Equal(t, startingCash, f.seat(p.ID).Cash)
		assert.Equal(t, 0, f.seat(p.ID).Position)
	}

	// the table is closed once play begins
	_, _, joinErr := f.room.Join("late", "")
	assert.Equal(t, apperrors.ErrAlreadyStarted, joinErr)
}

func TestRollLandsOnUnownedProperty(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	f.setDice(1, 2) // tile 3, brown property

	f.roll(t, f.players[0].ID)
	assert.Equal(t, 3, f.seat(f.players[0].ID).Position)
	assert.Equal(t, PendingBuyOrAuction, f.engine.pendingAction)
	assert.Equal(t, 3, f.engine.pendingTileID)

	// rolling again before resolving the purchase is a stale frame:
	// no error, no movement
	gerr := f.do(func() *apperrors.GameError { return f.engine.RollRequest(f.players[0].ID) })
	assert.Nil(t, gerr)
	assert.Equal(t, 3, f.seat(f.players[0].ID).Position)
	assert.Equal(t, PendingBuyOrAuction, f.engine.pendingAction)

	// a roll from the wrong player is an authorization error
	gerr = f.do(func() *apperrors.GameError { return f.engine.RollRequest(f.players[1].ID) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
}

func TestEndTurnBeforeRollIsIgnored(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")

	gerr := f.do(func() *apperrors.GameError { return f.engine.EndTurn(f.players[0].ID) })
	assert.Nil(t, gerr)
	assert.Equal(t, f.players[0].ID, f.engine.currentPlayerLocked())
	assert.Equal(t, PendingRoll, f.engine.pendingAction)
	assert.Equal(t, 1, f.engine.turnNumber)
}

func TestBuyCommitAccept(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	f.setDice(1, 2)
	f.roll(t, f.players[0].ID)

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.BuyCommit(f.players[0].ID, 3, true)
	})
	require.Nil(t, gerr)
	assert.Equal(t, startingCash-60, f.seat(f.players[0].ID).Cash)
	assert.Equal(t, f.players[0].ID, f.engine.tileStates[3].OwnerID)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)

	gerr = f.do(func() *apperrors.GameError { return f.engine.EndTurn(f.players[0].ID) })
	require.Nil(t, gerr)
	assert.Equal(t, f.players[1].ID, f.engine.currentPlayerLocked())
	assert.Equal(t, PendingRoll, f.engine.pendingAction)
}

func TestDeclineStartsAuction(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t, "")
	f.setDice(1, 2)
	f.roll(t, f.players[0].ID)

	f.do(func() *apperrors.GameError { return f.engine.BuyCommit(f.players[0].ID, 3, false) })
	require.Equal(t, PendingAuction, f.engine.pendingAction)

	// bids must strictly increase
	gerr := f.do(func() *apperrors.GameError { return f.engine.AuctionBid(f.players[1].ID, 40) })
	require.Nil(t, gerr)
	gerr = f.do(func() *apperrors.GameError { return f.engine.AuctionBid(f.players[2].ID, 40) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	// bids beyond the bidder's cash are rejected
	gerr = f.do(func() *apperrors.GameError { return f.engine.AuctionBid(f.players[2].ID, 2000) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	gerr = f.do(func() *apperrors.GameError { return f.engine.AuctionBid(f.players[2].ID, 55) })
	require.Nil(t, gerr)

	// only the turn holder or host closes
	gerr = f.do(func() *apperrors.GameError { return f.engine.AuctionClose(f.players[1].ID) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	gerr = f.do(func() *apperrors.GameError { return f.engine.AuctionClose(f.players[0].ID) })
	require.Nil(t, gerr)
	assert.Equal(t, f.players[2].ID, f.engine.tileStates[3].OwnerID)
	assert.Equal(t, startingCash-55, f.seat(f.players[2].ID).Cash)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestAuctionNoBidsReturnsToBank(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	f.setDice(1, 2)
	f.roll(t, f.players[0].ID)

	f.do(func() *apperrors.GameError { return f.engine.BuyCommit(f.players[0].ID, 3, false) })
	f.do(func() *apperrors.GameError { return f.engine.AuctionClose(f.players[0].ID) })

	assert.Empty(t, f.engine.tileStates[3].OwnerID)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestRentBaseAndMonopoly(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	owner, visitor := f.players[1].ID, f.players[0].ID
	f.engine.tileStates[3].OwnerID = owner

	f.setDice(1, 2)
	f.roll(t, visitor)
	assert.Equal(t, startingCash-4, f.seat(visitor).Cash)
	assert.Equal(t, startingCash+4, f.seat(owner).Cash)

	// full group doubles the base rent
	f.engine.tileStates[1].OwnerID = owner
	f.room.WithLock(func() {
		assert.Equal(t, 8, f.engine.rentLocked(3))
	})
}

func TestRentWithHousesAndHotel(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	owner := f.players[1].ID
	f.engine.tileStates[1].OwnerID = owner
	f.engine.tileStates[3].OwnerID = owner
	f.engine.tileStates[3].Houses = 2

	f.room.WithLock(func() {
		assert.Equal(t, 60, f.engine.rentLocked(3)) // two houses
		f.engine.tileStates[3].Houses = 0
		f.engine.tileStates[3].Hotel = true
		assert.Equal(t, 450, f.engine.rentLocked(3))
	})
}

func TestRailroadRentCountsUnmortgagedOnly(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	owner := f.players[1].ID
	for _, id := range []int{5, 15, 25} {
		f.engine.tileStates[id].OwnerID = owner
	}

	f.room.WithLock(func() {
		assert.Equal(t, 100, f.engine.rentLocked(5)) // three stations
		f.engine.tileStates[25].Mortgaged = true
		assert.Equal(t, 50, f.engine.rentLocked(5)) // two counted
	})
}

func TestUtilityRentUsesLastDice(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	owner, visitor := f.players[1].ID, f.players[0].ID
	f.engine.tileStates[12].OwnerID = owner

	f.setDice(5, 7) // lands on 12
	f.roll(t, visitor)
	assert.Equal(t, startingCash-4*12, f.seat(visitor).Cash)

	f.room.WithLock(func() {
		f.engine.tileStates[28].OwnerID = owner
		assert.Equal(t, 10*12, f.engine.rentLocked(12))
	})
}

func TestMortgagedTileChargesNoRent(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	owner, visitor := f.players[1].ID, f.players[0].ID
	f.engine.tileStates[3].OwnerID = owner
	f.engine.tileStates[3].Mortgaged = true

	f.setDice(1, 2)
	f.roll(t, visitor)
	assert.Equal(t, startingCash, f.seat(visitor).Cash)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestGoSalaryOnWrap(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	s := f.seat(f.players[0].ID)
	s.Position = 38 // luxury tax at 38; start past it

	f.setDice(1, 3) // 38 -> 2 (community chest), wrapping GO
	f.room.WithLock(func() { f.engine.moveLocked(f.players[0].ID, 4) })
	assert.Equal(t, 2, s.Position)
	assert.GreaterOrEqual(t, s.Cash, startingCash+goSalary-100) // salary minus worst chest card
}

func TestStartGamePresetNames(t *testing.T) {
	f := newFixture(t, 2)

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.StartGame(f.players[0].ID, "monopoly", false)
	})
	assert.Equal(t, apperrors.ErrInvalidPayload, gerr)

	f.start(t, PresetOfficial)
	assert.Equal(t, PresetOfficial, f.engine.preset)
}

func TestTaxOfficialVsHousePreset(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	f.setDice(1, 3) // tile 4, income tax 200
	f.roll(t, f.players[0].ID)
	assert.Equal(t, startingCash-200, f.seat(f.players[0].ID).Cash)
	assert.Equal(t, 0, f.engine.freeParkingPot)

	g := newFixture(t, 2)
	g.start(t, PresetHouse)
	g.setDice(1, 3)
	g.roll(t, g.players[0].ID)
	assert.Equal(t, 200, g.engine.freeParkingPot)
}

func TestFreeParkingJackpot(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, PresetHouse)
	f.engine.freeParkingPot = 300
	s := f.seat(f.players[0].ID)
	s.Position = 15

	f.setDice(2, 3) // 15 -> 20, free parking
	f.roll(t, f.players[0].ID)
	assert.Equal(t, startingCash+300, s.Cash)
	assert.Equal(t, 0, f.engine.freeParkingPot)

	// official preset never pays out
	g := newFixture(t, 2)
	g.start(t, "")
	g.engine.freeParkingPot = 300
	g.seat(g.players[0].ID).Position = 15
	g.setDice(2, 3)
	g.roll(t, g.players[0].ID)
	assert.Equal(t, startingCash, g.seat(g.players[0].ID).Cash)
}

func TestGoToJailTile(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	s := f.seat(f.players[0].ID)
	s.Position = 27

	f.setDice(1, 2) // 27 -> 30
	f.roll(t, f.players[0].ID)
	assert.True(t, s.InJail)
	assert.Equal(t, jailPosition, s.Position)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestThreeDoublesJails(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.setDice(2, 2)

	f.roll(t, id) // lands on 4, tax paid
	f.do(func() *apperrors.GameError { return f.engine.EndTurn(id) })
	assert.Equal(t, id, f.engine.currentPlayerLocked()) // doubles grant the extra turn

	f.roll(t, id) // lands on tile 8, a property
	if f.engine.pendingAction == PendingBuyOrAuction {
		f.do(func() *apperrors.GameError { return f.engine.BuyCommit(id, f.engine.pendingTileID, true) })
	}
	f.do(func() *apperrors.GameError { return f.engine.EndTurn(id) })
	assert.Equal(t, id, f.engine.currentPlayerLocked())

	f.roll(t, id) // third consecutive double
	assert.True(t, f.seat(id).InJail)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)

	// the jailing also forfeits the doubles extra turn
	f.do(func() *apperrors.GameError { return f.engine.EndTurn(id) })
	assert.Equal(t, f.players[1].ID, f.engine.currentPlayerLocked())
}

func TestJailRollDoubleFrees(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	s := f.seat(id)
	s.InJail = true
	s.Position = jailPosition

	f.setDice(3, 3)
	f.roll(t, id)
	assert.False(t, s.InJail)
	assert.Equal(t, 16, s.Position)

	// freedom roll does not earn an extra turn
	if f.engine.pendingAction == PendingBuyOrAuction {
		f.do(func() *apperrors.GameError { return f.engine.BuyCommit(id, f.engine.pendingTileID, false) })
		f.do(func() *apperrors.GameError { return f.engine.AuctionClose(id) })
	}
	f.do(func() *apperrors.GameError { return f.engine.EndTurn(id) })
	assert.Equal(t, f.players[1].ID, f.engine.currentPlayerLocked())
}

func TestJailThirdFailurePaysFineWithoutMoving(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	other := f.players[1].ID
	s := f.seat(id)
	s.InJail = true
	s.Position = jailPosition

	f.setDice(1, 2)
	for attempt := 1; attempt <= 2; attempt++ {
		f.roll(t, id)
		assert.True(t, s.InJail)
		assert.Equal(t, attempt, s.JailTurns)
		assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
		f.do(func() *apperrors.GameError { return f.engine.EndTurn(id) })
		f.roll(t, other)
		if f.engine.pendingAction == PendingBuyOrAuction {
			f.do(func() *apperrors.GameError {
				return f.engine.BuyCommit(other, f.engine.pendingTileID, true)
			})
		}
		f.do(func() *apperrors.GameError { return f.engine.EndTurn(other) })
	}

	f.roll(t, id)
	assert.False(t, s.InJail)
	assert.Equal(t, jailPosition, s.Position) // released without moving
	assert.Equal(t, startingCash-jailFine, s.Cash)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestCardMoveToGoPaysSalary(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	s := f.seat(id)
	s.Position = 7

	f.room.WithLock(func() {
		f.engine.drawCardLocked(id, []card{{Text: "go", MoveTo: 0}})
	})
	assert.Equal(t, 0, s.Position)
	assert.Equal(t, startingCash+goSalary, s.Cash)
	assert.Equal(t, PendingEndTurn, f.engine.pendingAction)
}

func TestCardGainAndPay(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, PresetHouse)
	id := f.players[0].ID
	s := f.seat(id)

	f.room.WithLock(func() {
		f.engine.drawCardLocked(id, []card{{Text: "gain", Amount: 100, MoveTo: -1}})
	})
	assert.Equal(t, startingCash+100, s.Cash)

	// card payments feed the pot under the house preset
	f.room.WithLock(func() {
		f.engine.drawCardLocked(id, []card{{Text: "pay", Amount: -50, MoveTo: -1}})
	})
	assert.Equal(t, startingCash+50, s.Cash)
	assert.Equal(t, 50, f.engine.freeParkingPot)
}

func TestMortgageCycle(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[5].OwnerID = id // station, mortgage value 100

	gerr := f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(id, 5, true) })
	require.Nil(t, gerr)
	assert.True(t, f.engine.tileStates[5].Mortgaged)
	assert.Equal(t, startingCash+100, f.seat(id).Cash)

	gerr = f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(id, 5, false) })
	require.Nil(t, gerr)
	assert.False(t, f.engine.tileStates[5].Mortgaged)
	assert.Equal(t, startingCash+100-110, f.seat(id).Cash) // ten percent interest

	// not the owner
	gerr = f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(f.players[1].ID, 5, true) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
}

func TestMortgageDuplicateFrameIsNoOp(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[5].OwnerID = id

	f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(id, 5, true) })
	require.Equal(t, startingCash+100, f.seat(id).Cash)

	// a redelivered frame must not pay out or flip back
	gerr := f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(id, 5, true) })
	assert.Nil(t, gerr)
	assert.True(t, f.engine.tileStates[5].Mortgaged)
	assert.Equal(t, startingCash+100, f.seat(id).Cash)
}

func TestMortgageBlockedByHouses(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[1].OwnerID = id
	f.engine.tileStates[1].Houses = 1

	gerr := f.do(func() *apperrors.GameError { return f.engine.MortgageToggle(id, 1, true) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
}

func TestHouseBuildingEvenRule(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[1].OwnerID = id
	f.engine.tileStates[3].OwnerID = id

	gerr := f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "buy") })
	require.Nil(t, gerr)
	assert.Equal(t, 1, f.engine.tileStates[1].Houses)

	// second house on the same tile violates even build
	gerr = f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "buy") })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	gerr = f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 3, "buy") })
	require.Nil(t, gerr)

	// selling must come off the most developed tile
	f.engine.tileStates[3].Houses = 2
	gerr = f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "sell") })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
	gerr = f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 3, "sell") })
	require.Nil(t, gerr)
	assert.Equal(t, 1, f.engine.tileStates[3].Houses)
}

func TestHouseWithoutMonopolyRejected(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[1].OwnerID = id

	gerr := f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "buy") })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
}

func TestFourHousesBecomeHotel(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	id := f.players[0].ID
	f.engine.tileStates[1].OwnerID = id
	f.engine.tileStates[3].OwnerID = id
	f.engine.tileStates[1].Houses = 4
	f.engine.tileStates[3].Houses = 4

	gerr := f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "buy") })
	require.Nil(t, gerr)
	assert.True(t, f.engine.tileStates[1].Hotel)
	assert.Equal(t, 0, f.engine.tileStates[1].Houses)

	// selling the hotel goes back to four houses plus half the price
	cash := f.seat(id).Cash
	gerr = f.do(func() *apperrors.GameError { return f.engine.HouseAction(id, 1, "sell") })
	require.Nil(t, gerr)
	assert.False(t, f.engine.tileStates[1].Hotel)
	assert.Equal(t, 4, f.engine.tileStates[1].Houses)
	assert.Equal(t, cash+25, f.seat(id).Cash)
}

func TestTradeLifecycle(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	a, b := f.players[0].ID, f.players[1].ID
	f.engine.tileStates[1].OwnerID = a
	f.engine.tileStates[5].OwnerID = b

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.TradePropose(a, &protocol.TradeProposePayload{
			ToPlayerID: b, OfferCash: 100, OfferTiles: []int{1}, RequestTiles: []int{5},
		})
	})
	require.Nil(t, gerr)
	require.Len(t, f.engine.trades, 1)
	var tradeID string
	for id := range f.engine.trades {
		tradeID = id
	}

	// only the recipient decides
	gerr = f.do(func() *apperrors.GameError { return f.engine.TradeDecide(a, tradeID, true) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	gerr = f.do(func() *apperrors.GameError { return f.engine.TradeDecide(b, tradeID, true) })
	require.Nil(t, gerr)
	assert.Equal(t, b, f.engine.tileStates[1].OwnerID)
	assert.Equal(t, a, f.engine.tileStates[5].OwnerID)
	assert.Equal(t, startingCash-100, f.seat(a).Cash)
	assert.Equal(t, startingCash+100, f.seat(b).Cash)
	assert.Empty(t, f.engine.trades)
}

func TestTradeRejectedWhenAssetsMoved(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t, "")
	a, b := f.players[0].ID, f.players[1].ID
	f.engine.tileStates[1].OwnerID = a

	f.do(func() *apperrors.GameError {
		return f.engine.TradePropose(a, &protocol.TradeProposePayload{
			ToPlayerID: b, OfferTiles: []int{1}, RequestCash: 50,
		})
	})
	var tradeID string
	for id := range f.engine.trades {
		tradeID = id
	}

	// the offered tile changes hands before acceptance
	f.engine.tileStates[1].OwnerID = f.players[2].ID

	gerr := f.do(func() *apperrors.GameError { return f.engine.TradeDecide(b, tradeID, true) })
	require.Nil(t, gerr)
	assert.Equal(t, f.players[2].ID, f.engine.tileStates[1].OwnerID)
	assert.Equal(t, startingCash, f.seat(a).Cash) // nothing moved
	assert.Empty(t, f.engine.trades)
}

func TestTradeCancel(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	a, b := f.players[0].ID, f.players[1].ID

	f.do(func() *apperrors.GameError {
		return f.engine.TradePropose(a, &protocol.TradeProposePayload{ToPlayerID: b, OfferCash: 10})
	})
	var tradeID string
	for id := range f.engine.trades {
		tradeID = id
	}

	gerr := f.do(func() *apperrors.GameError { return f.engine.TradeCancel(b, tradeID) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)
	gerr = f.do(func() *apperrors.GameError { return f.engine.TradeCancel(a, tradeID) })
	require.Nil(t, gerr)
	assert.Empty(t, f.engine.trades)
}

func TestBankruptcyTransfersAssetsToCreditor(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")
	debtor, creditor := f.players[0].ID, f.players[1].ID
	f.seat(debtor).Cash = 30
	f.engine.tileStates[5].OwnerID = debtor
	f.engine.tileStates[3].OwnerID = creditor
	f.engine.tileStates[1].OwnerID = creditor // monopoly, rent 8

	f.room.WithLock(func() { f.engine.payLocked(debtor, 100, creditor, payReasonRent) })

	assert.True(t, f.seat(debtor).Bankrupt)
	assert.Equal(t, 0, f.seat(debtor).Cash)
	assert.Equal(t, startingCash+30, f.seat(creditor).Cash) // partial payment
	assert.Equal(t, creditor, f.engine.tileStates[5].OwnerID)

	// last solvent player wins
	assert.Equal(t, PhaseFinished, f.engine.phase)
	assert.Equal(t, creditor, f.engine.winnerID)
}

func TestBankruptcyToBankClearsAssets(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t, "")
	debtor := f.players[0].ID
	f.seat(debtor).Cash = 10
	f.engine.tileStates[5].OwnerID = debtor
	f.engine.tileStates[5].Mortgaged = true

	f.room.WithLock(func() { f.engine.payLocked(debtor, 200, "", payReasonTax) })

	assert.True(t, f.seat(debtor).Bankrupt)
	st := f.engine.tileStates[5]
	assert.Empty(t, st.OwnerID)
	assert.False(t, st.Mortgaged)

	// three players, so the game continues and the turn moved on
	assert.Equal(t, PhasePlaying, f.engine.phase)
	assert.Equal(t, f.players[1].ID, f.engine.currentPlayerLocked())
}

func TestHostSkipRedirect(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t, "")

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{
			Action: "skip", PlayerID: f.players[2].ID,
		})
	})
	require.Nil(t, gerr)
	assert.Equal(t, f.players[2].ID, f.engine.currentPlayerLocked())
	assert.Equal(t, PendingRoll, f.engine.pendingAction)
}

func TestHostCashAdjustAndToggleTimer(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")

	f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{
			Action: "score_adjust", PlayerID: f.players[1].ID, CashDelta: -2000,
		})
	})
	assert.Equal(t, 0, f.seat(f.players[1].ID).Cash) // floored at zero

	assert.False(t, f.engine.timerEnabled)
	f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{Action: "toggle_timer"})
	})
	assert.True(t, f.engine.timerEnabled)
	assert.False(t, f.engine.deadline.IsZero())
}

func TestHostKickRetiresSeat(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t, "")
	target := f.players[1].ID
	f.engine.tileStates[5].OwnerID = target

	gerr := f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{
			Action: "kick", PlayerID: target,
		})
	})
	require.Nil(t, gerr)

	assert.True(t, f.seat(target).Bankrupt)
	assert.Empty(t, f.engine.tileStates[5].OwnerID)
	_, players := f.room.Snapshot()
	assert.Len(t, players, 2)
}

func TestPauseBlocksRoll(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t, "")

	f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{Action: "pause"})
	})
	gerr := f.do(func() *apperrors.GameError { return f.engine.RollRequest(f.players[0].ID) })
	assert.Equal(t, apperrors.ErrInvalidAction, gerr)

	f.do(func() *apperrors.GameError {
		return f.engine.HostAction(f.players[0].ID, &protocol.HostActionPayload{Action: "resume"})
	})
	f.setDice(1, 2)
	gerr = f.do(func() *apperrors.GameError { return f.engine.RollRequest(f.players[0].ID) })
	assert.Nil(t, gerr)
}
