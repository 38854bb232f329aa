package board

import "github.com/ags-games/partyhall/internal/room"

// Game phases.
const (
	PhaseLobby    = "lobby"
	PhasePlaying  = "playing"
	PhaseFinished = "finished"
)

// Pending actions the turn holder must resolve, in order.
const (
	PendingRoll         = "roll"
	PendingBuyOrAuction = "buy_or_auction"
	PendingAuction      = "auction"
	PendingEndTurn      = "end_turn"
)

// Rule presets.
const (
	PresetOfficial = "official"
	PresetHouse    = "house" // taxes and card payments feed the free parking pot
)

const (
	startingCash     = 1500
	goSalary         = 200
	jailFine         = 50
	jailPosition     = 10
	maxJailTurns     = 3
	defaultDiceSum   = 7 // utility rent before any roll happened
	mortgageInterest = 1.1
)

// seat is the engine-side state of one player.
type seat struct {
	Cash           int
	Position       int
	InJail         bool
	JailTurns      int
	Bankrupt       bool
	RunningDoubles int
}

// tileState is ownership and development of one purchasable tile.
type tileState struct {
	OwnerID   string
	Houses    int
	Hotel     bool
	Mortgaged bool
}

// level folds the hotel into the even-build scale.
func (t *tileState) level() int {
	if t.Hotel {
		return 5
	}
	return t.Houses
}

type auctionState struct {
	TileID       int
	HighBid      int
	HighBidderID string
}

type tradeState struct {
	ID           string
	FromID       string
	ToID         string
	OfferCash    int
	OfferTiles   []int
	RequestCash  int
	RequestTiles []int
}

// Payment reasons, used to route money under the house preset.
const (
	payReasonRent     = "RENT"
	payReasonTax      = "TAX"
	payReasonCard     = "CARD_PAYMENT"
	payReasonJailFine = "JAIL_FINE"
	payReasonAuction  = "AUCTION"
	payReasonMortgage = "MORTGAGE"
	payReasonHouse    = "HOUSE"
	payReasonTrade    = "TRADE"
)

// Views.

type SeatView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Connected bool   `json:"connected"`
	Cash      int    `json:"cash"`
	Position  int    `json:"position"`
	InJail    bool   `json:"in_jail"`
	JailTurns int    `json:"jail_turns"`
	Bankrupt  bool   `json:"bankrupt"`
}

type TileStateView struct {
	TileID    int    `json:"tile_id"`
	OwnerID   string `json:"owner_id"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

type AuctionView struct {
	TileID       int    `json:"tile_id"`
	HighBid      int    `json:"high_bid"`
	HighBidderID string `json:"high_bidder_id,omitempty"`
}

type TradeView struct {
	ID           string `json:"id"`
	FromID       string `json:"from_id"`
	ToID         string `json:"to_id"`
	OfferCash    int    `json:"offer_cash"`
	OfferTiles   []int  `json:"offer_tiles,omitempty"`
	RequestCash  int    `json:"request_cash"`
	RequestTiles []int  `json:"request_tiles,omitempty"`
}

// StateView is the full snapshot sent on room:state_sync.
type StateView struct {
	Phase           string          `json:"phase"`
	Preset          string          `json:"preset"`
	Paused          bool            `json:"paused"`
	HostID          string          `json:"host_id"`
	Players         []SeatView      `json:"players"`
	TileStates      []TileStateView `json:"tile_states,omitempty"`
	CurrentPlayerID string          `json:"current_player_id,omitempty"`
	PendingAction   string          `json:"pending_action,omitempty"`
	PendingTileID   int             `json:"pending_tile_id"`
	LastDice        [2]int          `json:"last_dice"`
	TurnNumber      int             `json:"turn_number"`
	FreeParkingPot  int             `json:"free_parking_pot"`
	Auction         *AuctionView    `json:"auction,omitempty"`
	Trades          []TradeView     `json:"trades,omitempty"`
	TimerEnabled    bool            `json:"timer_enabled"`
	DeadlineUnixMs  int64           `json:"deadline_unix_ms,omitempty"`
	WinnerID        string          `json:"winner_id,omitempty"`
}

// Event payloads.

type diceRolledEvent struct {
	PlayerID string `json:"player_id"`
	Dice     [2]int `json:"dice"`
	Double   bool   `json:"double"`
}

type movedEvent struct {
	PlayerID string `json:"player_id"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	PassedGo bool   `json:"passed_go"`
}

type tileActionEvent struct {
	PlayerID string `json:"player_id"`
	TileID   int    `json:"tile_id"`
	Action   string `json:"action"` // buy_or_auction, rent_paid, tax_paid, card, jackpot, go_to_jail, jail_fine
	Amount   int    `json:"amount,omitempty"`
	ToID     string `json:"to_id,omitempty"`
	CardText string `json:"card_text,omitempty"`
}

type auctionUpdateEvent struct {
	TileID       int    `json:"tile_id"`
	HighBid      int    `json:"high_bid"`
	HighBidderID string `json:"high_bidder_id,omitempty"`
}

type auctionClosedEvent struct {
	TileID   int    `json:"tile_id"`
	WinnerID string `json:"winner_id,omitempty"`
	FinalBid int    `json:"final_bid"`
}

type tradeUpdateEvent struct {
	Trade  TradeView `json:"trade"`
	Status string    `json:"status"` // proposed, accepted, rejected, canceled
}

type turnChangedEvent struct {
	CurrentPlayerID string `json:"current_player_id"`
	TurnNumber      int    `json:"turn_number"`
	ExtraTurn       bool   `json:"extra_turn,omitempty"`
}

type playerBankruptEvent struct {
	PlayerID   string `json:"player_id"`
	CreditorID string `json:"creditor_id,omitempty"`
}

type gameOverEvent struct {
	WinnerID string `json:"winner_id"`
}

type hostTransferredEvent struct {
	NewHostID string `json:"new_host_id"`
}

// card is one chance or community chest entry.
type card struct {
	Text   string
	Amount int // positive = gain, negative = pay
	MoveTo int // -1 when not a movement card
	Jail   bool
}

func chanceCards() []card {
	return []card{
		{Text: "ربحت جائزة مسابقة الرسم، استلم 100", Amount: 100, MoveTo: -1},
		{Text: "غرامة سرعة، ادفع 50", Amount: -50, MoveTo: -1},
		{Text: "تقدم إلى خانة الانطلاق", MoveTo: 0},
		{Text: "اذهب إلى السجن مباشرة", MoveTo: -1, Jail: true},
	}
}

func chestCards() []card {
	return []card{
		{Text: "استرداد ضريبي، استلم 50", Amount: 50, MoveTo: -1},
		{Text: "فاتورة علاج، ادفع 30", Amount: -30, MoveTo: -1},
		{Text: "ورثت مبلغاً، استلم 150", Amount: 150, MoveTo: -1},
		{Text: "رسوم مدرسية، ادفع 100", Amount: -100, MoveTo: -1},
	}
}

func seatViewOf(p *room.Player, s *seat) SeatView {
	return SeatView{
		ID:        p.ID,
		Name:      p.Name,
		Color:     p.Color,
		Connected: p.Connected,
		Cash:      s.Cash,
		Position:  s.Position,
		InJail:    s.InJail,
		JailTurns: s.JailTurns,
		Bankrupt:  s.Bankrupt,
	}
}
