package protocol

// Quiz action payloads.

type QuizStartPayload struct {
	HostMode    string `json:"host_mode" validate:"omitempty,oneof=player moderator ai"`
	TargetScore int    `json:"target_score" validate:"omitempty,min=1,max=100"`
}

type BuzzPressPayload struct {
	WindowID string `json:"window_id" validate:"required"`
}

type AnswerSubmitPayload struct {
	Answer string `json:"answer" validate:"required,max=500"`
}

type DrawingSubmitPayload struct {
	ImageDataURL string `json:"image_data_url" validate:"required,max=2000000"`
}

type VoteCastPayload struct {
	TargetPlayerID string `json:"target_player_id" validate:"required"`
}

// HostActionPayload covers moderation actions shared by both engines.
// Action is one of pause, resume, skip, kick, score_adjust, toggle_timer.
type HostActionPayload struct {
	Action    string `json:"action" validate:"required,oneof=pause resume skip kick score_adjust toggle_timer"`
	PlayerID  string `json:"player_id,omitempty"`
	Delta     int    `json:"delta,omitempty"`
	CashDelta int    `json:"cash_delta,omitempty"`
}

// Board action payloads.

type BoardStartPayload struct {
	Preset       string `json:"preset" validate:"omitempty,oneof=official house"`
	TimerEnabled bool   `json:"timer_enabled"`
}

type BuyCommitPayload struct {
	TileID int  `json:"tile_id" validate:"min=0,max=39"`
	Accept bool `json:"accept"`
}

type AuctionBidPayload struct {
	Amount int `json:"amount" validate:"required,min=1"`
}

// MortgageTogglePayload names the target state rather than "flip", so
// redelivered frames cannot flip a mortgage twice.
type MortgageTogglePayload struct {
	TileID    int  `json:"tile_id" validate:"min=0,max=39"`
	Mortgaged bool `json:"mortgaged"`
}

// HouseActionPayload builds or sells one house step on a tile.
// Op is "buy" or "sell".
type HouseActionPayload struct {
	TileID int    `json:"tile_id" validate:"min=0,max=39"`
	Op     string `json:"op" validate:"required,oneof=buy sell"`
}

// TradeProposePayload offers cash and tiles both ways.
type TradeProposePayload struct {
	ToPlayerID   string `json:"to_player_id" validate:"required"`
	OfferCash    int    `json:"offer_cash" validate:"min=0"`
	OfferTiles   []int  `json:"offer_tiles" validate:"dive,min=0,max=39"`
	RequestCash  int    `json:"request_cash" validate:"min=0"`
	RequestTiles []int  `json:"request_tiles" validate:"dive,min=0,max=39"`
}

type TradeDecidePayload struct {
	TradeID string `json:"trade_id" validate:"required"`
	Accept  bool   `json:"accept"`
}

type TradeCancelPayload struct {
	TradeID string `json:"trade_id" validate:"required"`
}
