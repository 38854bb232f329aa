package protocol

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/ags-games/partyhall/internal/apperrors"
)

// Message is the wire envelope for every WebSocket frame, both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server action types.
const (
	// quiz actions
	TypeQuizStartGame     = "quiz:start_game"
	TypeQuizNextRound     = "quiz:next_round"
	TypeQuizBuzzPress     = "quiz:buzz_press"
	TypeQuizAnswerSubmit  = "quiz:answer_submit"
	TypeQuizReadySignal   = "quiz:ready_signal"
	TypeQuizDrawingSubmit = "quiz:drawing_submit"
	TypeQuizVoteCast      = "quiz:vote_cast"
	TypeQuizGiveUpVote    = "quiz:give_up_vote"
	TypeQuizRepeatVote    = "quiz:repeat_vote"
	TypeQuizHostAction    = "quiz:host_action"

	// board actions
	TypeBoardStartGame      = "board:start_game"
	TypeBoardRollRequest    = "board:roll_request"
	TypeBoardBuyCommit      = "board:buy_commit"
	TypeBoardAuctionBid     = "board:auction_bid"
	TypeBoardAuctionClose   = "board:auction_close"
	TypeBoardEndTurn        = "board:end_turn"
	TypeBoardMortgageToggle = "board:mortgage_toggle"
	TypeBoardHouseAction    = "board:house_action"
	TypeBoardTradePropose   = "board:trade_propose"
	TypeBoardTradeDecide    = "board:trade_decide"
	TypeBoardTradeCancel    = "board:trade_cancel"
	TypeBoardHostAction     = "board:host_action"
)

// Server -> client event types.
const (
	TypeRoomStateSync       = "room:state_sync"
	TypeRoomHostTransferred = "room:host_transferred"
	TypeRoomError           = "room:error"

	TypeQuizBuzzWindow    = "quiz:buzz_window"
	TypeQuizBuzzLocked    = "quiz:buzz_locked"
	TypeQuizAnswerResult  = "quiz:answer_result"
	TypeQuizAnswerReveal  = "quiz:answer_reveal"
	TypeQuizRoundEnd      = "quiz:round_end"
	TypeQuizGameOver      = "quiz:game_over"
	TypeQuizDrawingPhase  = "quiz:drawing_phase"
	TypeQuizVotingPhase   = "quiz:voting_phase"
	TypeQuizVoteRecorded  = "quiz:vote_recorded"
	TypeQuizVotingResult  = "quiz:voting_result"
	TypeQuizGiveUpUpdate  = "quiz:give_up_update"
	TypeQuizRepeatUpdate  = "quiz:repeat_update"

	TypeBoardDiceRolled     = "board:dice_rolled"
	TypeBoardMoved          = "board:moved"
	TypeBoardTileAction     = "board:tile_action"
	TypeBoardAuctionUpdate  = "board:auction_update"
	TypeBoardAuctionClosed  = "board:auction_closed"
	TypeBoardTradeUpdate    = "board:trade_update"
	TypeBoardTurnChanged    = "board:turn_changed"
	TypeBoardPlayerBankrupt = "board:player_bankrupt"
	TypeBoardGameOver       = "board:game_over"
)

var validate = validator.New()

// NewMessage marshals a payload into an envelope. Marshal failures are a
// programming error and panic.
func NewMessage(msgType string, payload any) Message {
	if payload == nil {
		return Message{Type: msgType}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Message{Type: msgType, Payload: raw}
}

// ErrorPayload is the body of a room:error frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage wraps a GameError for the acting client.
func NewErrorMessage(err *apperrors.GameError) Message {
	return NewMessage(TypeRoomError, ErrorPayload{Code: err.Code, Message: err.Message})
}

// ParsePayload unmarshals and validates an action payload. Both failure
// modes map to INVALID_PAYLOAD.
func ParsePayload[T any](raw json.RawMessage) (*T, *apperrors.GameError) {
	var out T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, apperrors.ErrInvalidPayload
		}
	}
	if err := validate.Struct(&out); err != nil {
		return nil, apperrors.ErrInvalidPayload
	}
	return &out, nil
}
