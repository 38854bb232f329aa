package server

import (
	"encoding/json"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/metrics"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

// actionFunc runs one inbound action. The room lock is taken inside.
type actionFunc func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError

// dispatch routes an inbound frame to the room's engine. Errors go back
// to the sender only.
func (s *Server) dispatch(lr *liveRoom, c *client, msg protocol.Message) {
	var table map[string]actionFunc
	if lr.quiz != nil {
		table = s.quizActions()
	} else {
		table = s.boardActions()
	}

	handler, ok := table[msg.Type]
	if !ok {
		c.enqueue(protocol.NewErrorMessage(apperrors.ErrInvalidAction))
		return
	}
	if gerr := handler(lr, c.playerID, msg.Payload); gerr != nil {
		metrics.ActionErrors.WithLabelValues(gerr.Code).Inc()
		c.enqueue(protocol.NewErrorMessage(gerr))
	}
}

func (s *Server) quizActions() map[string]actionFunc {
	return map[string]actionFunc{
		protocol.TypeQuizStartGame: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.QuizStartPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() {
				out = lr.quiz.StartGame(playerID, p.HostMode, p.TargetScore)
			})
			if out == nil {
				metrics.GamesStarted.WithLabelValues(room.GameQuiz).Inc()
			}
			return out
		},
		protocol.TypeQuizNextRound: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.NextRound(playerID) })
			return out
		},
		protocol.TypeQuizBuzzPress: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.BuzzPressPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.BuzzPress(playerID, p.WindowID) })
			return out
		},
		protocol.TypeQuizAnswerSubmit: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.AnswerSubmitPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.AnswerSubmit(playerID, p.Answer) })
			return out
		},
		protocol.TypeQuizReadySignal: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.ReadySignal(playerID) })
			return out
		},
		protocol.TypeQuizDrawingSubmit: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.DrawingSubmitPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.DrawingSubmit(playerID, p.ImageDataURL) })
			return out
		},
		protocol.TypeQuizVoteCast: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.VoteCastPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.VoteCast(playerID, p.TargetPlayerID) })
			return out
		},
		protocol.TypeQuizGiveUpVote: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.GiveUpVote(playerID) })
			return out
		},
		protocol.TypeQuizRepeatVote: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.RepeatVote(playerID) })
			return out
		},
		protocol.TypeQuizHostAction: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.HostActionPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.quiz.HostAction(playerID, p) })
			return out
		},
	}
}

func (s *Server) boardActions() map[string]actionFunc {
	return map[string]actionFunc{
		protocol.TypeBoardStartGame: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.BoardStartPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() {
				out = lr.board.StartGame(playerID, p.Preset, p.TimerEnabled)
			})
			if out == nil {
				metrics.GamesStarted.WithLabelValues(room.GameBoard).Inc()
				s.registry.Mirror(lr.room)
			}
			return out
		},
		protocol.TypeBoardRollRequest: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.RollRequest(playerID) })
			return out
		},
		protocol.TypeBoardBuyCommit: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.BuyCommitPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.BuyCommit(playerID, p.TileID, p.Accept) })
			return out
		},
		protocol.TypeBoardAuctionBid: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.AuctionBidPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.AuctionBid(playerID, p.Amount) })
			return out
		},
		protocol.TypeBoardAuctionClose: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.AuctionClose(playerID) })
			return out
		},
		protocol.TypeBoardEndTurn: func(lr *liveRoom, playerID string, _ json.RawMessage) *apperrors.GameError {
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.EndTurn(playerID) })
			return out
		},
		protocol.TypeBoardMortgageToggle: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.MortgageTogglePayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.MortgageToggle(playerID, p.TileID, p.Mortgaged) })
			return out
		},
		protocol.TypeBoardHouseAction: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.HouseActionPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.HouseAction(playerID, p.TileID, p.Op) })
			return out
		},
		protocol.TypeBoardTradePropose: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.TradeProposePayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.TradePropose(playerID, p) })
			return out
		},
		protocol.TypeBoardTradeDecide: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.TradeDecidePayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.TradeDecide(playerID, p.TradeID, p.Accept) })
			return out
		},
		protocol.TypeBoardTradeCancel: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.TradeCancelPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.TradeCancel(playerID, p.TradeID) })
			return out
		},
		protocol.TypeBoardHostAction: func(lr *liveRoom, playerID string, raw json.RawMessage) *apperrors.GameError {
			p, gerr := protocol.ParsePayload[protocol.HostActionPayload](raw)
			if gerr != nil {
				return gerr
			}
			var out *apperrors.GameError
			lr.room.WithLock(func() { out = lr.board.HostAction(playerID, p) })
			return out
		},
	}
}
