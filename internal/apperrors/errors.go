package apperrors

// GameError is a structured error returned to the acting client only.
// It never reaches other room members and never mutates room state.
type GameError struct {
	Code    string
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Predefined errors, shared by the registry and both engines.
var (
	ErrRoomNotFound   = &GameError{Code: "ROOM_NOT_FOUND", Message: "room does not exist"}
	ErrRoomFull       = &GameError{Code: "ROOM_FULL", Message: "room is full"}
	ErrInvalidSession = &GameError{Code: "INVALID_SESSION", Message: "session token is invalid or expired"}
	ErrForbidden      = &GameError{Code: "FORBIDDEN", Message: "host-only action"}
	ErrInvalidPayload = &GameError{Code: "INVALID_PAYLOAD", Message: "payload failed validation"}
	ErrInvalidAction  = &GameError{Code: "INVALID_ACTION", Message: "action is not valid right now"}
	ErrAlreadyStarted = &GameError{Code: "ALREADY_STARTED", Message: "game already started"}
	ErrNotStarted     = &GameError{Code: "NOT_STARTED", Message: "game has not started"}
	ErrColorTaken     = &GameError{Code: "PIECE_COLOR_TAKEN", Message: "piece color is already taken"}
)
