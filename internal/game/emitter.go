// Package game holds pieces shared by the engines.
package game

import "github.com/ags-games/partyhall/internal/protocol"

// Emitter delivers frames to a room's clients. Implementations must not
// block: engines call these with the room lock held.
type Emitter interface {
	Broadcast(msg protocol.Message)
	Send(playerID string, msg protocol.Message)
}

// NopEmitter discards everything, for tests.
type NopEmitter struct{}

func (NopEmitter) Broadcast(protocol.Message)    {}
func (NopEmitter) Send(string, protocol.Message) {}
