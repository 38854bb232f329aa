package room

// Service is the game engine attached to a room. The room calls every
// hook with the room lock held, so hooks may touch room state freely but
// must never call back into locking room methods.
type Service interface {
	// OnPlayerJoined runs after a player is seated.
	OnPlayerJoined(p *Player)
	// OnPlayerDisconnected runs after a connected player drops.
	OnPlayerDisconnected(p *Player)
	// OnPlayerRemoved runs after a player is removed for good (kick or
	// leave). Seats are already renumbered.
	OnPlayerRemoved(p *Player)
	// OnHostTransferred runs after the host seat moves.
	OnHostTransferred(newHostID string)
	// Dispose runs when the room is torn down. Engines stop timers here.
	Dispose()
}

// NopService is embedded by engines that only need some hooks.
type NopService struct{}

func (NopService) OnPlayerJoined(*Player)       {}
func (NopService) OnPlayerDisconnected(*Player) {}
func (NopService) OnPlayerRemoved(*Player)      {}
func (NopService) OnHostTransferred(string)     {}
func (NopService) Dispose()                     {}
