package ecs

import "time"

// Player identifies the account behind a Play-state entity.
type Player struct {
	Username string
	UUID     [16]byte
}

// KeepAlive tracks the liveness handshake for a connected player: the last
// id sent to the client and when it was sent. The reaper system compares
// LastSent against now to decide whether a connection has gone silent.
type KeepAlive struct {
	Data     int64
	LastSent time.Time
}

// ConnectionHandle is the component form of a connection reference, letting
// systems reach a player's socket through a world query instead of keeping
// a side table. The concrete type is supplied by the netconn package to
// avoid an import cycle; ecs only needs to carry it around.
type ConnectionHandle struct {
	Conn any
}

// Position is an entity's location within a dimension.
type Position struct {
	Dimension string
	X, Y, Z   float64
}

// Rotation is an entity's facing.
type Rotation struct {
	Yaw, Pitch float32
}

// ViewDistance is how many chunks out, in each direction, a player expects
// the chunk sender to keep loaded.
type ViewDistance struct {
	Chunks int32
}
