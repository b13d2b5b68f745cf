// Package server wires together the protocol registry, the ECS world, the
// chunk store, and the systems runtime into one running process.
package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/43d9ab5/ferrumc/internal/config"
	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/protocol"
	"github.com/43d9ab5/ferrumc/internal/registry"
)

// handlerEnv is the state every registered packet handler closes over. It
// is intentionally smaller than systems.Deps: handlers don't need the
// chunk store or the systems runtime, only the world and connection table.
type handlerEnv struct {
	world  *ecs.World
	conns  *netconn.Table
	cfg    *config.Config
	logger *slog.Logger

	// favicon memoizes cfg.Server.Favicon behind a single read: the config
	// already holds the pre-encoded string, but every Status Request in a
	// busy server hits this, so it's read once rather than re-fetched from
	// cfg on every ping.
	favicon func() string
}

// newHandlerEnv wires up handlerEnv, including the once-memoized favicon
// accessor.
func newHandlerEnv(world *ecs.World, conns *netconn.Table, cfg *config.Config, logger *slog.Logger) *handlerEnv {
	return &handlerEnv{
		world:  world,
		conns:  conns,
		cfg:    cfg,
		logger: logger,
		favicon: sync.OnceValue(func() string {
			return cfg.Server.Favicon
		}),
	}
}

// registerHandlers populates reg with this server's full set of packet
// handlers across the Handshake, Status, Login, and Play states.
func registerHandlers(reg *registry.Registry, env *handlerEnv) {
	reg.Register(protocol.StateHandshake, protocol.Serverbound, protocol.PacketHandshake, env.handleHandshake)
	reg.Register(protocol.StateStatus, protocol.Serverbound, protocol.PacketStatusRequest, env.handleStatusRequest)
	reg.Register(protocol.StateStatus, protocol.Serverbound, protocol.PacketPingRequest, env.handlePingRequest)
	reg.Register(protocol.StateLogin, protocol.Serverbound, protocol.PacketLoginStart, env.handleLoginStart)
	reg.Register(protocol.StatePlay, protocol.Serverbound, protocol.PacketKeepAliveIn, env.handleKeepAliveResponse)
}

func asConnection(ctx any) (*netconn.Connection, error) {
	c, ok := ctx.(*netconn.Connection)
	if !ok {
		return nil, fmt.Errorf("handler: unexpected context type %T", ctx)
	}
	return c, nil
}

// handleHandshake decodes the client's intent and transitions the
// connection to Status or Login accordingly.
func (env *handlerEnv) handleHandshake(ctx any, payload []byte) error {
	c, err := asConnection(ctx)
	if err != nil {
		return err
	}
	h, err := protocol.DecodeHandshake(payload)
	if err != nil {
		return err
	}
	c.SetProtocolVersion(h.ProtocolVersion)

	switch h.NextState {
	case protocol.NextStateStatus:
		c.SetState(protocol.StateStatus)
	case protocol.NextStateLogin:
		c.SetState(protocol.StateLogin)
	default:
		return fmt.Errorf("handshake: unrecognized next_state %d", h.NextState)
	}
	return nil
}

func (env *handlerEnv) handleStatusRequest(ctx any, _ []byte) error {
	c, err := asConnection(ctx)
	if err != nil {
		return err
	}
	resp := protocol.StatusResponse{
		Version: protocol.StatusVersion{
			Name:     "1.20.6",
			Protocol: c.ProtocolVersion(),
		},
		Players: protocol.StatusPlayers{
			Max:    int(env.cfg.Server.MaxPlayers),
			Online: env.conns.Len(),
			Sample: []protocol.StatusPlayerSample{},
		},
		Description: protocol.StatusDescription{Text: env.cfg.Server.MOTD},
		Favicon:     env.favicon(),
	}
	payload, err := protocol.EncodeStatusResponse(resp)
	if err != nil {
		return err
	}
	return c.WritePacket(protocol.PacketStatusResponse, payload)
}

func (env *handlerEnv) handlePingRequest(ctx any, payload []byte) error {
	c, err := asConnection(ctx)
	if err != nil {
		return err
	}
	// Ping Request/Pong Response carry an opaque long the client expects
	// echoed back verbatim.
	return c.WritePacket(protocol.PacketPongResponse, payload)
}

// handleLoginStart creates the player's entity, optionally enables frame
// compression, and transitions the connection to Play.
func (env *handlerEnv) handleLoginStart(ctx any, payload []byte) error {
	c, err := asConnection(ctx)
	if err != nil {
		return err
	}
	login, err := protocol.DecodeLoginStart(payload)
	if err != nil {
		return err
	}

	threshold := env.cfg.Systems.CompressionThreshold
	if threshold > 0 {
		setCompression, err := protocol.EncodeSetCompression(threshold)
		if err != nil {
			return err
		}
		if err := c.WritePacket(protocol.PacketSetCompression, setCompression); err != nil {
			return err
		}
		c.EnableCompression(threshold)
	}

	success, err := protocol.EncodeLoginSuccess(protocol.LoginSuccess{UUID: login.UUID, Username: login.Username})
	if err != nil {
		return err
	}
	if err := c.WritePacket(protocol.PacketLoginSuccess, success); err != nil {
		return err
	}

	e := env.world.Spawn()
	c.SetEntity(e)
	if err := ecs.SetComponent(env.world, e, ecs.Player{Username: login.Username, UUID: login.UUID}); err != nil {
		return err
	}
	if err := ecs.SetComponent(env.world, e, ecs.KeepAlive{LastSent: time.Now()}); err != nil {
		return err
	}
	if err := ecs.SetComponent(env.world, e, ecs.ConnectionHandle{Conn: c}); err != nil {
		return err
	}
	if err := ecs.SetComponent(env.world, e, ecs.Position{Dimension: env.cfg.World.Name}); err != nil {
		return err
	}
	if err := ecs.SetComponent(env.world, e, ecs.Rotation{}); err != nil {
		return err
	}
	if err := ecs.SetComponent(env.world, e, ecs.ViewDistance{Chunks: env.cfg.World.ViewDistance}); err != nil {
		return err
	}

	c.SetState(protocol.StatePlay)
	env.logger.Info("player joined", "username", login.Username, "conn", c.ID)
	return nil
}

// handleKeepAliveResponse validates the client's echoed keep-alive id
// against what the sender system last handed out.
func (env *handlerEnv) handleKeepAliveResponse(ctx any, payload []byte) error {
	c, err := asConnection(ctx)
	if err != nil {
		return err
	}
	id, err := protocol.DecodeKeepAlive(payload)
	if err != nil {
		return err
	}
	ka, ok := ecs.GetComponent[ecs.KeepAlive](env.world, c.Entity)
	if !ok {
		return nil
	}
	if id != ka.Data {
		return netconn.ErrKeepAliveStale
	}
	return nil
}
