package systems

import (
	"context"
	"time"

	"github.com/43d9ab5/ferrumc/internal/chunkstore"
	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/protocol"
)

// chunkSenderInterval is how often the system re-checks every player's
// position against what it last sent them. Position doesn't change on its
// own timer, so this is a poll rather than an event subscription, matching
// the rest of this runtime's tick-driven shape.
const chunkSenderInterval = 200 * time.Millisecond

// ChunkSenderSystem keeps each player's loaded chunk radius filled in as
// they move, fetching from the chunk store (with retry) and writing
// ChunkData-equivalent packets out to their connection.
type ChunkSenderSystem struct {
	// sent tracks, per entity id, the last chunk coordinate the player was
	// centered on, so a player standing still doesn't get re-sent the same
	// radius every tick.
	sent map[uint64]chunkCoord
}

type chunkCoord struct {
	x, z int32
}

func NewChunkSenderSystem() *ChunkSenderSystem {
	return &ChunkSenderSystem{sent: make(map[uint64]chunkCoord)}
}

func (s *ChunkSenderSystem) Name() string { return "chunk-sender" }

type chunkSenderJob struct {
	entity ecs.Entity
	conn   *netconn.Connection
	dim    string
	center chunkCoord
	radius int32
}

func (s *ChunkSenderSystem) Run(ctx context.Context, deps *Deps) error {
	ticker := time.NewTicker(chunkSenderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			jobs := s.collectJobs(deps.World)
			for _, job := range jobs {
				s.serviceJob(ctx, deps, job)
			}
		}
	}
}

// collectJobs snapshots every player whose chunk center moved since the
// last pass, releasing the world lock before any store I/O or socket
// write happens.
func (s *ChunkSenderSystem) collectJobs(world *ecs.World) []chunkSenderJob {
	var jobs []chunkSenderJob
	for _, r := range ecs.Query3[ecs.Position, ecs.ViewDistance, ecs.ConnectionHandle](world) {
		conn, ok := r.C.Conn.(*netconn.Connection)
		if !ok || conn == nil {
			continue
		}
		center := chunkCoord{x: int32(r.A.X) >> 4, z: int32(r.A.Z) >> 4}
		last, seen := s.sent[r.Entity.ID]
		if seen && last == center {
			continue
		}
		s.sent[r.Entity.ID] = center
		jobs = append(jobs, chunkSenderJob{
			entity: r.Entity,
			conn:   conn,
			dim:    r.A.Dimension,
			center: center,
			radius: r.B.Chunks,
		})
	}
	return jobs
}

// serviceJob fetches the full view-distance square around a job's center
// and writes one chunk packet per loaded chunk. A chunk that never shows up
// after retry is unrecoverable for this player's session: rather than leave
// them with a hole in their loaded world, the connection is disconnected
// with a Protocol-category reason and the rest of the square is abandoned.
func (s *ChunkSenderSystem) serviceJob(ctx context.Context, deps *Deps, job chunkSenderJob) {
	startX, startZ := job.center.x-job.radius, job.center.z-job.radius
	endX, endZ := job.center.x+job.radius+1, job.center.z+job.radius+1

	for x := startX; x < endX; x++ {
		for z := startZ; z < endZ; z++ {
			chunk, err := deps.Store.GetChunkWithRetry(ctx, job.dim, x, z, chunkstore.DefaultRetryPolicy)
			if err != nil {
				deps.Logger.Warn("chunk unavailable after retry, disconnecting player", "conn", job.conn.ID, "dim", job.dim, "x", x, "z", z, "error", err)
				s.disconnectUnavailable(deps, job.conn)
				return
			}
			payload := encodeChunkDataPacket(chunk)
			if err := job.conn.WritePacket(chunkDataPacketID, payload); err != nil {
				deps.Logger.Warn("writing chunk data, dropping connection", "conn", job.conn.ID, "error", err)
				deps.Conns.Remove(job.conn)
				_ = job.conn.Close()
				return
			}
		}
	}
}

// disconnectUnavailable sends a Disconnect packet explaining the chunk
// store failure, then tears the connection down. Best-effort: the write may
// itself fail if the client is already gone, which is fine since the
// connection is being removed either way.
func (s *ChunkSenderSystem) disconnectUnavailable(deps *Deps, conn *netconn.Connection) {
	if payload, err := protocol.EncodeDisconnect("Protocol: chunk unavailable"); err == nil {
		_ = conn.WritePacket(protocol.PacketDisconnectPlay, payload)
	}
	deps.Conns.Remove(conn)
	_ = conn.Close()
}

// chunkDataPacketID is the clientbound Play packet id for a chunk data and
// update light payload under protocol 766.
const chunkDataPacketID int32 = 0x27

// encodeChunkDataPacket serializes a persisted chunk record back out into a
// chunk data packet body. Section and block-entity payloads are already
// encoded opaque blobs in the store, so this just concatenates every section
// blob followed by every block-entity blob; heightmaps, structures and the
// chunk coordinates are not written. The store itself never has to
// understand the blobs.
func encodeChunkDataPacket(c chunkstore.Chunk) []byte {
	var out []byte
	for _, section := range c.Sections {
		out = append(out, section...)
	}
	for _, be := range c.BlockEntities {
		out = append(out, be...)
	}
	return out
}
