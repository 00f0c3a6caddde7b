package dispatcher

import (
	"encoding/json"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/StoreStation/voxelengine/internal/transport"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/wire"
)

// handleInbound dispatches one decoded client packet. This is the
// chunk-requests phase's packet half: PEER updates a client's known
// position (and, on a chunk-border crossing, re-centers its router and
// extends its pending queue by PreloadRadius); METHOD edits a voxel and
// dirties the affected chunk for re-meshing; CHAT rebroadcasts to every
// connected client.
func (w *World) handleInbound(in transport.Inbound) {
	switch in.Packet.Type {
	case wire.Peer:
		w.handlePeer(in.ClientID, in.Packet.Payload)
	case wire.Method:
		w.handleBlockEdit(in.ClientID, in.Packet.Payload)
	case wire.Chat:
		w.handleChat(in.ClientID, in.Packet.Payload)
	default:
		log.Printf("[world] client %s sent unsupported packet type %s", in.ClientID, in.Packet.Type)
	}
}

// correctPosition returns the client-reported position unchanged when it
// falls within PositionToleranceSq of the server's own physics-stepped
// position for id, and the server's position otherwise, implementing
// spec.md 6's server-authoritative position correction.
func (w *World) correctPosition(id uuid.UUID, reported mgl32.Vec3) mgl32.Vec3 {
	w.mu.Lock()
	body := w.bodies[id]
	w.mu.Unlock()
	if body == nil {
		return reported
	}
	delta := reported.Sub(body.Position())
	if delta.Dot(delta) > w.Config.PositionToleranceSq {
		return body.Position()
	}
	return reported
}

func (w *World) handlePeer(id uuid.UUID, payload []byte) {
	var update wire.PeerUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		log.Printf("[world] client %s sent malformed PEER payload: %v", id, err)
		return
	}

	pos := w.correctPosition(id, mgl32.Vec3{update.X, update.Y, update.Z})

	if e := w.Entities.Get(id); e != nil {
		e.Transform.Position = pos
		e.Transform.Yaw, e.Transform.Pitch = update.Yaw, update.Pitch
	}

	dims := w.Config.Dimensions()
	center := dims.WorldToChunk(voxel.Vec3{X: int32(pos.X), Z: int32(pos.Z)})

	r := w.Hub.Get(id)
	if r == nil {
		return
	}
	w.mu.Lock()
	cs := w.clients[id]
	w.mu.Unlock()
	if cs == nil || cs.center == center {
		return
	}
	cs.center = center
	r.SetCenter(center)

	radius := w.Config.PreloadRadius
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			r.Append(voxel.Vec2{X: center.X + dx, Z: center.Z + dz})
		}
	}
}

// handleBlockEdit applies a client-requested voxel change: writes the
// new block id into the owning chunk and rewinds that chunk's pipeline
// position to the Mesh stage, matching spec.md 4.5's dirty-propagation
// rule for direct edits to an already-Ready chunk.
func (w *World) handleBlockEdit(id uuid.UUID, payload []byte) {
	var edit wire.BlockEdit
	if err := json.Unmarshal(payload, &edit); err != nil {
		log.Printf("[world] client %s sent malformed METHOD payload: %v", id, err)
		return
	}

	dims := w.Config.Dimensions()
	pos := voxel.Vec3{X: edit.X, Y: edit.Y, Z: edit.Z}
	coord := dims.WorldToChunk(pos)

	chunk := w.Store.Get(coord)
	if chunk == nil || !chunk.Status().AtLeast(voxel.StatusReady) {
		return
	}
	if w.Registry.BlockByID(edit.BlockID) == nil {
		return
	}

	local := dims.WorldToLocal(pos)
	chunk.SetVoxel(local.X, local.Y, local.Z, edit.BlockID)

	w.mu.Lock()
	w.pendingChanges[coord] = append(w.pendingChanges[coord], wire.VoxelChange{
		Pos:   pos,
		Value: voxel.InsertID(0, edit.BlockID),
	})
	w.mu.Unlock()

	w.Pipeline.Dirty(coord)
}

func (w *World) handleChat(id uuid.UUID, payload []byte) {
	var msg wire.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("[world] client %s sent malformed CHAT payload: %v", id, err)
		return
	}
	msg.From = id.String()
	out, err := json.Marshal(msg)
	if err != nil {
		return
	}
	w.Transport.Broadcast(wire.Packet{Type: wire.Chat, Payload: out})
}
