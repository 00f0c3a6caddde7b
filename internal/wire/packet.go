// Package wire implements the engine's binary client/server protocol:
// packet framing, the >1KiB zlib compression rule, and 9-byte-header
// message fragmentation/reassembly, grounded on spec.md 6 and on the
// teacher's pkg/protocol VarInt-based framing style.
package wire

// Type identifies a packet's payload shape.
type Type uint8

const (
	Init Type = iota
	Join
	Leave
	Load
	Update
	Peer
	Entity
	Event
	Method
	Chat
	Stats
	Unload
)

func (t Type) String() string {
	switch t {
	case Init:
		return "INIT"
	case Join:
		return "JOIN"
	case Leave:
		return "LEAVE"
	case Load:
		return "LOAD"
	case Update:
		return "UPDATE"
	case Peer:
		return "PEER"
	case Entity:
		return "ENTITY"
	case Event:
		return "EVENT"
	case Method:
		return "METHOD"
	case Chat:
		return "CHAT"
	case Stats:
		return "STATS"
	case Unload:
		return "UNLOAD"
	default:
		return "UNKNOWN"
	}
}

// Packet is one typed, opaque payload. Binary payloads (LOAD, UPDATE,
// INIT's registry snapshot) are packed by internal/wire's own helpers;
// JSON payloads (EVENT, METHOD, ENTITY metadata, CHAT) use encoding/json
// directly, matching spec.md 6's "named event with JSON payload".
type Packet struct {
	Type    Type
	Payload []byte
}
