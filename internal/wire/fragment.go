package wire

import (
	"encoding/binary"
	"sync"
)

// fragmentMarker is the first byte of a fragmented payload, distinguishing
// it from a fragment-free message (whose first byte is the 0/1
// compression flag, which never collides since compression flags are
// only ever 0 or 1).
const fragmentMarker = 0xFF

// fragmentHeaderSize is the 9-byte header: marker, message id (u32 BE),
// fragment index (u16 BE), total fragments (u16 BE).
const fragmentHeaderSize = 9

// Fragment splits an already-encoded message into chunks no larger than
// maxSize, each carrying the header spec.md 6 requires. A message that
// already fits in one chunk is returned unfragmented, unmarked.
func Fragment(data []byte, messageID uint32, maxSize int) [][]byte {
	if len(data) <= maxSize {
		return [][]byte{data}
	}

	chunkSize := maxSize - fragmentHeaderSize
	total := (len(data) + chunkSize - 1) / chunkSize

	out := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}

		frame := make([]byte, fragmentHeaderSize+(end-start))
		frame[0] = fragmentMarker
		binary.BigEndian.PutUint32(frame[1:5], messageID)
		binary.BigEndian.PutUint16(frame[5:7], uint16(i))
		binary.BigEndian.PutUint16(frame[7:9], uint16(total))
		copy(frame[fragmentHeaderSize:], data[start:end])
		out = append(out, frame)
	}
	return out
}

// IsFragment reports whether frame carries a fragment header.
func IsFragment(frame []byte) bool {
	return len(frame) >= fragmentHeaderSize && frame[0] == fragmentMarker
}

// Reassembler collects fragments by (message id, total fragments) and
// returns the reassembled message once every fragment has arrived.
type Reassembler struct {
	mu       sync.Mutex
	pending  map[uint32][][]byte
	received map[uint32]int
	total    map[uint32]int
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{
		pending:  make(map[uint32][][]byte),
		received: make(map[uint32]int),
		total:    make(map[uint32]int),
	}
}

// Add feeds one fragment frame in; it returns the reassembled message
// and true once all fragments for that message id have arrived.
func (r *Reassembler) Add(frame []byte) ([]byte, bool) {
	if !IsFragment(frame) {
		return nil, false
	}

	msgID := binary.BigEndian.Uint32(frame[1:5])
	index := binary.BigEndian.Uint16(frame[5:7])
	total := binary.BigEndian.Uint16(frame[7:9])
	payload := frame[fragmentHeaderSize:]

	r.mu.Lock()
	defer r.mu.Unlock()

	parts, ok := r.pending[msgID]
	if !ok {
		parts = make([][]byte, total)
		r.pending[msgID] = parts
		r.total[msgID] = int(total)
	}
	if int(index) >= len(parts) || parts[index] != nil {
		return nil, false
	}
	parts[index] = payload
	r.received[msgID]++

	if r.received[msgID] < r.total[msgID] {
		return nil, false
	}

	var full []byte
	for _, p := range parts {
		full = append(full, p...)
	}
	delete(r.pending, msgID)
	delete(r.received, msgID)
	delete(r.total, msgID)
	return full, true
}
