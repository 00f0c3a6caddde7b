package transport

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/StoreStation/voxelengine/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server accepts websocket connections and fans their decoded packets
// into a single Inbox the dispatcher's tick loop drains at its
// chunk-requests phase, generalized from krakovia's register/unregister
// channel pattern and the teacher's acceptLoop/Start/Stop shape, adapted
// from a raw net.Listener to an http.Server upgrade handler.
type Server struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	Inbox chan Inbound

	// OnConnect/OnDisconnect let the world/dispatcher layer register and
	// tear down per-client router/entity state without transport
	// importing those packages.
	OnConnect    func(id uuid.UUID)
	OnDisconnect func(id uuid.UUID)

	httpServer *http.Server
}

// NewServer returns a Server with an inbox of the given capacity.
func NewServer(inboxSize int) *Server {
	return &Server{
		clients: make(map[uuid.UUID]*Client),
		Inbox:   make(chan Inbound, inboxSize),
	}
}

// ServeHTTP upgrades the request and starts the client's read/write
// pumps, matching krakovia's HandleWebSocket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade failed: %v", err)
		return
	}

	id := uuid.New()
	client := NewClient(id, conn)

	s.mu.Lock()
	s.clients[id] = client
	s.mu.Unlock()

	if s.OnConnect != nil {
		s.OnConnect(id)
	}

	go client.writePump()
	client.readPump(s.Inbox, func(c *Client) {
		s.mu.Lock()
		delete(s.clients, c.ID)
		s.mu.Unlock()
		if s.OnDisconnect != nil {
			s.OnDisconnect(c.ID)
		}
	})
}

// Start begins listening on addr, mounting ServeHTTP at path.
func (s *Server) Start(addr, path string) error {
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.ServeHTTP)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	log.Printf("transport: listening on %s%s", addr, path)
	return s.httpServer.ListenAndServe()
}

// Stop closes every connected client and shuts down the HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clients = make(map[uuid.UUID]*Client)
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}

// Send delivers packets to one connected client, a no-op if it has
// already disconnected.
func (s *Server) Send(id uuid.UUID, packets ...wire.Packet) {
	s.mu.RLock()
	c := s.clients[id]
	s.mu.RUnlock()
	if c == nil {
		return
	}
	c.Send(packets...)
}

// Broadcast delivers packets to every connected client.
func (s *Server) Broadcast(packets ...wire.Packet) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		c.Send(packets...)
	}
}

// Disconnect forcibly drops a client, e.g. on a protocol violation.
func (s *Server) Disconnect(id uuid.UUID) {
	s.mu.RLock()
	c := s.clients[id]
	s.mu.RUnlock()
	if c != nil {
		c.Close()
	}
}
