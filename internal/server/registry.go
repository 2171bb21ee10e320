package server

import (
	"sync"

	"github.com/charmbracelet/log"
)

// peerEntry is one registered connection: its outbound delivery channel
// and a hook that severs the connection when delivery overflows.
type peerEntry struct {
	send  chan []byte
	close func()
}

// Registry maps each connected peer's remote address to its outbound
// delivery channel. It is purely a delivery mechanism; no game invariant
// ever depends on it.
//
// Delivery is non-blocking: a peer whose buffer is full is pruned and its
// connection closed, so a slow or dead peer can never stall broadcast to
// the others.
type Registry struct {
	mu     sync.RWMutex
	peers  map[string]peerEntry
	logger *log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		peers:  make(map[string]peerEntry),
		logger: logger.WithPrefix("registry"),
	}
}

// Register adds a peer at connection-accept time. closeConn is invoked
// (at most once, on a separate goroutine) if the peer is pruned for
// stalling.
func (r *Registry) Register(addr string, send chan []byte, closeConn func()) {
	r.mu.Lock()
	r.peers[addr] = peerEntry{send: send, close: closeConn}
	total := len(r.peers)
	r.mu.Unlock()

	r.logger.Info("peer registered", "peer", addr, "total", total)
}

// Unregister removes a peer on disconnect. Idempotent.
func (r *Registry) Unregister(addr string) {
	r.mu.Lock()
	_, ok := r.peers[addr]
	delete(r.peers, addr)
	total := len(r.peers)
	r.mu.Unlock()

	if ok {
		r.logger.Info("peer unregistered", "peer", addr, "total", total)
	}
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Broadcast delivers payload to every registered peer. Peers that cannot
// accept the payload are pruned and closed instead of blocking the rest.
func (r *Registry) Broadcast(payload []byte) {
	r.mu.RLock()
	targets := make(map[string]peerEntry, len(r.peers))
	for addr, entry := range r.peers {
		targets[addr] = entry
	}
	r.mu.RUnlock()

	for addr, entry := range targets {
		if !offer(entry, payload) {
			r.prune(addr, entry)
		}
	}
}

// Send delivers payload to exactly one peer. An unknown address is a
// programming invariant violation surfaced as ErrUnknownPeer; the caller
// must log it loudly rather than drop the response silently.
func (r *Registry) Send(payload []byte, addr string) error {
	r.mu.RLock()
	entry, ok := r.peers[addr]
	r.mu.RUnlock()

	if !ok {
		return ErrUnknownPeer
	}
	if !offer(entry, payload) {
		r.prune(addr, entry)
		return ErrPeerStalled
	}
	return nil
}

// offer attempts a non-blocking delivery.
func offer(entry peerEntry, payload []byte) bool {
	select {
	case entry.send <- payload:
		return true
	default:
		return false
	}
}

func (r *Registry) prune(addr string, entry peerEntry) {
	r.mu.Lock()
	_, ok := r.peers[addr]
	delete(r.peers, addr)
	r.mu.Unlock()

	if !ok {
		return
	}
	r.logger.Warn("pruning stalled peer", "peer", addr)
	if entry.close != nil {
		go entry.close()
	}
}

// CloseAll severs every registered connection; used during shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := make([]peerEntry, 0, len(r.peers))
	for addr, entry := range r.peers {
		entries = append(entries, entry)
		delete(r.peers, addr)
	}
	r.mu.Unlock()

	for _, entry := range entries {
		if entry.close != nil {
			entry.close()
		}
	}
}
