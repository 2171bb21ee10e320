package server

import "errors"

var (
	// ErrUnknownPeer means a response was addressed to a peer the registry
	// has never seen or has already pruned. Responses are only ever
	// addressed to registered peers, so hitting this is a connection
	// lifecycle bug, not a user error.
	ErrUnknownPeer = errors.New("peer is not registered")

	// ErrPeerStalled means a peer's outbound buffer was full and the peer
	// was pruned so it could not hold up delivery to the others.
	ErrPeerStalled = errors.New("peer send buffer full")
)
