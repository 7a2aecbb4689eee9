package state

import (
	"github.com/minichain/minichain/foundation/blockchain/peer"
)

// Connect registers this node and the other node with each other for block
// and transaction updates. Connections are bidirectional and both
// registrations complete before either side is notified of the other's
// tip; a half connected pair is never observable. Connecting a node to
// itself is a usage error and fails with ErrSelfConnection.
func (s *State) Connect(other *State) error {
	if other.Address() == s.Address() {
		return ErrSelfConnection
	}

	s.knownPeers.Add(other)
	other.knownPeers.Add(s)

	s.evHandler("state: Connect: peer[%s]", other.Address())

	// Exchange tips so both sides catch up immediately.
	s.OnBlockAnnounce(other.LatestHash(), other)
	other.OnBlockAnnounce(s.LatestHash(), s)

	return nil
}

// Disconnect removes the connection between this node and the other node.
// Nothing happens when the two were not connected.
func (s *State) Disconnect(other *State) {
	if !s.knownPeers.Contains(other.Address()) {
		return
	}

	s.knownPeers.Remove(other.Address())
	other.knownPeers.Remove(s.Address())

	s.evHandler("state: Disconnect: peer[%s]", other.Address())
}

// KnownPeers returns the handles of the peers this node is connected to.
func (s *State) KnownPeers() []peer.Handle {
	return s.knownPeers.Copy()
}
