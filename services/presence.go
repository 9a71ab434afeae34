package services

import "sync"

// Wire event names shared with the client.
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
	EventMessageSeen = "messageSeen"
	EventMarkSeen    = "markMessageAsSeen"
)

// Event is a JSON frame on the realtime transport.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Receiver is a live connection handle able to accept outbound events.
type Receiver interface {
	SendEvent(event Event) error
}

// Registry tracks which users are reachable for push delivery. One entry
// per user; a reconnect overwrites the previous handle. Entirely volatile.
//
// Unauthenticated visitors are tracked separately so the online-user feed
// still reaches them without them ever appearing in it.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Receiver
	visitors map[Receiver]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]Receiver),
		visitors: make(map[Receiver]struct{}),
	}
}

// Register makes userID reachable via the handle, replacing any prior
// entry, and broadcasts the updated online-user list to every connection.
func (r *Registry) Register(userID string, handle Receiver) {
	r.mu.Lock()
	r.clients[userID] = handle
	r.mu.Unlock()

	r.broadcastOnline()
}

// Unregister removes the user's entry and broadcasts the updated list.
// Removing an absent user is a no-op.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()

	r.broadcastOnline()
}

// Lookup returns the user's live handle. Absence is a normal result, not
// an error: the recipient is simply offline.
func (r *Registry) Lookup(userID string) (Receiver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.clients[userID]
	return handle, ok
}

// IsCurrent reports whether handle is still the registered entry for
// userID. A read loop uses this to avoid tearing down a fresh reconnect.
func (r *Registry) IsCurrent(userID string, handle Receiver) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clients[userID] == handle
}

// OnlineIDs snapshots the ids of currently registered users.
func (r *Registry) OnlineIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Push delivers the event to userID's connection if present. Reports
// whether a delivery was attempted.
func (r *Registry) Push(userID string, event Event) bool {
	handle, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	// Send errors close the connection through its own lifecycle; a push
	// is best effort either way.
	_ = handle.SendEvent(event)
	return true
}

// AddVisitor tracks an unauthenticated connection for broadcasts only.
func (r *Registry) AddVisitor(handle Receiver) {
	r.mu.Lock()
	r.visitors[handle] = struct{}{}
	r.mu.Unlock()

	r.broadcastOnline()
}

// RemoveVisitor drops an unauthenticated connection.
func (r *Registry) RemoveVisitor(handle Receiver) {
	r.mu.Lock()
	delete(r.visitors, handle)
	r.mu.Unlock()

	r.broadcastOnline()
}

func (r *Registry) broadcastOnline() {
	event := Event{Event: EventOnlineUsers, Payload: r.OnlineIDs()}

	r.mu.RLock()
	targets := make([]Receiver, 0, len(r.clients)+len(r.visitors))
	for _, handle := range r.clients {
		targets = append(targets, handle)
	}
	for handle := range r.visitors {
		targets = append(targets, handle)
	}
	r.mu.RUnlock()

	for _, handle := range targets {
		_ = handle.SendEvent(event)
	}
}
