/*
Package registry is the in-memory directory of clients and rooms (spec.md
§3, §4.1): a bounded client table, a bounded room table, and the
operations that keep invariants 1–7 true across every mutation. Every
exported method documents the lock mode its caller must already hold —
the registry does not lock itself, so that handlers can batch several
operations under one acquisition (spec.md §5, lock discipline).

This generalizes the teacher's per-Room `clients map[string]*Client`
guarded by `sync.RWMutex` (hzchat/internal/app/chat/room.go) into the
single shared client+room table the spec's router/worker-pool
architecture requires, with the bounded-array storage spec.md §4.1 calls
for (O(MAX_CLIENTS)/O(MAX_CHANNELS) scans, acceptable given small caps).
*/
package registry

import (
	"sync"
	"time"

	"mqchat/internal/configs"
)

// Client is one occupied row of the client table (spec.md §3).
type Client struct {
	Handle         string
	ReplyMailboxID int
	CurrentChannel string
	LastActive     time.Time
	occupied       bool
}

// Room is one occupied row of the room table (spec.md §3).
type Room struct {
	Name    string
	Members []string
	occupied bool
}

// DepartureEvent describes a client leaving a room, produced by every
// removal path so the caller can turn it into a broadcast Job (spec.md §4.1).
type DepartureEvent struct {
	Handle      string
	Channel     string
	RoomDeleted bool
}

// Registry is the shared, lock-guarded directory (spec.md §3).
type Registry struct {
	mu sync.RWMutex

	clients    []Client
	clientCount int

	rooms      []Room
	roomCount  int

	maxClients int
	maxChannels int
}

// New constructs a Registry sized per cfg and seeds the reserved default
// channel (spec.md §4.7, "registry initialize ... default channel seeded").
func New(cfg *configs.AppConfig) *Registry {
	r := &Registry{
		clients:     make([]Client, cfg.MaxClients),
		rooms:       make([]Room, cfg.MaxChannels),
		maxClients:  cfg.MaxClients,
		maxChannels: cfg.MaxChannels,
	}

	r.rooms[0] = Room{Name: configs.DefaultChannel, Members: nil, occupied: true}
	r.roomCount = 1

	return r
}

// Lock / RLock / Unlock / RUnlock expose the registry's single RWMutex so
// router, handlers, and the monitor can hold it across a sequence of
// operations (spec.md §5: "Jobs must be enqueued before releasing the
// registry lock only when their contents depend on state read under that
// lock").
func (r *Registry) Lock()    { r.mu.Lock() }
func (r *Registry) Unlock()  { r.mu.Unlock() }
func (r *Registry) RLock()   { r.mu.RLock() }
func (r *Registry) RUnlock() { r.mu.RUnlock() }

// ClientCount returns the number of occupied client slots. Caller holds at least RLock.
func (r *Registry) ClientCount() int { return r.clientCount }

// RoomCount returns the number of occupied room slots. Caller holds at least RLock.
func (r *Registry) RoomCount() int { return r.roomCount }

// FindClient returns the client entry for handle, if present. Caller holds at least RLock.
func (r *Registry) FindClient(handle string) (*Client, bool) {
	for i := range r.clients {
		if r.clients[i].occupied && r.clients[i].Handle == handle {
			return &r.clients[i], true
		}
	}
	return nil, false
}

// StaleClients returns the handles of every occupied client slot whose
// last-active age exceeds timeout (spec.md §4.6). Caller holds at least RLock.
func (r *Registry) StaleClients(now time.Time, timeout time.Duration) []string {
	var stale []string
	for i := range r.clients {
		if r.clients[i].occupied && now.Sub(r.clients[i].LastActive) > timeout {
			stale = append(stale, r.clients[i].Handle)
		}
	}
	return stale
}

// FindRoom returns the room entry for name, if present. Caller holds at least RLock.
func (r *Registry) FindRoom(name string) (*Room, bool) {
	for i := range r.rooms {
		if r.rooms[i].occupied && r.rooms[i].Name == name {
			return &r.rooms[i], true
		}
	}
	return nil, false
}

// AddClient allocates the first free client slot and initializes it. It
// reports ok=false if the registry is full (invariant 1 is preserved by
// AddClient being the only slot-allocating path and always scanning for an
// existing handle first). Caller holds Lock.
func (r *Registry) AddClient(handle string, replyMailboxID int, now time.Time) (*Client, bool) {
	if _, exists := r.FindClient(handle); exists {
		return nil, false
	}

	for i := range r.clients {
		if !r.clients[i].occupied {
			r.clients[i] = Client{
				Handle:         handle,
				ReplyMailboxID: replyMailboxID,
				CurrentChannel: "",
				LastActive:     now,
				occupied:       true,
			}
			r.clientCount++
			return &r.clients[i], true
		}
	}
	return nil, false
}

// Touch refreshes a client's last-active timestamp (spec.md §4.5, router
// touch on every command; §8 P5 monotonicity). Caller holds Lock.
func (r *Registry) Touch(handle string, now time.Time) {
	if c, ok := r.FindClient(handle); ok && now.After(c.LastActive) {
		c.LastActive = now
	}
}

// getOrCreateRoom locates name, creating it if the room table has room
// (invariant 2: at most one entry per channel name). Caller holds Lock.
func (r *Registry) getOrCreateRoom(name string) (*Room, bool) {
	if room, ok := r.FindRoom(name); ok {
		return room, true
	}

	for i := range r.rooms {
		if !r.rooms[i].occupied {
			r.rooms[i] = Room{Name: name, Members: nil, occupied: true}
			r.roomCount++
			return &r.rooms[i], true
		}
	}
	return nil, false
}

// memberIndex returns the index of handle in room.Members, or -1.
func memberIndex(room *Room, handle string) int {
	for i, m := range room.Members {
		if m == handle {
			return i
		}
	}
	return -1
}

// JoinRoom moves a client into channel, leaving any prior channel first
// (Open Question 1: JOIN is always leave-then-join). It returns the
// resulting member count, the previous-channel departure if one actually
// happened (nil if the client had no prior channel), whether membership
// actually changed (false when the client was already in channel — the
// JOIN is then a no-op and the caller must not broadcast a join), and
// whether the join itself succeeded (false when handle is not registered,
// or when a brand-new room could not be created because the room table
// is full).
// Caller holds Lock.
func (r *Registry) JoinRoom(handle, channel string) (memberCount int, departed *DepartureEvent, changed bool, ok bool) {
	client, exists := r.FindClient(handle)
	if !exists {
		return 0, nil, false, false
	}

	if client.CurrentChannel == channel {
		if room, found := r.FindRoom(channel); found {
			return len(room.Members), nil, false, true
		}
	}

	var dep *DepartureEvent
	if client.CurrentChannel != "" {
		dep = r.removeFromRoom(client.Handle, client.CurrentChannel)
	}

	room, ok := r.getOrCreateRoom(channel)
	if !ok {
		// Roll back: the client keeps its previous departure but cannot join the
		// new room. Re-attach to the old room if it still exists, matching the
		// source's "reject JOIN, no state corruption" behavior.
		if dep != nil && !dep.RoomDeleted {
			if oldRoom, found := r.FindRoom(dep.Channel); found {
				oldRoom.Members = append(oldRoom.Members, handle)
				client.CurrentChannel = dep.Channel
			}
		}
		return 0, nil, false, false
	}

	if memberIndex(room, handle) == -1 {
		room.Members = append(room.Members, handle)
	}
	client.CurrentChannel = channel

	return len(room.Members), dep, true, true
}

// removeFromRoom removes handle from the named room's member list,
// deleting a non-default room that becomes empty (invariant 5). It
// returns the departure event describing what happened. Caller holds Lock.
func (r *Registry) removeFromRoom(handle, channel string) *DepartureEvent {
	room, ok := r.FindRoom(channel)
	if !ok {
		return nil
	}

	idx := memberIndex(room, handle)
	if idx == -1 {
		return &DepartureEvent{Handle: handle, Channel: channel}
	}

	room.Members = append(room.Members[:idx], room.Members[idx+1:]...)

	deleted := false
	if len(room.Members) == 0 && channel != configs.DefaultChannel {
		r.deleteRoom(channel)
		deleted = true
	}

	return &DepartureEvent{Handle: handle, Channel: channel, RoomDeleted: deleted}
}

// deleteRoom zeroes the slot for an empty non-default room. Caller holds Lock.
func (r *Registry) deleteRoom(name string) {
	for i := range r.rooms {
		if r.rooms[i].occupied && r.rooms[i].Name == name {
			r.rooms[i] = Room{}
			r.roomCount--
			return
		}
	}
}

// Leave removes a client from its current channel, if any. It returns the
// departure event (nil if the client had no channel). Caller holds Lock.
func (r *Registry) Leave(handle string) *DepartureEvent {
	client, ok := r.FindClient(handle)
	if !ok || client.CurrentChannel == "" {
		return nil
	}

	channel := client.CurrentChannel
	dep := r.removeFromRoom(handle, channel)
	client.CurrentChannel = ""
	return dep
}

// RemoveClient performs full client removal (spec.md §4.1): leaves the
// current room (possibly reaping it), zeroes the client slot, and
// decrements the count. It returns the departure event for the caller to
// turn into a broadcast, or nil if handle was not registered. Caller
// holds Lock.
func (r *Registry) RemoveClient(handle string) *DepartureEvent {
	client, ok := r.FindClient(handle)
	if !ok {
		return nil
	}

	var dep *DepartureEvent
	if client.CurrentChannel != "" {
		dep = r.removeFromRoom(handle, client.CurrentChannel)
	}

	*client = Client{}
	r.clientCount--

	return dep
}

// Snapshot returns a defensive copy of a room's member list, suitable for
// a worker to iterate after releasing the registry lock (spec.md §9,
// "Fan-out under lock": copy-then-release is an equally valid discipline
// to sending while still holding the shared lock). Caller holds at least RLock.
func (r *Room) Snapshot() []string {
	out := make([]string, len(r.Members))
	copy(out, r.Members)
	return out
}
