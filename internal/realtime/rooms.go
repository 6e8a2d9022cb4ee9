package realtime

import "sync"

// registry tracks which clients joined which rooms. Both directions are
// indexed so a dropped connection can leave all of its rooms without a
// full scan.
type registry struct {
	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	members map[*client]map[string]struct{}
}

func newRegistry() *registry {
	return &registry{
		rooms:   make(map[string]map[*client]struct{}),
		members: make(map[*client]map[string]struct{}),
	}
}

func (r *registry) join(room string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[*client]struct{})
	}
	r.rooms[room][c] = struct{}{}

	if r.members[c] == nil {
		r.members[c] = make(map[string]struct{})
	}
	r.members[c][room] = struct{}{}
}

func (r *registry) leave(room string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, c)
}

// drop removes the client from every room it joined.
func (r *registry) drop(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.members[c] {
		r.leaveLocked(room, c)
	}
}

func (r *registry) leaveLocked(room string, c *client) {
	if clients, ok := r.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(r.rooms, room)
		}
	}
	if rooms, ok := r.members[c]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.members, c)
		}
	}
}

// broadcast queues the frame to every member of the room.
func (r *registry) broadcast(room string, frame any) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.rooms[room] {
		c.send(frame)
	}
}

func (r *registry) roomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// totalMembers counts clients currently registered in any room.
func (r *registry) totalMembers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
