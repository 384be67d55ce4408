package hub

// RoomIDFor derives the private chat id for a pair of connections. The
// ids are ordered lexicographically before joining, so the result is
// symmetric in its arguments. Callers reject a == b before calling.
func RoomIDFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// Rooms tracks the ephemeral two-party private chats so both sides can
// be torn down when either participant disconnects.
type Rooms struct {
	members map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]struct{})}
}

// EnsureRoom creates the room for the pair if absent and returns its id.
func (r *Rooms) EnsureRoom(a, b string) string {
	id := RoomIDFor(a, b)
	if _, ok := r.members[id]; !ok {
		r.members[id] = map[string]struct{}{a: {}, b: {}}
	}
	return id
}

// DropConnection removes every room containing connectionID in full; a
// two-party room has no meaning with one party gone.
func (r *Rooms) DropConnection(connectionID string) {
	for id, members := range r.members {
		if _, ok := members[connectionID]; ok {
			delete(r.members, id)
		}
	}
}

func (r *Rooms) Has(id string) bool {
	_, ok := r.members[id]
	return ok
}

func (r *Rooms) Len() int {
	return len(r.members)
}
