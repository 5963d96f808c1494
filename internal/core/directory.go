package core

import "sort"

// RoomInfo is a point-in-time view of one room.
type RoomInfo struct {
	Name    string
	Members int
}

// RoomDirectory maps room names to member connection sets. A room
// exists exactly while it has at least one member; the entry is deleted
// as soon as membership reaches zero. Like the session registry it is
// owned by the hub goroutine and is not self-locking.
type RoomDirectory struct {
	rooms map[string]map[string]struct{}
}

// NewRoomDirectory constructs an empty directory.
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{rooms: make(map[string]map[string]struct{})}
}

// AddMember inserts the connection into the room's member set, creating
// the room entry if absent. Returns true if newly added.
func (d *RoomDirectory) AddMember(room, connID string) bool {
	members, exists := d.rooms[room]
	if !exists {
		members = make(map[string]struct{})
		d.rooms[room] = members
	}
	if _, exists := members[connID]; exists {
		return false
	}
	members[connID] = struct{}{}
	return true
}

// RemoveMember removes the connection from the room's member set and
// deletes the room entry once it is empty. Returns true if removed.
func (d *RoomDirectory) RemoveMember(room, connID string) bool {
	members, exists := d.rooms[room]
	if !exists {
		return false
	}
	if _, exists := members[connID]; !exists {
		return false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
	return true
}

// Members returns a snapshot of the room's member connection ids, never
// a live reference, so callers can iterate while the hub keeps mutating.
func (d *RoomDirectory) Members(room string) []string {
	members, exists := d.rooms[room]
	if !exists {
		return nil
	}
	snapshot := make([]string, 0, len(members))
	for connID := range members {
		snapshot = append(snapshot, connID)
	}
	return snapshot
}

// Rooms returns a snapshot of all active rooms sorted by name.
func (d *RoomDirectory) Rooms() []RoomInfo {
	infos := make([]RoomInfo, 0, len(d.rooms))
	for name, members := range d.rooms {
		infos = append(infos, RoomInfo{Name: name, Members: len(members)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Len reports the number of active rooms.
func (d *RoomDirectory) Len() int {
	return len(d.rooms)
}
