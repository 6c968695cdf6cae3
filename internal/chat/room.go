package chat

import (
	"slices"

	"github.com/samber/lo"
)

// DefaultRoom always exists, even with no members.
const DefaultRoom = "General"

// Room is a named group of connections.
type Room struct {
	Name    string
	members []ConnID
}

// RoomInfo is the public summary of a room.
type RoomInfo struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

func (r *Room) has(id ConnID) bool {
	return slices.Contains(r.members, id)
}

func (r *Room) add(id ConnID) {
	if !r.has(id) {
		r.members = append(r.members, id)
	}
}

func (r *Room) remove(id ConnID) {
	r.members = slices.DeleteFunc(r.members, func(m ConnID) bool { return m == id })
}

// Directory maps room names to their members. Rooms are listed in creation
// order, so the default room always comes first.
//
// Directory is not safe for concurrent use; Router serialises access.
type Directory struct {
	rooms map[string]*Room
	order []string
}

// NewDirectory creates a directory holding only the default room.
func NewDirectory() *Directory {
	d := &Directory{rooms: make(map[string]*Room)}
	d.add(DefaultRoom)
	return d
}

func (d *Directory) add(name string) *Room {
	room := &Room{Name: name}
	d.rooms[name] = room
	d.order = append(d.order, name)
	return room
}

func (d *Directory) delete(name string) {
	delete(d.rooms, name)
	d.order = slices.DeleteFunc(d.order, func(n string) bool { return n == name })
}

// List returns a snapshot of every room and its member count.
func (d *Directory) List() []RoomInfo {
	return lo.Map(d.order, func(name string, _ int) RoomInfo {
		return RoomInfo{Name: name, UserCount: len(d.rooms[name].members)}
	})
}

// Exists reports whether a room with this exact name exists.
func (d *Directory) Exists(name string) bool {
	_, ok := d.rooms[name]
	return ok
}

// Members returns the connections in the room, in join order. An unknown
// room has no members.
func (d *Directory) Members(name string) []ConnID {
	room, ok := d.rooms[name]
	if !ok {
		return nil
	}
	return slices.Clone(room.members)
}

// Contains reports whether id is a member of the named room.
func (d *Directory) Contains(name string, id ConnID) bool {
	room, ok := d.rooms[name]
	return ok && room.has(id)
}

// Create sanitizes rawName and adds an empty room under it. The creator is
// not joined.
func (d *Directory) Create(rawName string) (string, error) {
	name, err := SanitizeRoomName(rawName)
	if err != nil {
		return "", err
	}
	if d.Exists(name) {
		return "", ErrRoomExists
	}
	d.add(name)
	return name, nil
}

// Enter adds id to the named room, creating the room if needed.
func (d *Directory) Enter(id ConnID, name string) {
	room, ok := d.rooms[name]
	if !ok {
		room = d.add(name)
	}
	room.add(id)
}

// Leave removes id from the named room and deletes the room once it is
// empty, unless it is the default room. Leave does not notify anyone.
func (d *Directory) Leave(id ConnID, name string) {
	room, ok := d.rooms[name]
	if !ok {
		return
	}
	room.remove(id)
	if len(room.members) == 0 && name != DefaultRoom {
		d.delete(name)
	}
}

func (d *Directory) reset() {
	clear(d.rooms)
	d.order = d.order[:0]
	d.add(DefaultRoom)
}
