package networkmanager

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

// idTable hands out small positive integer ids for connection object paths.
// Ids are stable for the life of the process; NetworkManager itself only
// knows paths and uuids.
type idTable struct {
	mu     sync.Mutex
	ids    map[dbus.ObjectPath]int
	paths  map[int]dbus.ObjectPath
	nextID int
}

func newIDTable() *idTable {
	return &idTable{
		ids:    make(map[dbus.ObjectPath]int),
		paths:  make(map[int]dbus.ObjectPath),
		nextID: 1,
	}
}

func (t *idTable) id(path dbus.ObjectPath) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[path]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	t.ids[path] = id
	t.paths[id] = path
	return id
}

func (t *idTable) path(id int) (dbus.ObjectPath, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.paths[id]
	return p, ok
}

func (t *idTable) forget(path dbus.ObjectPath) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[path]; ok {
		delete(t.paths, id)
		delete(t.ids, path)
	}
}
