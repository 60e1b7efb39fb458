package core

import "fmt"

// Identifiers hands out small integer handles and remembers their owners.
// Released slots are reused before the table grows.
type Identifiers struct {
	owners []interface{}
}

func NewIdentifiers(capacity int) *Identifiers {
	return &Identifiers{owners: make([]interface{}, 0, capacity)}
}

func (ids *Identifiers) Acquire(owner interface{}) uint32 {
	for i := range ids.owners {
		// Existing free spot. Take it.
		if ids.owners[i] == nil {
			ids.owners[i] = owner
			return uint32(i)
		}
	}
	ids.owners = append(ids.owners, owner)
	return uint32(len(ids.owners) - 1)
}

func (ids *Identifiers) Owner(id uint32) (interface{}, bool) {
	if int(id) >= len(ids.owners) || ids.owners[id] == nil {
		return nil, false
	}
	return ids.owners[id], true
}

func (ids *Identifiers) Release(id uint32) error {
	if int(id) >= len(ids.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(ids.owners))
	}
	ids.owners[id] = nil
	return nil
}

// Live counts the handles currently owned.
func (ids *Identifiers) Live() int {
	n := 0
	for _, o := range ids.owners {
		if o != nil {
			n++
		}
	}
	return n
}
