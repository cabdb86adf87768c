package object

// handle identifies an arena slot. The generation changes every time the
// slot is released, so a stale handle never matches a reused slot.
type handle struct {
	slot int
	gen  uint32
}

type arenaSlot struct {
	gen  uint32
	inst *Instance
}

// arena is the instance storage behind a Registry. A capacity of 0
// leaves it unbounded.
type arena struct {
	slots    []arenaSlot
	free     []int
	owned    map[any]struct{}
	capacity int
	live     int
}

func newArena(capacity int) *arena {
	return &arena{
		slots:    make([]arenaSlot, 0, 64),
		owned:    make(map[any]struct{}),
		capacity: capacity,
	}
}

// owns reports whether any of views is held by a live instance.
func (a *arena) owns(views []any) bool {
	for _, v := range views {
		if _, ok := a.owned[v]; ok {
			return true
		}
	}
	return false
}

func (a *arena) alloc(inst *Instance) (handle, error) {
	if a.capacity > 0 && a.live >= a.capacity {
		return handle{}, ErrAllocation
	}
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, arenaSlot{})
	}
	a.slots[idx].inst = inst
	for _, v := range inst.views {
		a.owned[v] = struct{}{}
	}
	a.live++
	return handle{slot: idx, gen: a.slots[idx].gen}, nil
}

func (a *arena) valid(h handle, inst *Instance) bool {
	if h.slot < 0 || h.slot >= len(a.slots) {
		return false
	}
	s := a.slots[h.slot]
	return s.gen == h.gen && s.inst == inst
}

func (a *arena) release(h handle, inst *Instance) bool {
	if !a.valid(h, inst) {
		return false
	}
	for _, v := range inst.views {
		delete(a.owned, v)
	}
	a.slots[h.slot] = arenaSlot{gen: a.slots[h.slot].gen + 1}
	a.free = append(a.free, h.slot)
	a.live--
	return true
}
