package roam

// arena stores values in a contiguous slice addressed by index. Released
// slots are reused; every reuse bumps the slot generation so that stale
// references can be detected.
//
// Pointers returned by at are invalidated by alloc.
type arena[T any] struct {
	items []T
	gens  []uint32
	alive []bool
	free  []int32
	live  int
}

func (a *arena[T]) alloc() int32 {
	var id int32
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
		var zero T
		a.items[id] = zero
	} else {
		id = int32(len(a.items))
		a.items = append(a.items, *new(T))
		a.gens = append(a.gens, 0)
		a.alive = append(a.alive, false)
	}
	a.gens[id]++
	a.alive[id] = true
	a.live++
	return id
}

func (a *arena[T]) at(id int32) *T {
	return &a.items[id]
}

func (a *arena[T]) gen(id int32) uint32 {
	return a.gens[id]
}

func (a *arena[T]) isLive(id int32, gen uint32) bool {
	return id >= 0 && int(id) < len(a.items) && a.alive[id] && a.gens[id] == gen
}

func (a *arena[T]) release(id int32) {
	if !a.alive[id] {
		panic("roam: double release of arena slot")
	}
	var zero T
	a.items[id] = zero
	a.alive[id] = false
	a.free = append(a.free, id)
	a.live--
}

// each calls fn for every live slot.
func (a *arena[T]) each(fn func(id int32, v *T)) {
	for i := range a.items {
		if a.alive[i] {
			fn(int32(i), &a.items[i])
		}
	}
}

func (a *arena[T]) reset() {
	a.items = nil
	a.gens = nil
	a.alive = nil
	a.free = nil
	a.live = 0
}
