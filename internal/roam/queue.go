package roam

import (
	"container/heap"
)

// queue is an indexed binary heap of arena IDs keyed by float64 priority.
// Each ID is present at most once; its key can be changed in place.
// A max queue pops the largest key first, a min queue the smallest.
type queue struct {
	max  bool
	ids  []int32
	pos  map[int32]int
	keys map[int32]float64
	gens map[int32]uint32
}

func newQueue(max bool) *queue {
	return &queue{
		max:  max,
		pos:  make(map[int32]int),
		keys: make(map[int32]float64),
		gens: make(map[int32]uint32),
	}
}

// heap.Interface

func (q *queue) Len() int { return len(q.ids) }

func (q *queue) Less(i, j int) bool {
	a, b := q.keys[q.ids[i]], q.keys[q.ids[j]]
	if q.max {
		return a > b
	}
	return a < b
}

func (q *queue) Swap(i, j int) {
	q.ids[i], q.ids[j] = q.ids[j], q.ids[i]
	q.pos[q.ids[i]] = i
	q.pos[q.ids[j]] = j
}

func (q *queue) Push(x interface{}) {
	id := x.(int32)
	q.pos[id] = len(q.ids)
	q.ids = append(q.ids, id)
}

func (q *queue) Pop() interface{} {
	n := len(q.ids)
	id := q.ids[n-1]
	q.ids = q.ids[:n-1]
	delete(q.pos, id)
	return id
}

// insert adds id with the given key. gen records the arena generation of id
// at insertion time. Inserting an ID already present only updates its key.
func (q *queue) insert(id int32, key float64, gen uint32) {
	if _, ok := q.pos[id]; ok {
		q.gens[id] = gen
		q.update(id, key)
		return
	}
	q.keys[id] = key
	q.gens[id] = gen
	heap.Push(q, id)
}

// update changes the key of id. It is a no-op if id is not queued.
func (q *queue) update(id int32, key float64) {
	i, ok := q.pos[id]
	if !ok {
		return
	}
	q.keys[id] = key
	heap.Fix(q, i)
}

func (q *queue) remove(id int32) bool {
	i, ok := q.pos[id]
	if !ok {
		return false
	}
	heap.Remove(q, i)
	delete(q.keys, id)
	delete(q.gens, id)
	return true
}

func (q *queue) contains(id int32) bool {
	_, ok := q.pos[id]
	return ok
}

func (q *queue) key(id int32) (float64, bool) {
	k, ok := q.keys[id]
	return k, ok
}

// peek returns the head of the queue without removing it.
func (q *queue) peek() (id int32, key float64, gen uint32, ok bool) {
	if len(q.ids) == 0 {
		return 0, 0, 0, false
	}
	id = q.ids[0]
	return id, q.keys[id], q.gens[id], true
}

// snapshot returns the queued IDs in heap order.
func (q *queue) snapshot() []int32 {
	out := make([]int32, len(q.ids))
	copy(out, q.ids)
	return out
}

func (q *queue) reset() {
	q.ids = nil
	q.pos = make(map[int32]int)
	q.keys = make(map[int32]float64)
	q.gens = make(map[int32]uint32)
}
