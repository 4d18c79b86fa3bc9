package roam

import (
	"fmt"

	"go.uber.org/zap"
)

// diamond pairs the two triangles that were split together across their
// shared base edge.
type diamond struct {
	tris [2]triID
}

func (s *Sphere) dia(id diamondID) *diamond {
	return s.dias.at(int32(id))
}

// mergeable reports whether both parents are internal and all four kids are
// leaves.
func (s *Sphere) mergeable(id diamondID) bool {
	for _, p := range s.dia(id).tris {
		t := s.tri(p)
		if t.leaf() {
			return false
		}
		for _, k := range t.kids {
			if !s.tri(k).leaf() {
				return false
			}
		}
	}
	return true
}

func (s *Sphere) enqueueLeaf(id triID) {
	s.splitQ.insert(int32(id), s.triError(id), s.tris.gen(int32(id)))
}

// activate puts a diamond into the merge queue once it becomes mergeable.
func (s *Sphere) activate(id diamondID) {
	if id == none || s.mergeQ.contains(int32(id)) || !s.mergeable(id) {
		return
	}
	s.mergeQ.insert(int32(id), s.diamondError(id), s.dias.gen(int32(id)))
}

func (s *Sphere) deactivate(id diamondID) {
	if id == none {
		return
	}
	s.mergeQ.remove(int32(id))
}

// parentDiamond returns the diamond the parent of id belongs to.
func (s *Sphere) parentDiamond(id triID) diamondID {
	p := s.tri(id).parent
	if p == none {
		return none
	}
	return s.tri(p).dia
}

// split divides a leaf and its base neighbor. A coarser base neighbor is
// split first so that both sides of the shared edge end up at the same
// depth.
func (s *Sphere) split(id triID) {
	if !s.tri(id).leaf() {
		panic(fmt.Sprintf("roam: split of internal triangle %d", id))
	}
	b := s.tri(id).t[nBase]
	if s.tri(b).t[nBase] != id {
		if s.tri(b).depth >= s.tri(id).depth {
			panic(fmt.Sprintf("roam: base neighbor %d of %d is not coarser", b, id))
		}
		s.split(b)
		b = s.tri(id).t[nBase]
	}
	if bt := s.tri(b); bt.t[nBase] != id || !bt.leaf() {
		panic(fmt.Sprintf("roam: %d and %d do not form a diamond", id, b))
	}
	s.splitDiamond(id, b)
}

// splitCost returns the number of leaves splitting id would add, counting
// the forced splits of coarser base neighbors.
func (s *Sphere) splitCost(id triID) int {
	cost := 0
	for cur := id; ; {
		cost += 2
		b := s.tri(cur).t[nBase]
		if s.tri(b).t[nBase] == cur {
			return cost
		}
		cur = b
	}
}

// chainEnd returns the coarsest triangle on the forced split chain of id:
// the first one that forms a diamond with its base neighbor. Splitting it
// costs 2 leaves and brings id one step closer to its own split.
func (s *Sphere) chainEnd(id triID) triID {
	for cur := id; ; {
		b := s.tri(cur).t[nBase]
		if s.tri(b).t[nBase] == cur {
			return cur
		}
		cur = b
	}
}

func (s *Sphere) splitDiamond(t, b triID) {
	sp := s.splitPoint(t)
	if bt := s.tri(b); bt.split == none {
		bt.split = sp
		s.ref(sp)
	} else if bt.split != sp {
		panic(fmt.Sprintf("roam: diamond %d/%d has two split points", t, b))
	}

	var kids [2][2]triID
	for i, id := range [2]triID{t, b} {
		p := *s.tri(id)
		k0 := s.newTriangle(p.p[apex], sp, p.p[left], id, p.depth+1)
		k1 := s.newTriangle(p.p[right], sp, p.p[apex], id, p.depth+1)
		s.tri(k0).t = [3]triID{k1, p.t[nLeft], none}
		s.tri(k1).t = [3]triID{none, p.t[nRight], k0}
		s.replaceNeighbor(p.t[nLeft], id, k0)
		s.replaceNeighbor(p.t[nRight], id, k1)
		s.tri(id).kids = [2]triID{k0, k1}
		kids[i] = [2]triID{k0, k1}
	}
	// The left kid of one side meets the right kid of the other along the
	// split edges.
	s.tri(kids[0][0]).t[nRight] = kids[1][1]
	s.tri(kids[1][1]).t[nLeft] = kids[0][0]
	s.tri(kids[0][1]).t[nLeft] = kids[1][0]
	s.tri(kids[1][0]).t[nRight] = kids[0][1]

	s.splitQ.remove(int32(t))
	s.splitQ.remove(int32(b))
	s.deactivate(s.parentDiamond(t))
	s.deactivate(s.parentDiamond(b))

	d := diamondID(s.dias.alloc())
	s.dia(d).tris = [2]triID{t, b}
	s.tri(t).dia = d
	s.tri(b).dia = d

	for _, pair := range kids {
		for _, k := range pair {
			s.enqueueLeaf(k)
		}
	}
	s.activate(d)
	s.leaves += 2
	s.splits++
}

// merge collapses a diamond back into its two parents. The shared split
// point is released with the kids and recreated lazily, bound to whichever
// source covers it then.
func (s *Sphere) merge(id diamondID) {
	if !s.mergeable(id) {
		panic(fmt.Sprintf("roam: diamond %d is not mergeable", id))
	}
	parents := s.dia(id).tris
	for _, pid := range parents {
		p := s.tri(pid)
		k0, k1 := p.kids[0], p.kids[1]
		tl := s.tri(k0).t[nBase]
		tr := s.tri(k1).t[nBase]
		p.t[nLeft], p.t[nRight] = tl, tr
		p.kids = [2]triID{none, none}
		p.dia = none
		s.replaceNeighbor(tl, k0, pid)
		s.replaceNeighbor(tr, k1, pid)
		s.freeTriangle(k0)
		s.freeTriangle(k1)
		if sp := s.tri(pid).split; sp != none {
			s.tri(pid).split = none
			s.unref(sp)
		}
	}

	s.mergeQ.remove(int32(id))
	s.dias.release(int32(id))
	for _, pid := range parents {
		s.enqueueLeaf(pid)
	}
	for _, pid := range parents {
		s.activate(s.parentDiamond(pid))
	}
	s.leaves -= 2
	s.merges++
}

// peekLeaf returns the leaf with the largest error, dropping stale entries.
func (s *Sphere) peekLeaf() (triID, float64, bool) {
	for {
		id, key, gen, ok := s.splitQ.peek()
		if !ok {
			return none, 0, false
		}
		if s.tris.isLive(id, gen) && s.tri(triID(id)).leaf() {
			return triID(id), key, true
		}
		s.splitQ.remove(id)
		s.stale++
		s.log.Debug("dropped stale split candidate", zap.Int32("tri", id))
	}
}

// peekDiamond returns the mergeable diamond with the smallest error,
// dropping stale entries.
func (s *Sphere) peekDiamond() (diamondID, float64, bool) {
	for {
		id, key, gen, ok := s.mergeQ.peek()
		if !ok {
			return none, 0, false
		}
		if s.dias.isLive(id, gen) && s.mergeable(diamondID(id)) {
			return diamondID(id), key, true
		}
		s.mergeQ.remove(id)
		s.stale++
		s.log.Debug("dropped stale merge candidate", zap.Int32("diamond", id))
	}
}

// TickResult reports the work done by one SplitMerge call.
type TickResult struct {
	Splits int
	Merges int
	// Delta is the change in leaf count.
	Delta int
}

// Changed reports whether the mesh topology changed.
func (r TickResult) Changed() bool {
	return r.Splits > 0 || r.Merges > 0
}

// SplitMerge performs one bounded scheduler step. Leaves whose error exceeds
// the split threshold are split, largest error first; otherwise diamonds
// whose error is below the merge threshold are merged, smallest first. Each
// operation is charged the number of leaves it adds or removes, and the
// step stops once the budget cannot cover the next operation. A split whose
// forced chain costs more than the remaining budget is advanced from the
// coarse end of the chain instead, so any budget of 2 or more converges.
//
// When the leaf cap is reached a diamond that is cheaper than the worst
// leaf is merged to make room.
func (s *Sphere) SplitMerge() TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TickResult
	if s.closed || !s.hasView {
		return res
	}
	before := s.leaves
	budget := s.cfg.Budget
	for budget > 0 {
		leaf, splitErr, okLeaf := s.peekLeaf()
		wantSplit := okLeaf && splitErr > s.cfg.SplitThreshold &&
			s.tri(leaf).depth < s.cfg.MaxDepth
		if wantSplit {
			target, cost := leaf, s.splitCost(leaf)
			if cost > budget {
				// The head stays queued and finishes on a later step.
				target, cost = s.chainEnd(leaf), 2
			}
			if cost <= budget && s.leaves+cost <= s.cfg.MaxTriangles {
				s.split(target)
				budget -= cost
				res.Splits++
				continue
			}
		}

		d, mergeErr, okDia := s.peekDiamond()
		if !okDia || budget < 2 {
			break
		}
		atCap := wantSplit && s.leaves+s.splitCost(leaf) > s.cfg.MaxTriangles
		if mergeErr < s.cfg.MergeThreshold || (atCap && mergeErr < splitErr) {
			s.merge(d)
			budget -= 2
			res.Merges++
			continue
		}
		break
	}
	res.Delta = s.leaves - before
	if res.Changed() {
		s.log.Debug("split/merge tick",
			zap.Int("splits", res.Splits),
			zap.Int("merges", res.Merges),
			zap.Int("leaves", s.leaves))
	}
	return res
}

// SplitOne splits the leaf with the largest error regardless of
// thresholds. It reports false when no leaf can be split.
func (s *Sphere) SplitOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	leaf, _, ok := s.peekLeaf()
	if !ok || s.tri(leaf).depth >= s.cfg.MaxDepth {
		return false
	}
	s.split(leaf)
	return true
}

// MergeOne merges the diamond with the smallest error regardless of
// thresholds. It reports false when nothing is mergeable.
func (s *Sphere) MergeOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	d, _, ok := s.peekDiamond()
	if !ok {
		return false
	}
	s.merge(d)
	return true
}
