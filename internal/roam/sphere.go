package roam

import (
	"sync"

	"go.uber.org/zap"
)

// Octahedron vertices as lat, lon.
var rootPoints = [6][2]float64{
	{90, 0},  // north pole
	{-90, 0}, // south pole
	{0, 0},   // equator, lon 0
	{0, 90},  // equator, lon 90E
	{0, 180}, // equator, lon 180
	{0, -90}, // equator, lon 90W
}

// Root triangles as left, apex, right corners and left, base, right
// neighbors. The four northern faces have their apex at the north pole and
// pair across the equator with the southern faces.
var rootTris = [8]struct {
	p [3]int
	t [3]int
}{
	{p: [3]int{2, 0, 3}, t: [3]int{3, 4, 1}},
	{p: [3]int{3, 0, 4}, t: [3]int{0, 5, 2}},
	{p: [3]int{4, 0, 5}, t: [3]int{1, 6, 3}},
	{p: [3]int{5, 0, 2}, t: [3]int{2, 7, 0}},
	{p: [3]int{3, 1, 2}, t: [3]int{5, 0, 7}},
	{p: [3]int{4, 1, 3}, t: [3]int{6, 1, 4}},
	{p: [3]int{5, 1, 4}, t: [3]int{7, 2, 5}},
	{p: [3]int{2, 1, 5}, t: [3]int{4, 3, 6}},
}

// Sphere is an adaptive triangle mesh covering the unit octahedron projected
// onto the planet surface.
type Sphere struct {
	mu  sync.Mutex
	cfg Config
	log *zap.Logger

	points arena[point]
	tris   arena[triangle]
	dias   arena[diamond]
	roots  [8]triID

	splitQ *queue // leaves, largest error first
	mergeQ *queue // mergeable diamonds, smallest error first

	// bindings are the height sources in the order they were bound.
	bindings []binding

	view    View
	hasView bool
	leaves  int
	closed  bool

	splits uint64
	merges uint64
	stale  uint64
}

// New builds the eight root triangles of the octahedron.
func New(cfg Config, opts ...Option) *Sphere {
	s := &Sphere{
		cfg:    cfg,
		log:    zap.NewNop(),
		splitQ: newQueue(true),
		mergeQ: newQueue(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.build()
	s.log.Debug("sphere created",
		zap.Int("leaves", s.leaves),
		zap.Int("max_depth", cfg.MaxDepth),
		zap.Int("budget", cfg.Budget))
	return s
}

func (s *Sphere) build() {
	var pts [6]pointID
	for i, ll := range rootPoints {
		pts[i] = s.newPoint(ll[0], ll[1], nil)
	}
	for i, rt := range rootTris {
		s.roots[i] = s.newTriangle(pts[rt.p[0]], pts[rt.p[1]], pts[rt.p[2]], none, 0)
	}
	for i, rt := range rootTris {
		t := s.tri(s.roots[i])
		for j, n := range rt.t {
			t.t[j] = s.roots[n]
		}
	}
	for _, id := range s.roots {
		s.enqueueLeaf(id)
	}
	s.leaves = len(s.roots)
}

// Close releases the whole tree. Later calls on the sphere are no-ops.
func (s *Sphere) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.points.reset()
	s.tris.reset()
	s.dias.reset()
	s.splitQ.reset()
	s.mergeQ.reset()
	s.bindings = nil
	s.leaves = 0
	s.log.Debug("sphere closed")
}

// Config returns the settings the sphere was created with.
func (s *Sphere) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Stats is a point-in-time summary of the mesh.
type Stats struct {
	Leaves    int
	Triangles int
	Points    int
	Diamonds  int
	Mergeable int
	MaxDepth  int

	// MaxSplitError is the error at the head of the split queue.
	MaxSplitError float64
	// MinMergeError is the error at the head of the merge queue, zero
	// when no diamond is mergeable.
	MinMergeError float64

	Splits uint64
	Merges uint64
	Stale  uint64
}

// Stats returns current counts and totals.
func (s *Sphere) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Leaves:    s.leaves,
		Triangles: s.tris.live,
		Points:    s.points.live,
		Diamonds:  s.dias.live,
		Mergeable: s.mergeQ.Len(),
		Splits:    s.splits,
		Merges:    s.merges,
		Stale:     s.stale,
	}
	if _, key, _, ok := s.splitQ.peek(); ok {
		st.MaxSplitError = key
	}
	if _, key, _, ok := s.mergeQ.peek(); ok {
		st.MinMergeError = key
	}
	s.tris.each(func(_ int32, t *triangle) {
		if t.leaf() && t.depth > st.MaxDepth {
			st.MaxDepth = t.depth
		}
	})
	return st
}
