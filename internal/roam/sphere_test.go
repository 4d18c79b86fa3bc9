package roam

import (
	"fmt"
	gomath "math"
	"math/rand"
	"sort"
	"testing"

	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

func rad(deg float64) float64 { return deg * gomath.Pi / 180 }

// testView places a 800x600 camera above lat, lon tilted by rx degrees from
// straight down toward the north.
func testView(lat, lon, elev, rx float64) View {
	model := math.RotateX(rad(rx)).
		Mul(math.Translate(0, 0, -geo.ElevToRadius(elev))).
		Mul(math.RotateX(rad(lat))).
		Mul(math.RotateY(rad(-lon)))
	near := gomath.Max(elev*0.75-100000, 50)
	far := elev + 2*geo.EarthRadius
	proj := math.Perspective(2*gomath.Atan(300.0/2000.0), 800.0/600.0, near, far)
	return NewView(model, proj, math.Viewport{0, 0, 800, 600})
}

func mustCheck(t *testing.T, s *Sphere) {
	t.Helper()
	if err := s.Check(); err != nil {
		t.Fatalf("Check() = %v", err)
	}
}

func leafIDs(s *Sphere) []triID {
	var ids []triID
	s.tris.each(func(i int32, tr *triangle) {
		if tr.leaf() {
			ids = append(ids, triID(i))
		}
	})
	return ids
}

func mergeableIDs(s *Sphere) []diamondID {
	var ids []diamondID
	s.dias.each(func(i int32, _ *diamond) {
		if s.mergeable(diamondID(i)) {
			ids = append(ids, diamondID(i))
		}
	})
	return ids
}

// leafSet describes the leaves by their corner coordinates.
func leafSet(s *Sphere) []string {
	var out []string
	for _, f := range s.Leaves() {
		key := ""
		for _, c := range f.Corners {
			key += fmt.Sprintf("%.6f/%.6f;", c.Lat, c.Lon)
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func TestNewOctahedron(t *testing.T) {
	s := New(DefaultConfig())
	mustCheck(t, s)

	st := s.Stats()
	if st.Leaves != 8 || st.Triangles != 8 || st.Points != 6 {
		t.Errorf("Stats() = %+v, want 8 leaves, 8 triangles, 6 points", st)
	}
	if st.Diamonds != 0 || st.Mergeable != 0 {
		t.Errorf("fresh sphere has %d diamonds, %d mergeable", st.Diamonds, st.Mergeable)
	}

	for _, f := range s.Leaves() {
		c := f.Corners[0].Pos.Add(f.Corners[1].Pos).Add(f.Corners[2].Pos)
		if f.Normal().Dot(c) <= 0 {
			t.Errorf("root facet %+v faces inward", f.Corners)
		}
		if f.Depth != 0 {
			t.Errorf("root depth = %d", f.Depth)
		}
	}
}

func TestSplitSharesPointWithPartner(t *testing.T) {
	s := New(DefaultConfig())
	root := s.roots[0]
	partner := s.tri(root).t[nBase]

	s.split(root)
	mustCheck(t, s)

	if s.tri(root).split != s.tri(partner).split {
		t.Error("diamond parents have different split points")
	}
	if s.leaves != 10 {
		t.Errorf("leaves = %d, want 10", s.leaves)
	}
	// Root base edge runs along the equator from lon 0 to lon 90.
	sp := s.pt(s.tri(root).split)
	if gomath.Abs(sp.lat) > 1e-9 || gomath.Abs(sp.lon-45) > 1e-9 {
		t.Errorf("split point at %v,%v, want 0,45", sp.lat, sp.lon)
	}
}

func TestForcedSplitOfCoarserNeighbor(t *testing.T) {
	s := New(DefaultConfig())
	s.split(s.roots[0])

	// The left kid's base edge is shared with root 3, which is still a leaf
	// one level up.
	k0 := s.tri(s.roots[0]).kids[0]
	if got := s.splitCost(k0); got != 4 {
		t.Errorf("splitCost = %d, want 4", got)
	}
	s.split(k0)
	mustCheck(t, s)

	if s.tri(s.roots[3]).leaf() {
		t.Error("coarser base neighbor was not split")
	}
	if s.leaves != 14 {
		t.Errorf("leaves = %d, want 14", s.leaves)
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	s := New(DefaultConfig())
	s.split(s.roots[2])
	s.split(s.tri(s.roots[2]).kids[1])
	mustCheck(t, s)

	before := leafSet(s)
	pointsBefore := s.points.live

	target := triID(none)
	for _, id := range leafIDs(s) {
		if s.splitCost(id) == 2 {
			target = id
			break
		}
	}
	if target == none {
		t.Fatal("no leaf splits without forcing")
	}
	s.split(target)
	mustCheck(t, s)
	d := s.tri(target).dia
	s.merge(d)
	mustCheck(t, s)

	after := leafSet(s)
	if len(after) != len(before) {
		t.Fatalf("leaf count %d after round trip, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("leaf set changed after split/merge round trip")
		}
	}
	if s.points.live != pointsBefore {
		t.Errorf("points = %d after round trip, want %d", s.points.live, pointsBefore)
	}
}

func TestRandomSplitsAndMergesStayConforming(t *testing.T) {
	s := New(DefaultConfig())
	rng := rand.New(rand.NewSource(7))

	for step := 0; step < 400; step++ {
		if rng.Intn(3) > 0 {
			ids := leafIDs(s)
			id := ids[rng.Intn(len(ids))]
			if s.tri(id).depth < 12 {
				s.split(id)
			}
		} else if ds := mergeableIDs(s); len(ds) > 0 {
			s.merge(ds[rng.Intn(len(ds))])
		}
		if step%20 == 0 {
			mustCheck(t, s)
		}
	}
	mustCheck(t, s)

	// Merge everything back down to the octahedron.
	for s.MergeOne() {
	}
	mustCheck(t, s)
	st := s.Stats()
	if st.Leaves != 8 || st.Points != 6 || st.Diamonds != 0 {
		t.Errorf("after merging everything: %+v", st)
	}
}

func TestSplitInternalPanics(t *testing.T) {
	s := New(DefaultConfig())
	s.split(s.roots[0])

	defer func() {
		if recover() == nil {
			t.Error("split of an internal triangle did not panic")
		}
	}()
	s.split(s.roots[0])
}

func TestMergeNonMergeablePanics(t *testing.T) {
	s := New(DefaultConfig())
	s.split(s.roots[0])
	d := s.tri(s.roots[0]).dia
	// Splitting a kid makes the diamond non-mergeable.
	s.split(s.tri(s.roots[0]).kids[0])

	defer func() {
		if recover() == nil {
			t.Error("merge of a non-mergeable diamond did not panic")
		}
	}()
	s.merge(d)
}

func TestClose(t *testing.T) {
	s := New(DefaultConfig())
	s.SetView(testView(0, 0, 1000, -60))
	s.SplitMerge()
	s.Close()

	if got := s.Leaves(); got != nil {
		t.Errorf("Leaves() after Close = %d facets", len(got))
	}
	if res := s.SplitMerge(); res.Changed() {
		t.Error("SplitMerge changed a closed sphere")
	}
	if s.SplitOne() || s.MergeOne() {
		t.Error("single step changed a closed sphere")
	}
	s.Close()
}
