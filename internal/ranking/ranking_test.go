package ranking

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

type entry struct {
	id      string
	rank    int
	created time.Time
}

func (e *entry) Key() string { return e.id }
func (e *entry) GetRank() int { return e.rank }
func (e *entry) SetRank(rank int) { e.rank = rank }
func (e *entry) Created() time.Time { return e.created }

func collectionOf(ranks ...int) []*entry {
	base := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)
	out := make([]*entry, len(ranks))
	for i, r := range ranks {
		out[i] = &entry{id: fmt.Sprint(i + 1), rank: r, created: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func ranksOf(c []*entry) map[string]int {
	out := make(map[string]int, len(c))
	for _, e := range c {
		out[e.id] = e.rank
	}
	return out
}

func order(c []*entry) string {
	sorted := append([]*entry(nil), c...)
	Sort(sorted)
	s := ""
	for i, e := range sorted {
		if i > 0 {
			s += ","
		}
		s += e.id
	}
	return s
}

func TestNextRank(t *testing.T) {
	tests := []struct {
		name  string
		ranks []int
		want  int
	}{
		{"empty", nil, 1},
		{"single", []int{1}, 2},
		{"contiguous", []int{1, 2, 3}, 4},
		{"gaps", []int{2, 9, 4}, 10},
		{"zero based", []int{0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRank(collectionOf(tt.ranks...)); got != tt.want {
				t.Errorf("NextRank = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextRank_SequentialInserts(t *testing.T) {
	var c []*entry
	if got := NextRank(c); got != 1 {
		t.Fatalf("first NextRank = %d, want 1", got)
	}
	c = append(c, &entry{id: "a", rank: NextRank(c)})
	if c[0].rank != 1 {
		t.Errorf("first insert rank = %d, want 1", c[0].rank)
	}
	if got := NextRank(c); got != 2 {
		t.Errorf("second NextRank = %d, want 2", got)
	}
}

func TestMoveUp_LastOfThree(t *testing.T) {
	c := collectionOf(1, 2, 3)
	changed := MoveUp(c, "3")
	if len(changed) != 2 {
		t.Fatalf("changed = %d records, want 2", len(changed))
	}
	want := map[string]int{"1": 1, "2": 3, "3": 2}
	for id, r := range ranksOf(c) {
		if want[id] != r {
			t.Errorf("rank[%s] = %d, want %d", id, r, want[id])
		}
	}
	if got := order(c); got != "1,3,2" {
		t.Errorf("order = %s, want 1,3,2", got)
	}
}

func TestMoveDown_SwapsWithSuccessor(t *testing.T) {
	c := collectionOf(1, 5, 9)
	MoveDown(c, "1")
	if c[0].rank != 5 || c[1].rank != 1 || c[2].rank != 9 {
		t.Errorf("ranks = %v", ranksOf(c))
	}
	if got := order(c); got != "2,1,3" {
		t.Errorf("order = %s, want 2,1,3", got)
	}
}

func TestMove_Boundaries(t *testing.T) {
	c := collectionOf(1, 2, 3)
	if changed := MoveUp(c, "1"); changed != nil {
		t.Errorf("MoveUp(first) changed %d records", len(changed))
	}
	if changed := MoveDown(c, "3"); changed != nil {
		t.Errorf("MoveDown(last) changed %d records", len(changed))
	}
	if got := order(c); got != "1,2,3" {
		t.Errorf("order = %s, want unchanged", got)
	}
}

func TestMove_UnknownKeyIsNoop(t *testing.T) {
	c := collectionOf(1, 2)
	if Move(c, "gone", Up) != nil || Move(c, "gone", Down) != nil {
		t.Error("moving a missing key should be a no-op")
	}
	if Move(c, "2", Direction("sideways")) != nil {
		t.Error("unknown direction should be a no-op")
	}
	if got := ranksOf(c); got["1"] != 1 || got["2"] != 2 {
		t.Errorf("ranks changed: %v", got)
	}
}

func TestMove_EmptyCollection(t *testing.T) {
	if MoveUp([]*entry{}, "x") != nil || MoveDown([]*entry{}, "x") != nil {
		t.Error("empty collection should be a no-op")
	}
}

func TestSort_TiesAreDeterministic(t *testing.T) {
	base := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)
	c := []*entry{
		{id: "b", rank: 2, created: base},
		{id: "a", rank: 2, created: base},
		{id: "c", rank: 2, created: base.Add(-time.Hour)},
		{id: "d", rank: 1, created: base.Add(time.Hour)},
	}
	Sort(c)
	got := ""
	for _, e := range c {
		got += e.id
	}
	if got != "dcab" {
		t.Errorf("order = %s, want dcab", got)
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down"} {
		if d, err := ParseDirection(s); err != nil || string(d) != s {
			t.Errorf("ParseDirection(%q) = %q, %v", s, d, err)
		}
	}
	if _, err := ParseDirection("left"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

// =============================================================================
// Properties
// =============================================================================

// distinctRanks draws a sorted collection with distinct, possibly gapped ranks.
func distinctRanks(t *rapid.T) []*entry {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	ranks := make([]int, n)
	next := rapid.IntRange(0, 3).Draw(t, "start")
	for i := range ranks {
		ranks[i] = next
		next += rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("gap%d", i))
	}
	return collectionOf(ranks...)
}

func testBoundaryMoves_Properties(t *rapid.T) {
	c := distinctRanks(t)
	before := ranksOf(c)

	MoveUp(c, c[0].id)
	MoveDown(c, c[len(c)-1].id)

	for id, r := range ranksOf(c) {
		if before[id] != r {
			t.Fatalf("rank[%s] changed from %d to %d", id, before[id], r)
		}
	}
}

func TestBoundaryMoves_Properties(t *testing.T) {
	rapid.Check(t, testBoundaryMoves_Properties)
}

func testAdjacentSwap_Properties(t *rapid.T) {
	c := distinctRanks(t)
	if len(c) < 2 {
		return
	}
	i := rapid.IntRange(0, len(c)-2).Draw(t, "i")
	a, b := c[i], c[i+1]
	before := ranksOf(c)

	MoveDown(c, a.id)

	if a.rank != before[b.id] || b.rank != before[a.id] {
		t.Fatalf("swap failed: a=%d b=%d, before a=%d b=%d", a.rank, b.rank, before[a.id], before[b.id])
	}
	for id, r := range ranksOf(c) {
		if id != a.id && id != b.id && before[id] != r {
			t.Fatalf("bystander %s changed from %d to %d", id, before[id], r)
		}
	}
}

func TestAdjacentSwap_Properties(t *testing.T) {
	rapid.Check(t, testAdjacentSwap_Properties)
}

func testRoundTrip_Properties(t *rapid.T) {
	c := distinctRanks(t)
	target := c[rapid.IntRange(0, len(c)-1).Draw(t, "target")].id
	first := rapid.SampledFrom([]Direction{Up, Down}).Draw(t, "first")
	before := ranksOf(c)

	if Move(c, target, first) == nil {
		return
	}
	Sort(c)
	back := Down
	if first == Down {
		back = Up
	}
	Move(c, target, back)

	for id, r := range ranksOf(c) {
		if before[id] != r {
			t.Fatalf("round trip changed rank[%s] from %d to %d", id, before[id], r)
		}
	}
}

func TestRoundTrip_Properties(t *testing.T) {
	rapid.Check(t, testRoundTrip_Properties)
}

func FuzzRoundTrip_Properties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testRoundTrip_Properties))
}

func testNextRank_Properties(t *rapid.T) {
	c := distinctRanks(t)
	shuffled := rapid.Permutation(c).Draw(t, "shuffled")
	top := c[len(c)-1].rank
	if got := NextRank(shuffled); got != top+1 {
		t.Fatalf("NextRank = %d, want %d", got, top+1)
	}
}

func TestNextRank_Properties(t *testing.T) {
	rapid.Check(t, testNextRank_Properties)
}
