package items

import (
	"math"
	"strings"
	"testing"
)

func markedIndexes(marks []bool) []int {
	out := make([]int, 0)
	for i, m := range marks {
		if m {
			out = append(out, i)
		}
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1 200", 1200, true},
		{"$3.50", 3.5, true},
		{"1.2.3", 1.2, true},
		{"abc", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePrice(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParsePrice(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCheapestForDetail_OnePerGroup(t *testing.T) {
	t.Parallel()

	list := []Item{
		{Enhancement: "+1", Price: "500"},
		{Enhancement: "+1", Price: "300"},
		{Enhancement: "+1", Price: "200", Package: true},
		{Enhancement: "+2", Price: "900"},
		{Enhancement: "+1", Price: "250", Package: true},
		{Enhancement: "", Price: "70"},
		{Enhancement: "", Price: "60"},
	}
	got := markedIndexes(CheapestForDetail(list))
	want := []int{1, 2, 3, 6}
	if !sameInts(got, want) {
		t.Fatalf("expected cheapest rows %v, got %v", want, got)
	}
}

func TestCheapestForDetail_TieKeepsFirst(t *testing.T) {
	t.Parallel()

	list := []Item{
		{Enhancement: "+3", Price: "1 000"},
		{Enhancement: "+3", Price: "1000"},
	}
	got := markedIndexes(CheapestForDetail(list))
	if !sameInts(got, []int{0}) {
		t.Fatalf("expected first item to win tie, got %v", got)
	}
}

func TestCheapestForDetail_UnparseablePriceCountsAsZero(t *testing.T) {
	t.Parallel()

	list := []Item{
		{Enhancement: "+1", Price: "100"},
		{Enhancement: "+1", Price: "n/a"},
		{Enhancement: "+1", Price: ""},
	}
	got := markedIndexes(CheapestForDetail(list))
	if !sameInts(got, []int{1}) {
		t.Fatalf("expected malformed price to win as zero, got %v", got)
	}
}

func TestCheapestForImage_ExcludesUnparseableAndBlank(t *testing.T) {
	t.Parallel()

	list := []Item{
		{Enhancement: "+1", Price: "100"},
		{Enhancement: "+1", Price: "n/a"},
		{Enhancement: "", Price: "1"},
		{Enhancement: "+2", Price: ""},
		{Enhancement: "+1", Price: "90", Package: true},
	}
	got := markedIndexes(CheapestForImage(list))
	if !sameInts(got, []int{0, 4}) {
		t.Fatalf("expected rows [0 4], got %v", got)
	}
}

func TestCheapest_OverflowingPriceIsHighest(t *testing.T) {
	t.Parallel()

	huge := "1" + strings.Repeat("0", 320)
	if v, ok := ParsePrice(huge); !ok || !math.IsInf(v, 1) {
		t.Fatalf("ParsePrice(huge) = (%v, %v), want (+Inf, true)", v, ok)
	}

	list := []Item{
		{Enhancement: "+1", Price: "5"},
		{Enhancement: "+1", Price: huge},
	}
	if got := markedIndexes(CheapestForDetail(list)); !sameInts(got, []int{0}) {
		t.Fatalf("expected the finite price to win, got %v", got)
	}

	lone := CheapestForImage([]Item{{Enhancement: "+1", Price: huge}})
	if len(lone) != 1 || !lone[0] {
		t.Fatalf("expected a lone overflowing price to be marked, got %v", lone)
	}
}

func TestCheapestForRendered_DigitsOnly(t *testing.T) {
	t.Parallel()

	rows := []RenderedRow{
		{Enhancement: "+1", Price: "1 500", Package: "❌"},
		{Enhancement: "+1", Price: "1 200", Package: "❌"},
		{Enhancement: "+1", Price: "9.99", Package: "✔️"},
		{Enhancement: "+1", Price: "-", Package: "❌"},
		{Enhancement: "", Price: "1", Package: "❌"},
	}
	got := markedIndexes(CheapestForRendered(rows))
	if !sameInts(got, []int{1, 2}) {
		t.Fatalf("expected rows [1 2], got %v", got)
	}
}

func TestDetailRowClass(t *testing.T) {
	t.Parallel()

	if DetailRowClass(false, true) != "" {
		t.Fatalf("expected no class for non-cheapest row")
	}
	if DetailRowClass(true, true) != ClassCheapestPackage {
		t.Fatalf("expected package class")
	}
	if DetailRowClass(true, false) != ClassCheapest {
		t.Fatalf("expected plain cheapest class")
	}
}
