package items

import (
	"errors"
	"strconv"
	"strings"
)

// CleanPrice keeps only digits and decimal points.
func CleanPrice(raw string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
}

func digitsOnly(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// ParsePrice cleans raw and reads the longest leading decimal number from
// it. "1.234.5" reads as 1.234; "." and "" do not parse.
func ParsePrice(raw string) (float64, bool) {
	return parseLeadingFloat(CleanPrice(raw))
}

func parseLeadingFloat(s string) (float64, bool) {
	end := 0
	digits := 0
	dot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
		end++
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if errors.Is(err, strconv.ErrRange) {
		// ParseFloat hands back +Inf on overflow; keep it so it sorts last.
		return v, true
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

type candidate struct {
	key   GroupKey
	value float64
	index int
}

// pickCheapest returns, per input position, whether it holds the strict
// minimum of its group. Earlier candidates win ties.
func pickCheapest(n int, cands []candidate) []bool {
	best := make(map[GroupKey]candidate, len(cands))
	order := make([]GroupKey, 0, len(cands))
	for _, c := range cands {
		cur, ok := best[c.key]
		if !ok {
			best[c.key] = c
			order = append(order, c.key)
			continue
		}
		if c.value < cur.value {
			best[c.key] = c
		}
	}
	marked := make([]bool, n)
	for _, key := range order {
		marked[best[key].index] = true
	}
	return marked
}

// CheapestForDetail marks the minimum-price item of every
// (enhancement, package) group. Every item competes; a price that does not
// parse counts as zero.
func CheapestForDetail(list []Item) []bool {
	cands := make([]candidate, 0, len(list))
	for i, it := range list {
		value, ok := ParsePrice(it.Price)
		if !ok {
			value = 0
		}
		cands = append(cands, candidate{key: it.Key(), value: value, index: i})
	}
	return pickCheapest(len(list), cands)
}

// CheapestForImage marks group minimums for the image modal table. Items
// without an enhancement or a price are skipped, and prices that do not
// parse are left out of the comparison.
func CheapestForImage(list []Item) []bool {
	cands := make([]candidate, 0, len(list))
	for i, it := range list {
		if it.Enhancement == "" || it.Price == "" {
			continue
		}
		value, ok := ParsePrice(it.Price)
		if !ok {
			continue
		}
		cands = append(cands, candidate{key: it.Key(), value: value, index: i})
	}
	return pickCheapest(len(list), cands)
}

// RenderedRow is the text pulled back out of an already rendered table row.
type RenderedRow struct {
	Enhancement string
	Price       string
	Package     string
}

// IsPackage reports whether the package cell carries the package glyph.
func (r RenderedRow) IsPackage() bool {
	return strings.Contains(r.Package, PackageGlyph)
}

// CheapestForRendered marks group minimums among rendered rows. Prices keep
// digits only; rows with an empty enhancement or no digits are skipped.
func CheapestForRendered(rows []RenderedRow) []bool {
	cands := make([]candidate, 0, len(rows))
	for i, row := range rows {
		if row.Enhancement == "" {
			continue
		}
		value, ok := parseLeadingFloat(digitsOnly(row.Price))
		if !ok {
			continue
		}
		cands = append(cands, candidate{
			key:   GroupKey{Enhancement: row.Enhancement, Package: row.IsPackage()},
			value: value,
			index: i,
		})
	}
	return pickCheapest(len(rows), cands)
}

// DetailRowClass is the row class used by the detail table and the
// rendered-table pass.
func DetailRowClass(cheapest, pkg bool) string {
	switch {
	case !cheapest:
		return ""
	case pkg:
		return ClassCheapestPackage
	default:
		return ClassCheapest
	}
}
