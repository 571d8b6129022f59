// Package pagerange parses and formats page-range expressions such as
// "1,3,5-7" into sorted, deduplicated page number lists.
package pagerange

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrFormat reports a token that is neither a page number nor a range.
type ErrFormat struct {
	Token string
}

func (e *ErrFormat) Error() string {
	return fmt.Sprintf("invalid page token: %q", e.Token)
}

// ErrRange reports an inverted range such as "5-3".
type ErrRange struct {
	Start, End int
}

func (e *ErrRange) Error() string {
	return fmt.Sprintf("invalid range: %d-%d (start greater than end)", e.Start, e.End)
}

var (
	numberPattern = regexp.MustCompile(`^\d+$`)
	rangePattern  = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// Parse converts a comma-separated page-range expression into a sorted slice
// of distinct page numbers. Each token is either a single number or an
// inclusive range "A-B". Empty tokens (stray commas, whitespace) are skipped.
// Callers rely on the sorted, unique output for deterministic export order.
func Parse(expr string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if m := rangePattern.FindStringSubmatch(token); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			if start > end {
				return nil, &ErrRange{Start: start, End: end}
			}
			for p := start; p <= end; p++ {
				seen[p] = struct{}{}
			}
		} else if numberPattern.MatchString(token) {
			p, _ := strconv.Atoi(token)
			seen[p] = struct{}{}
		} else {
			return nil, &ErrFormat{Token: token}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	return pages, nil
}

// Format renders a sorted page list back into an expression, collapsing
// consecutive runs into "A-B" tokens. Format(Parse(s)) is stable for any
// already-sorted unique input.
func Format(pages []int) string {
	if len(pages) == 0 {
		return ""
	}

	var tokens []string
	start, prev := pages[0], pages[0]

	flush := func() {
		switch {
		case start == prev:
			tokens = append(tokens, strconv.Itoa(start))
		case prev == start+1:
			tokens = append(tokens, strconv.Itoa(start), strconv.Itoa(prev))
		default:
			tokens = append(tokens, fmt.Sprintf("%d-%d", start, prev))
		}
	}

	for _, p := range pages[1:] {
		if p == prev+1 {
			prev = p
			continue
		}
		flush()
		start, prev = p, p
	}
	flush()

	return strings.Join(tokens, ",")
}
