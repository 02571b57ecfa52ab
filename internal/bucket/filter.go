package bucket

import (
	"strings"
	"unicode/utf8"
)

// MinKeywordLength is the shortest keyword that triggers refiltering.
const MinKeywordLength = 3

// KeywordAction is what a keyword edit does to the active filtered grid.
type KeywordAction int

const (
	// KeywordReset restores the original grid.
	KeywordReset KeywordAction = iota
	// KeywordHold keeps the active filtered grid as it is.
	KeywordHold
	// KeywordRefilter derives a new filtered grid from the original.
	KeywordRefilter
)

func (a KeywordAction) String() string {
	switch a {
	case KeywordReset:
		return "reset"
	case KeywordHold:
		return "hold"
	case KeywordRefilter:
		return "refilter"
	default:
		return "unknown"
	}
}

// ClassifyKeyword returns the action for keyword, measured in characters:
// empty resets, 1 or 2 characters hold, MinKeywordLength or more refilter.
func ClassifyKeyword(keyword string) KeywordAction {
	switch n := utf8.RuneCountInString(keyword); {
	case n == 0:
		return KeywordReset
	case n < MinKeywordLength:
		return KeywordHold
	default:
		return KeywordRefilter
	}
}

// Filter derives a grid from original keeping, per cell, only the labels that contain
// keyword case-insensitively. The filtered cell's count is the number of matching
// labels, not the number of original events.
//
// An empty keyword returns original itself. Any other keyword, including one or two
// characters, yields a fresh grid of the same extent: Filter does not apply the
// keyword-length policy. Use Refine for keyword edits.
func Filter(original *Grid, keyword string) *Grid {
	if keyword == "" {
		return original
	}
	needle := strings.ToLower(keyword)

	g := newGrid(original.cameras, original.slots, original.days)
	for i, src := range original.cells {
		for label := range src.labels {
			if strings.Contains(strings.ToLower(label), needle) {
				g.cells[i].add(label)
			}
		}
	}
	return g
}

// Refine applies a keyword edit. It returns original for an empty keyword, active
// unchanged for a 1 or 2 character keyword (original when active is nil), and
// Filter(original, keyword) otherwise. It never filters from active.
func Refine(original, active *Grid, keyword string) *Grid {
	switch ClassifyKeyword(keyword) {
	case KeywordReset:
		return original
	case KeywordHold:
		if active == nil {
			return original
		}
		return active
	default:
		return Filter(original, keyword)
	}
}
