package transcript

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

const separator = " "

type Fragment struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Sort returns a copy ordered by Index. Duplicate indices keep their first occurrence.
func Sort(fragments []Fragment) []Fragment {
	sorted := slices.Clone(fragments)
	slices.SortStableFunc(sorted, func(a, b Fragment) int {
		return cmp.Compare(a.Index, b.Index)
	})
	out := sorted[:0]
	for _, f := range sorted {
		if len(out) > 0 && out[len(out)-1].Index == f.Index {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Join renders fragments the way they are placed into a prompt.
func Join(fragments []Fragment) string {
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
	}
	return strings.Join(texts, separator)
}

// ByteLen is the UTF-8 encoded size of s, which is what the provider counts.
func ByteLen(s string) int {
	return len(s)
}

func joinedLen(fragments []Fragment) int {
	if len(fragments) == 0 {
		return 0
	}
	total := len(separator) * (len(fragments) - 1)
	for _, f := range fragments {
		total += ByteLen(f.Text)
	}
	return total
}

// Truncate shortens s to roughly budget bytes by keeping the same share of
// runes as budget/ByteLen(s). The cut is proportional, not exact: text whose
// head is denser than its tail (e.g. CJK followed by ASCII) can overshoot.
func Truncate(s string, budget int) string {
	size := ByteLen(s)
	if size <= budget {
		return s
	}
	if budget <= 0 {
		return ""
	}
	keep := int(float64(utf8.RuneCountInString(s)) * float64(budget) / float64(size))
	return prefixWithin(s, keep, size)
}

// prefixWithin returns the longest prefix of s with at most maxRunes runes
// and at most maxBytes bytes. It never splits an encoded rune.
func prefixWithin(s string, maxRunes, maxBytes int) string {
	cut := 0
	for runes := 0; runes < maxRunes && cut < len(s); runes++ {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > maxBytes {
			break
		}
		cut += size
	}
	return s[:cut]
}
