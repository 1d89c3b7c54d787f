package transcript

import (
	"cmp"
	"slices"
)

// Selection is the part of a transcript chosen to fit a byte budget.
type Selection struct {
	Fragments []Fragment
	// Oversized reports that not even the first fragment fits, so the whole
	// transcript was returned unchanged and the prompt will exceed the budget.
	Oversized bool
}

func (s Selection) Text() string {
	return Join(s.Fragments)
}

// Chunk picks an index-ordered subset of fragments whose joined text fits in
// budget bytes.
//
// The set is thinned by keeping every 2nd, 4th, 8th... fragment until the
// skeleton fits. The skeleton is then backfilled in index order with the
// dropped fragments that still fit; at the first one that does not, the
// leading part of the following unselected fragment fills the remaining room.
func Chunk(fragments []Fragment, budget int) Selection {
	all := Sort(fragments)
	if len(all) == 0 {
		return Selection{}
	}
	if joinedLen(all) <= budget {
		return Selection{Fragments: all}
	}

	var skeleton []Fragment
	for stride := 2; ; stride *= 2 {
		candidate := everyNth(all, stride)
		if joinedLen(candidate) <= budget {
			skeleton = candidate
			break
		}
		if len(candidate) == 1 {
			return Selection{Fragments: all, Oversized: true}
		}
	}

	selected := backfill(all, skeleton, budget)
	if len(selected) == 0 {
		return Selection{Fragments: all}
	}
	return Selection{Fragments: selected}
}

func everyNth(all []Fragment, stride int) []Fragment {
	out := make([]Fragment, 0, (len(all)+stride-1)/stride)
	for i := 0; i < len(all); i += stride {
		out = append(out, all[i])
	}
	return out
}

func backfill(all, skeleton []Fragment, budget int) []Fragment {
	selected := slices.Clone(skeleton)
	picked := make(map[int]bool, len(all))
	for _, f := range skeleton {
		picked[f.Index] = true
	}
	total := joinedLen(selected)

	for i, f := range all {
		if picked[f.Index] {
			continue
		}
		newTotal := total + len(separator) + ByteLen(f.Text)
		if newTotal <= budget {
			selected = insertByIndex(selected, f)
			picked[f.Index] = true
			total = newTotal
			continue
		}
		if next, ok := nextUnpicked(all, i+1, picked); ok {
			if partial, ok := partialFragment(next, total, newTotal, budget); ok {
				selected = insertByIndex(selected, partial)
			}
		}
		break
	}
	return selected
}

func nextUnpicked(all []Fragment, from int, picked map[int]bool) (Fragment, bool) {
	for _, f := range all[from:] {
		if !picked[f.Index] {
			return f, true
		}
	}
	return Fragment{}, false
}

// partialFragment cuts next proportionally to how far the rejected fragment
// overflowed, then clamps the cut to the bytes still free.
func partialFragment(next Fragment, total, newTotal, budget int) (Fragment, bool) {
	nextBytes := ByteLen(next.Text)
	room := budget - total - len(separator)
	if nextBytes == 0 || room <= 0 {
		return Fragment{}, false
	}
	overflow := float64(newTotal+nextBytes-budget) / float64(nextBytes)
	if overflow > 1 {
		overflow = 1
	}
	runes := []rune(next.Text)
	text := prefixWithin(next.Text, int(float64(len(runes))*overflow), room)
	if text == "" {
		return Fragment{}, false
	}
	return Fragment{Text: text, Index: next.Index}, true
}

func insertByIndex(fragments []Fragment, f Fragment) []Fragment {
	at, _ := slices.BinarySearchFunc(fragments, f.Index, func(e Fragment, index int) int {
		return cmp.Compare(e.Index, index)
	})
	return slices.Insert(fragments, at, f)
}
