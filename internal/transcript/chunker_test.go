package transcript

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestChunk_FitsWithoutChange(t *testing.T) {
	in := []Fragment{{Text: "world", Index: 1}, {Text: "hello", Index: 0}}
	got := Chunk(in, 100)
	if got.Oversized {
		t.Fatal("expected fitted selection")
	}
	if got.Text() != "hello world" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	got := Chunk(nil, 10)
	if len(got.Fragments) != 0 || got.Oversized {
		t.Fatalf("unexpected selection: %+v", got)
	}
}

func TestChunk_BackfillsUpToBudget(t *testing.T) {
	in := []Fragment{
		{Text: "CCC", Index: 2},
		{Text: "A", Index: 0},
		{Text: "BB", Index: 1},
	}
	got := Chunk(in, 4)
	if got.Oversized {
		t.Fatal("expected fitted selection")
	}
	if len(got.Fragments) != 2 || got.Fragments[0].Index != 0 || got.Fragments[1].Index != 1 {
		t.Fatalf("unexpected fragments: %+v", got.Fragments)
	}
	if n := ByteLen(got.Text()); n > 4 {
		t.Fatalf("selection exceeds budget: %d bytes", n)
	}
}

func TestChunk_PartialFragmentFillsRemainingRoom(t *testing.T) {
	in := []Fragment{
		{Text: "aaaa", Index: 0},
		{Text: "bbbb", Index: 1},
		{Text: "cccc", Index: 2},
		{Text: "dddd", Index: 3},
	}
	got := Chunk(in, 12)
	if got.Text() != "aaaa cccc dd" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
	last := got.Fragments[len(got.Fragments)-1]
	if last.Index != 3 || last.Text != "dd" {
		t.Fatalf("unexpected partial fragment: %+v", last)
	}
}

func TestChunk_CountsMultiByteCharacters(t *testing.T) {
	in := []Fragment{
		{Text: "日本", Index: 0},
		{Text: "語", Index: 1},
		{Text: "テスト", Index: 2},
	}
	got := Chunk(in, 10)
	if got.Text() != "日本 語" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
	if n := ByteLen(got.Text()); n != 10 {
		t.Fatalf("expected 10 bytes, got %d", n)
	}
}

func TestChunk_PartialNeverSplitsARune(t *testing.T) {
	in := []Fragment{
		{Text: "ab", Index: 0},
		{Text: "cdefghij", Index: 1},
		{Text: "日本語", Index: 2},
	}
	got := Chunk(in, 8)
	if got.Text() != "ab 日" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
}

func TestChunk_FirstFragmentTooLargeReturnsEverything(t *testing.T) {
	in := []Fragment{
		{Text: "toolongtext", Index: 0},
		{Text: "a", Index: 1},
		{Text: "b", Index: 2},
	}
	got := Chunk(in, 5)
	if !got.Oversized {
		t.Fatal("expected oversized selection")
	}
	if got.Text() != "toolongtext a b" {
		t.Fatalf("expected the unchunked transcript, got %q", got.Text())
	}
}

func TestChunk_MonotoneInBudget(t *testing.T) {
	in := make([]Fragment, 8)
	for i := range in {
		in[i] = Fragment{Text: "abcd", Index: i}
	}
	full := ByteLen(Join(in))

	prev := 0
	for budget := 4; budget <= full+5; budget++ {
		got := ByteLen(Chunk(in, budget).Text())
		if got < prev {
			t.Fatalf("budget %d selected %d bytes, less than %d at budget %d", budget, got, prev, budget-1)
		}
		if got > budget {
			t.Fatalf("budget %d exceeded: %d bytes", budget, got)
		}
		prev = got
	}
	if prev != full {
		t.Fatalf("expected full transcript at large budget, got %d of %d bytes", prev, full)
	}
}

func TestChunk_Properties(t *testing.T) {
	alphabet := []string{"a", "b", "é", "中", "語", "😀", "z"}
	r := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 300; round++ {
		n := 1 + r.IntN(30)
		in := make([]Fragment, 0, n)
		indices := r.Perm(n * 2)[:n]
		for _, idx := range indices {
			var b strings.Builder
			for k := r.IntN(12); k >= 0; k-- {
				b.WriteString(alphabet[r.IntN(len(alphabet))])
			}
			in = append(in, Fragment{Text: b.String(), Index: idx})
		}
		budget := r.IntN(200)

		got := Chunk(in, budget)
		sorted := Sort(in)
		if got.Oversized != (ByteLen(sorted[0].Text) > budget) {
			t.Fatalf("round %d: oversized=%v but first fragment is %d bytes for budget %d",
				round, got.Oversized, ByteLen(sorted[0].Text), budget)
		}
		if got.Oversized {
			if got.Text() != Join(sorted) {
				t.Fatalf("round %d: oversized selection is not the full transcript", round)
			}
			continue
		}
		if n := ByteLen(got.Text()); n > budget {
			t.Fatalf("round %d: %d bytes exceeds budget %d", round, n, budget)
		}

		known := make(map[int]bool, len(in))
		for _, f := range in {
			known[f.Index] = true
		}
		for i, f := range got.Fragments {
			if !known[f.Index] {
				t.Fatalf("round %d: unknown index %d", round, f.Index)
			}
			if i > 0 && got.Fragments[i-1].Index >= f.Index {
				t.Fatalf("round %d: fragments out of order: %+v", round, got.Fragments)
			}
		}
	}
}

func TestChunk_MonotoneInBudgetForMixedText(t *testing.T) {
	alphabet := []string{"a", "bc", "é", "中", "語", "😀", "xyz"}
	r := rand.New(rand.NewPCG(3, 5))

	for round := 0; round < 200; round++ {
		n := 1 + r.IntN(16)
		in := make([]Fragment, n)
		for i := range in {
			var b strings.Builder
			for k := r.IntN(10); k >= 0; k-- {
				b.WriteString(alphabet[r.IntN(len(alphabet))])
			}
			in[i] = Fragment{Text: b.String(), Index: i}
		}
		r.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })
		full := ByteLen(Join(Sort(in)))

		prev := -1
		for budget := 0; budget <= full+4; budget++ {
			got := Chunk(in, budget)
			if got.Oversized {
				continue
			}
			size := ByteLen(got.Text())
			if size < prev {
				t.Fatalf("round %d: budget %d selected %d bytes, fewer than %d at a smaller budget", round, budget, size, prev)
			}
			prev = size
		}
		if prev != full {
			t.Fatalf("round %d: expected the full transcript at large budget, got %d of %d bytes", round, prev, full)
		}
	}
}
