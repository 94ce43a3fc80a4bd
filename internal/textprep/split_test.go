package textprep

import "testing"

func TestSplitSentencesBasic(t *testing.T) {
	got := SplitSentences("Hello world. How are you? I am fine!")
	want := []string{"Hello world.", "How are you?", "I am fine!"}
	assertEqualSlices(t, got, want)
}

func TestSplitSentencesParagraphBreak(t *testing.T) {
	got := SplitSentences("First paragraph.\n\nSecond paragraph.")
	want := []string{"First paragraph.", "Second paragraph."}
	assertEqualSlices(t, got, want)
}

func TestSplitSentencesSingle(t *testing.T) {
	got := SplitSentences("Just one sentence")
	want := []string{"Just one sentence"}
	assertEqualSlices(t, got, want)
}

func TestSplitSentencesEmpty(t *testing.T) {
	got := SplitSentences("")
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestSplitSentencesAbbreviationsNotSplit(t *testing.T) {
	got := SplitSentences("Mr. Smith went home. He waved vs. goodbye e.g. loudly.")
	for _, s := range got {
		if s == "Mr." || s == "vs." || s == "e.g." {
			t.Fatalf("abbreviation incorrectly split into its own sentence: %v", got)
		}
	}
}

func TestSplitSentencesDecimalNotSplit(t *testing.T) {
	got := SplitSentences("Pi is about 3.14 and that's a fact.")
	if len(got) != 1 {
		t.Fatalf("expected decimal to stay joined, got %v", got)
	}
}

func TestSplitSentencesMixedPunctuation(t *testing.T) {
	got := SplitSentences("Really? Yes! OK. Done")
	want := []string{"Really?", "Yes!", "OK.", "Done"}
	assertEqualSlices(t, got, want)
}

func TestMergeSentencesRespectsTarget(t *testing.T) {
	sentences := []string{"One.", "Two.", "Three."}
	merged := mergeSentences(sentences, 100, 500)
	if len(merged) != 1 {
		t.Fatalf("expected all three short sentences merged into one chunk, got %v", merged)
	}
}

func TestMergeSentencesNeverExceedsMax(t *testing.T) {
	long := make([]string, 20)
	for i := range long {
		long[i] = "A moderately long sentence that takes up some space here."
	}
	merged := mergeSentences(long, 280, 500)
	for _, c := range merged {
		if len(c) > 500 {
			t.Fatalf("chunk exceeds MERGE_MAX: %d chars", len(c))
		}
	}
}

func TestPrepareRoundTripPreservesWords(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs."
	chunks := Prepare(text, DefaultConfig)
	rejoined := ""
	for _, c := range chunks {
		rejoined += c + " "
	}
	for _, word := range splitWords(text) {
		if !containsWord(rejoined, word) {
			t.Fatalf("missing word %q in rejoined output %q", word, rejoined)
		}
	}
}

func TestPreparePathologicalInputNeverFails(t *testing.T) {
	inputs := []string{"", "   ", "###", "```", "...", "\n\n\n\n"}
	for _, in := range inputs {
		chunks := Prepare(in, DefaultConfig)
		_ = chunks // must not panic
	}
}

func assertEqualSlices(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q want %q (full got=%v)", i, got[i], want[i], got)
		}
	}
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}

func containsWord(haystack, word string) bool {
	for i := 0; i+len(word) <= len(haystack); i++ {
		if haystack[i:i+len(word)] == word {
			return true
		}
	}
	return false
}
