package textprep

import "strings"

import "testing"

func TestCleanStripsHeadings(t *testing.T) {
	got := Clean("# Heading\n\nBody text.", DefaultCleanOptions)
	if strings.Contains(got, "#") {
		t.Fatalf("heading marker not stripped: %q", got)
	}
	if !strings.Contains(got, "Heading") || !strings.Contains(got, "Body text.") {
		t.Fatalf("heading/body text lost: %q", got)
	}
}

func TestCleanStripsInlineCode(t *testing.T) {
	got := Clean("use `println!` here", DefaultCleanOptions)
	if strings.Contains(got, "`") {
		t.Fatalf("backticks not stripped: %q", got)
	}
	if !strings.Contains(got, "println!") {
		t.Fatalf("inline code text lost: %q", got)
	}
}

func TestCleanStripsEmphasis(t *testing.T) {
	got := Clean("this is **bold** and *italic* text", DefaultCleanOptions)
	if strings.Contains(got, "*") {
		t.Fatalf("emphasis markers not stripped: %q", got)
	}
	if !strings.Contains(got, "bold") || !strings.Contains(got, "italic") {
		t.Fatalf("emphasis text lost: %q", got)
	}
}

func TestCleanStripsLinks(t *testing.T) {
	got := Clean("click [here](https://example.com) now", DefaultCleanOptions)
	if strings.Contains(got, "http") {
		t.Fatalf("url leaked into output: %q", got)
	}
	if !strings.Contains(got, "here") {
		t.Fatalf("link text lost: %q", got)
	}
}

func TestCleanFencedCodeRemoved(t *testing.T) {
	got := Clean("before\n\n```go\nfmt.Println(1)\n```\n\nafter", DefaultCleanOptions)
	if strings.Contains(got, "fmt.Println") {
		t.Fatalf("fenced code leaked: %q", got)
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Fatalf("surrounding text lost: %q", got)
	}
}

func TestCleanHTMLTagsStripped(t *testing.T) {
	got := Clean("hello <b>world</b>!", DefaultCleanOptions)
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Fatalf("html tags not stripped: %q", got)
	}
	if !strings.Contains(got, "world") {
		t.Fatalf("html inner text lost: %q", got)
	}
}

func TestCleanListsGetTerminalPunctuation(t *testing.T) {
	got := Clean("items:\n\n- first\n- second\n", DefaultCleanOptions)
	if !strings.Contains(got, "first.") {
		t.Fatalf("list item missing terminal punctuation: %q", got)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	if got := Clean("", DefaultCleanOptions); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestCleanPlainTextUnchanged(t *testing.T) {
	got := Clean("Hello, how are you today?", DefaultCleanOptions)
	if got != "Hello, how are you today?" {
		t.Fatalf("plain text altered: %q", got)
	}
}

func TestCleanHeadingBodyCodeScenario(t *testing.T) {
	// spec.md §8 scenario (f)
	got := Clean("# Heading\n\nBody text.\n\n`code`", DefaultCleanOptions)
	if !strings.Contains(got, "Heading") {
		t.Fatalf("missing heading: %q", got)
	}
	if !strings.Contains(got, "Body text.") {
		t.Fatalf("missing body: %q", got)
	}
	if !strings.Contains(got, "code") {
		t.Fatalf("missing inline code text: %q", got)
	}
}
