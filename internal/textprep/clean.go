// Package textprep implements the Preparer stage: markdown cleaning and
// sentence segmentation for text submitted to the TTS engine.
package textprep

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"
)

// CleanOptions controls placeholder text for constructs that spec.md says
// to remove entirely. Both default to the empty string ("removed
// entirely"); the original raia/nayru UI-facing placeholders are available
// as an opt-in for callers that want a reader-friendly cue instead of
// silence.
type CleanOptions struct {
	CodePlaceholder  string
	TablePlaceholder string
}

// DefaultCleanOptions strips fenced/indented code and tables with no
// placeholder, matching spec.md's "removed entirely" wording literally.
var DefaultCleanOptions = CleanOptions{}

var sanitizer = bluemonday.StrictPolicy()

// Clean strips markdown formatting from text while preserving readable
// prose, per spec.md §4.1. Cleaning never fails: goldmark accepts any
// input, and whatever the AST walk emits is HTML-sanitized and
// whitespace-normalized before it is returned.
func Clean(src string, opts CleanOptions) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	source := []byte(src)
	doc := md.Parser().Parse(gtext.NewReader(source))

	var buf bytes.Buffer
	w := &walker{src: source, buf: &buf, opts: opts}
	_ = ast.Walk(doc, w.visit)

	cleaned := buf.String()
	cleaned = sanitizer.Sanitize(cleaned)
	return normalizeWhitespace(cleaned)
}

type walker struct {
	src  []byte
	buf  *bytes.Buffer
	opts CleanOptions

	listIndex []int // nested ordered-list counters
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil

	case *ast.Paragraph:
		if !entering {
			w.buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil

	case *ast.Heading:
		if entering {
			return ast.WalkContinue, nil
		}
		w.ensureTerminalPunctuation()
		w.buf.WriteString("\n\n")
		return ast.WalkContinue, nil

	case *ast.TextBlock:
		if !entering {
			w.buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil

	case *ast.Text:
		if entering {
			w.buf.Write(node.Segment.Value(w.src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				w.buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil

	case *ast.String:
		if entering {
			w.buf.Write(node.Value)
		}
		return ast.WalkContinue, nil

	case *ast.CodeSpan:
		// Inline code: backticks removed, text kept (spec.md §4.1).
		return ast.WalkContinue, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			w.buf.WriteString(w.opts.CodePlaceholder)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.ThematicBreak:
		return ast.WalkContinue, nil

	case *ast.Emphasis:
		// Bold/italic markers dropped, child text kept.
		return ast.WalkContinue, nil

	case *ast.Link:
		if entering {
			w.buf.Write(linkText(node, w.src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.Image:
		if entering {
			w.buf.Write(node.Text(w.src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.AutoLink:
		if entering {
			w.buf.Write(node.URL(w.src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.RawHTML:
		if entering {
			var seg bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				s := node.Segments.At(i)
				seg.Write(s.Value(w.src))
			}
			w.buf.WriteString(sanitizer.Sanitize(seg.String()))
		}
		return ast.WalkContinue, nil

	case *ast.HTMLBlock:
		if entering {
			var seg bytes.Buffer
			seg.Write(node.Lines().Value(w.src))
			w.buf.WriteString(sanitizer.Sanitize(seg.String()))
			w.buf.WriteString("\n\n")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.List:
		if entering {
			w.listIndex = append(w.listIndex, 0)
		} else {
			w.listIndex = w.listIndex[:len(w.listIndex)-1]
			w.buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil

	case *ast.ListItem:
		if entering {
			w.listIndex[len(w.listIndex)-1]++
		} else {
			w.ensureTerminalPunctuation()
			w.buf.WriteString(" ")
		}
		return ast.WalkContinue, nil

	case *east.Table:
		if entering {
			w.buf.WriteString(w.opts.TablePlaceholder)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.Blockquote:
		return ast.WalkContinue, nil

	default:
		return ast.WalkContinue, nil
	}
}

// ensureTerminalPunctuation appends a period if the buffer doesn't already
// end in sentence-ending punctuation, per spec.md's "each item treated as a
// sentence if it lacks terminal punctuation, then append a period" rule
// (applied here to headings and list items alike).
func (w *walker) ensureTerminalPunctuation() {
	s := strings.TrimRight(w.buf.String(), " \t\n")
	if s == "" {
		return
	}
	last := s[len(s)-1]
	if last == '.' || last == '!' || last == '?' {
		return
	}
	w.buf.Reset()
	w.buf.WriteString(s)
	w.buf.WriteString(".")
}

func linkText(n *ast.Link, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}
	}
	return buf.Bytes()
}

func normalizeWhitespace(s string) string {
	// Collapse runs of spaces/tabs, preserve paragraph breaks.
	lines := strings.Split(s, "\n")
	var paras []string
	var cur strings.Builder
	flush := func() {
		p := collapseSpaces(cur.String())
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
		cur.Reset()
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte(' ')
	}
	flush()
	return strings.TrimSpace(strings.Join(paras, "\n\n"))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t'
		if isSpace {
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
