package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is a Markdown heading found in generated text.
type Heading struct {
	Level int
	Text  string // Plain text, markup removed
	Pos   int    // Byte offset right after the heading text, -1 when unknown
}

// Parser extracts headings from Markdown using the goldmark AST.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a new heading parser.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Headings returns all ATX and Setext headings in document order.
func (p *Parser) Headings(src []byte) []Heading {
	if len(src) == 0 {
		return nil
	}
	doc := p.md.Parser().Parse(text.NewReader(src))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{
			Level: heading.Level,
			Text:  extractTextFromNode(heading, src),
			Pos:   headingEnd(heading, src),
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// headingEnd returns the offset just past the last non-space byte of the
// heading's content. For ATX headings this is before any closing hashes.
func headingEnd(h *ast.Heading, src []byte) int {
	lines := h.Lines()
	if lines == nil || lines.Len() == 0 {
		return -1
	}
	last := lines.At(lines.Len() - 1)
	pos := last.Stop
	for pos > last.Start {
		switch src[pos-1] {
		case ' ', '\t', '\r', '\n':
			pos--
			continue
		}
		break
	}
	if pos <= last.Start {
		return -1
	}
	return pos
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, src []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			textBuilder.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				textBuilder.WriteByte(' ')
			}
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(textBuilder.String()), " ")
}

// Insertion is text to splice into a document at a byte offset.
type Insertion struct {
	Pos  int
	Text string
}

// Insert splices insertions into src. Insertions with an out-of-range
// offset are ignored; equal offsets keep their given order.
func Insert(src []byte, insertions []Insertion) []byte {
	valid := make([]Insertion, 0, len(insertions))
	extra := 0
	for _, ins := range insertions {
		if ins.Pos < 0 || ins.Pos > len(src) || ins.Text == "" {
			continue
		}
		valid = append(valid, ins)
		extra += len(ins.Text)
	}
	if len(valid) == 0 {
		return src
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Pos < valid[j].Pos })

	out := make([]byte, 0, len(src)+extra)
	prev := 0
	for _, ins := range valid {
		out = append(out, src[prev:ins.Pos]...)
		out = append(out, ins.Text...)
		prev = ins.Pos
	}
	return append(out, src[prev:]...)
}
