// Package markdown inspects todo notes with a full Markdown parser. The
// rollover itself works on raw lines; this package backs read-only reports.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/aretw0/todoroll/pkg/core"
)

// Summary describes the first table of a todo note.
type Summary struct {
	Columns   []string
	Open      int
	Done      int
	OpenTasks []string
	HasTable  bool
}

// Total returns the number of data rows.
func (s Summary) Total() int {
	return s.Open + s.Done
}

func newParser() parser.Parser {
	return goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
}

// Inspect parses content and summarizes its first table. A row is done when
// core.RowDone accepts its source line, so the counts agree with what a
// rollover carries forward.
func Inspect(content []byte) Summary {
	var sum Summary
	doc := newParser().Parse(text.NewReader(content))

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}

		sum.HasTable = true
		for row := table.FirstChild(); row != nil; row = row.NextSibling() {
			cells := cellTexts(row, content)
			switch row.(type) {
			case *east.TableHeader:
				sum.Columns = cells
			case *east.TableRow:
				if done, _ := core.RowDone(sourceLine(row, content)); done {
					sum.Done++
					continue
				}
				sum.Open++
				if len(cells) > 0 && cells[0] != "" {
					sum.OpenTasks = append(sum.OpenTasks, cells[0])
				}
			}
		}
		return ast.WalkStop, nil
	})

	return sum
}

func cellTexts(row ast.Node, source []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if cell, ok := c.(*east.TableCell); ok {
			cells = append(cells, strings.TrimSpace(string(cell.Text(source))))
		}
	}
	return cells
}

// sourceLine returns the raw line a parsed row came from. Cells padded in by
// the parser carry no segment and are skipped.
func sourceLine(row ast.Node, source []byte) string {
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Lines().Len() == 0 {
			continue
		}
		at := c.Lines().At(0).Start
		start := bytes.LastIndexByte(source[:at], '\n') + 1
		end := bytes.IndexByte(source[at:], '\n')
		if end < 0 {
			return string(source[start:])
		}
		return string(source[start : at+end])
	}
	return ""
}
