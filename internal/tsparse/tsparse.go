// Package tsparse is a thin parser/printer adapter: it wraps tree-sitter's
// TypeScript/TSX grammars to produce a parse tree, and prints
// any node back to source text by slicing the original buffer at the
// node's byte range — the same text-slicing idiom lci's own parser package
// uses everywhere instead of a synthetic-AST codegen pass, since
// tree-sitter trees are immutable and there is no mutable-AST/printer
// library for TS/TSX in the Go ecosystem.
package tsparse

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParseError reports a parse failure for a single file.
type ParseError struct {
	Path string
	Diag string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Diag)
}

var (
	tsLanguage  = sitter.NewLanguage(tstypescript.LanguageTypescript())
	tsxLanguage = sitter.NewLanguage(tstypescript.LanguageTSX())
)

// languageFor selects a grammar by extension. Only .ts and .tsx are
// meaningful; callers are responsible for not invoking Parse on anything
// else (the scanner in internal/scanner never does).
func languageFor(path string) *sitter.Language {
	if strings.HasSuffix(path, ".tsx") {
		return tsxLanguage
	}
	return tsLanguage
}

// Parse parses source as TypeScript or TSX (selected from path's
// extension) and returns the resulting tree. A tree whose root contains an
// ERROR node is reported as a *ParseError; no partial tree is returned.
func Parse(path string, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(languageFor(path)); err != nil {
		return nil, &ParseError{Path: path, Diag: err.Error()}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Path: path, Diag: "parser returned no tree"}
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, &ParseError{Path: path, Diag: "syntax error"}
	}

	return tree, nil
}

// ByteEdit describes a half-open byte range, relative to the original
// source buffer, whose text is replaced with "{}" when printed.
type ByteEdit struct {
	Start uint
	End   uint
}

// Print renders node's source text with every edit that falls within the
// node's span applied, in source order. edits need not be sorted; an edit
// that does not lie wholly within the node's range is ignored, and an edit
// nested inside one already applied is skipped.
// The result remains valid, reparseable source because every edit
// boundary in internal/skeleton is chosen to align with a statement body's
// own braces (or, for concise arrow bodies, the whole expression span).
func Print(node *sitter.Node, source []byte, edits []ByteEdit) string {
	start, end := node.StartByte(), node.EndByte()

	relevant := make([]ByteEdit, 0, len(edits))
	for _, e := range edits {
		if e.Start >= start && e.End <= end && e.Start < e.End {
			relevant = append(relevant, e)
		}
	}
	sortEdits(relevant)

	var b strings.Builder
	cursor := start
	for _, e := range relevant {
		if e.Start < cursor {
			continue // overlapping edit from a broader ancestor range; skip
		}
		b.Write(source[cursor:e.Start])
		b.WriteString("{}")
		cursor = e.End
	}
	b.Write(source[cursor:end])

	return b.String()
}

func sortEdits(edits []ByteEdit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j-1].Start > edits[j].Start; j-- {
			edits[j-1], edits[j] = edits[j], edits[j-1]
		}
	}
}
