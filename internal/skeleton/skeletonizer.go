package skeleton

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ramigb/semantic-skeletonizer/internal/tsparse"
)

// styleAssetSubstrings are the literal substrings that, when present
// anywhere in an import's raw quoted source string, drop the whole import
// declaration from the skeleton. The test is intentionally a naive
// substring match against the quoted literal — a specifier that merely
// contains one of these substrings (e.g. "my.css-loader") is filtered too.
var styleAssetSubstrings = []string{".css", ".scss", ".svg"}

// Build parses source (selecting the TS or TSX grammar from path's
// extension) and produces its FileSkeleton. A parse failure is returned
// verbatim as a *tsparse.ParseError; Build itself cannot otherwise fail —
// skeletonizer failure is exactly parser failure.
func Build(path string, source []byte) (FileSkeleton, error) {
	tree, err := tsparse.Parse(path, source)
	if err != nil {
		return FileSkeleton{}, err
	}
	defer tree.Close()

	var fs FileSkeleton
	root := tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		route(&fs, node, source)
	}
	return fs, nil
}

// route classifies a single top-level node into the matching FileSkeleton
// field, or drops it silently.
func route(fs *FileSkeleton, node *sitter.Node, source []byte) {
	kind := node.Kind()

	switch {
	case kind == "import_statement":
		if isStyleAssetImport(node, source) {
			return
		}
		fs.Imports = append(fs.Imports, printTopLevel(node, source))
	case kind == "import_alias":
		fs.Imports = append(fs.Imports, printTopLevel(node, source))
	case strings.HasPrefix(kind, "export"):
		fs.Exports = append(fs.Exports, printTopLevel(node, source))
	case kind == "function_declaration" || kind == "generator_function_declaration":
		fs.Functions = append(fs.Functions, printTopLevel(node, source))
	case kind == "class_declaration" || kind == "abstract_class_declaration":
		fs.Classes = append(fs.Classes, printTopLevel(node, source))
	case kind == "interface_declaration" || kind == "type_alias_declaration" ||
		kind == "enum_declaration" || kind == "module" || kind == "internal_module" ||
		kind == "ambient_declaration":
		fs.Interfaces = append(fs.Interfaces, printTopLevel(node, source))
	case kind == "lexical_declaration" || kind == "variable_declaration":
		fs.Variables = append(fs.Variables, printTopLevel(node, source))
	default:
		// Bare statements, `using` declarations, and anything else outside
		// the routing table are dropped silently.
	}
}

func isStyleAssetImport(node *sitter.Node, source []byte) bool {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return false
	}
	quoted := string(source[srcNode.StartByte():srcNode.EndByte()])
	for _, substr := range styleAssetSubstrings {
		if strings.Contains(quoted, substr) {
			return true
		}
	}
	return false
}

// printTopLevel prints node with every function/method/arrow body beneath
// it (at any depth) emptied: tree-sitter trees are immutable, so rather
// than mutate and reprint, the body ranges to blank are collected first
// and substituted in during a single text-slicing print, matching lci's
// own content-range-substitution idiom (internal/core/ast_content_filter.go).
func printTopLevel(node *sitter.Node, source []byte) string {
	var edits []tsparse.ByteEdit
	collectBodyEdits(node, &edits)
	return tsparse.Print(node, source, edits)
}

// collectBodyEdits walks node and its descendants, recording the byte
// range of every function/method/arrow body so it can be blanked to "{}"
// by tsparse.Print. Arrow functions are included whether their body is
// already a block or a concise expression — either way the whole body
// span is replaced, which is exactly how a concise arrow `x => x + 1`
// becomes the normalized `x => {}`.
func collectBodyEdits(node *sitter.Node, out *[]tsparse.ByteEdit) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "function_declaration", "function_expression", "generator_function",
		"generator_function_declaration", "method_definition", "arrow_function":
		if body := node.ChildByFieldName("body"); body != nil {
			*out = append(*out, tsparse.ByteEdit{Start: body.StartByte(), End: body.EndByte()})
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectBodyEdits(node.Child(i), out)
	}
}
