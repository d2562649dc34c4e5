// Package scanner implements the initial sweep and the live filesystem
// watch: it is the only writer of internal/index.Index, routing every
// regular .ts/.tsx file it sees through internal/skeleton.Build.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramigb/semantic-skeletonizer/internal/ignore"
	"github.com/ramigb/semantic-skeletonizer/internal/index"
	"github.com/ramigb/semantic-skeletonizer/internal/logging"
	"github.com/ramigb/semantic-skeletonizer/internal/skeleton"
)

const component = "scanner"

// Scanner owns the project root, the Index it writes to, and the ignore
// rules that both the sweep and the watcher consult.
type Scanner struct {
	root    string
	idx     *index.Index
	ignorer *ignore.Matcher

	changeCh chan struct{}
}

// New creates a Scanner rooted at root, writing into idx.
func New(root string, idx *index.Index) *Scanner {
	return &Scanner{
		root:     root,
		idx:      idx,
		ignorer:  ignore.New(root),
		changeCh: make(chan struct{}, 1),
	}
}

// Root returns the project root directory.
func (s *Scanner) Root() string { return s.root }

// Changes returns the change-tick channel: a unit signal fired at least
// once for every live-watch batch in which some file was successfully
// reskeletonized. Multiple ticks queued while the reader is busy collapse
// into one.
func (s *Scanner) Changes() <-chan struct{} {
	return s.changeCh
}

func (s *Scanner) notifyChange() {
	select {
	case s.changeCh <- struct{}{}:
	default:
		// A tick is already pending; coalesce.
	}
}

// isSourceFile reports whether path carries an extension the skeletonizer
// indexes.
func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".ts" || ext == ".tsx"
}

// Sweep walks the project root recursively and indexes every .ts/.tsx file
// it finds. It must complete before the server begins accepting requests
// — a hard ordering invariant — so callers run it synchronously, before
// starting the watcher or the RPC server. Sweep is best-effort: I/O
// and parse errors are logged and the offending file is skipped; a single
// bad file never aborts the sweep.
func (s *Scanner) Sweep() error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn(component, "walk error at %s: %v", path, err)
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && s.ignorer.ShouldIgnoreDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !isSourceFile(path) {
			return nil
		}
		if s.ignorer.ShouldIgnoreFile(rel) {
			return nil
		}

		_ = s.indexPath(keyFor(rel))
		return nil
	})
}

// keyFor normalizes a sweep-relative path to the single form used as an
// Index key throughout the service: forward-slashed, "./"-prefixed when
// not already absolute. Both the sweep and the watcher pass their
// root-relative paths through it, which is what keeps a sweep-inserted entry and a later watch-driven update for
// the same file colliding on the same key.
func keyFor(rel string) string {
	if rel == "" || rel == "." {
		return "."
	}
	if strings.HasPrefix(rel, "./") || strings.HasPrefix(rel, "/") {
		return rel
	}
	return "./" + rel
}

// indexPath reads, skeletonizes, and inserts the file at the index key
// relPath (already relative to the project root), reporting whether the
// insert happened. Failures are logged and swallowed: the previous entry,
// if any, is left untouched.
func (s *Scanner) indexPath(relPath string) bool {
	abs := filepath.Join(s.root, strings.TrimPrefix(relPath, "./"))

	content, err := os.ReadFile(abs)
	if err != nil {
		logging.Warn(component, "read %s: %v", abs, err)
		return false
	}

	built, err := skeleton.Build(relPath, content)
	if err != nil {
		logging.Warn(component, "skeletonize %s: %v", abs, err)
		return false
	}

	s.idx.Set(relPath, built)
	return true
}
