// Package ignore provides composable, gitignore-family path filtering for
// the project sweep and watcher, modeled on harvx's internal/discovery
// gitignore matcher and default ignore list.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ramigb/semantic-skeletonizer/internal/logging"
)

// Defaults are the built-in ignore patterns applied regardless of whether
// the project carries a .gitignore, covering the directories that would
// otherwise dominate a TS/TSX sweep.
var Defaults = []string{
	".git/",
	"node_modules/",
	"dist/",
	"build/",
	"out/",
	"coverage/",
	".next/",
	".turbo/",
	"vendor/",
}

// Matcher reports whether a path, relative to the project root, should be
// excluded from the sweep and from watch registration.
type Matcher struct {
	root     string
	defaults []string
	vcs      *gitignore.GitIgnore // root .gitignore, if present
}

// New builds a Matcher rooted at root. A missing .gitignore is not an
// error — Defaults alone still apply.
func New(root string) *Matcher {
	m := &Matcher{root: root, defaults: Defaults}

	gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		logging.Debug("ignore", "no usable .gitignore at %s: %v", root, err)
		return m
	}
	m.vcs = gi
	return m
}

// ShouldIgnoreDir reports whether a directory (given relative to root)
// should be skipped entirely, including its subtree.
func (m *Matcher) ShouldIgnoreDir(relPath string) bool {
	return m.matches(relPath, true)
}

// ShouldIgnoreFile reports whether a regular file should be excluded from
// the sweep/watch.
func (m *Matcher) ShouldIgnoreFile(relPath string) bool {
	return m.matches(relPath, false)
}

func (m *Matcher) matches(relPath string, isDir bool) bool {
	norm := filepath.ToSlash(relPath)
	norm = strings.TrimPrefix(norm, "./")
	if norm == "" || norm == "." {
		return false
	}

	dirForm := norm
	if isDir && !strings.HasSuffix(dirForm, "/") {
		dirForm += "/"
	}

	for _, pattern := range m.defaults {
		if isDir && strings.HasSuffix(pattern, "/") {
			if matched, _ := doublestar.Match("**/"+strings.TrimSuffix(pattern, "/"), strings.TrimSuffix(norm, "/")); matched {
				return true
			}
			if matched, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), strings.TrimSuffix(norm, "/")); matched {
				return true
			}
			continue
		}
		if matched, _ := doublestar.Match("**/"+pattern, norm); matched {
			return true
		}
	}

	if m.vcs != nil && m.vcs.MatchesPath(dirForm) {
		return true
	}

	return false
}
