// Package matcher selects checklist files with glob and regex patterns.
// Globs use doublestar syntax, so "**" crosses directory boundaries.
package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses doublestar glob patterns (*, **, ?, [], {}).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher checks inputs against one pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// MatchAll checks multiple inputs and returns matches.
	MatchAll(inputs ...string) []string
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

// matcher is the concrete implementation of the Matcher interface.
type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
	filePath        bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// FilePath matches globs against OS paths, using the OS separator
	FilePath bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// New creates a new Matcher with the specified pattern and type.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{
		pattern:     pattern,
		patternType: patternType,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern: %w", err)
	}
	return m, nil
}

// compile prepares the pattern for matching.
func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive
	m.filePath = opts.FilePath

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(m.globPattern)) {
			return fmt.Errorf("invalid glob pattern: %q", m.pattern)
		}
	case Regex:
		pattern := m.pattern
		if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^" + pattern
			}
			if !strings.HasSuffix(pattern, "$") {
				pattern += "$"
			}
		}
		if opts.CaseInsensitive && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		if m.filePath {
			ok, _ := doublestar.PathMatch(m.globPattern, input)
			return ok
		}
		ok, _ := doublestar.Match(m.globPattern, input)
		return ok
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// MatchAll checks multiple inputs and returns matches.
func (m *matcher) MatchAll(inputs ...string) []string {
	results := make([]string, 0)
	for _, input := range inputs {
		if m.Match(input) {
			results = append(results, input)
		}
	}
	return results
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType attempts to detect if a pattern is glob or regex.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "(?m)", "(?s)",
		"+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// MultiMatcher matches when any of its patterns matches.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher creates a matcher with multiple patterns.
func NewMultiMatcher(patterns []string, patternType PatternType, opts ...*Options) (*MultiMatcher, error) {
	mm := &MultiMatcher{
		matchers: make([]Matcher, 0, len(patterns)),
	}
	for _, pattern := range patterns {
		m, err := New(patternType, pattern, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create matcher for pattern %q: %w", pattern, err)
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Match returns true if any pattern matches. An empty MultiMatcher
// matches nothing.
func (mm *MultiMatcher) Match(input string) bool {
	for _, m := range mm.matchers {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (mm *MultiMatcher) Len() int {
	return len(mm.matchers)
}

// IsGlobPattern checks if a string contains glob metacharacters.
func IsGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ExpandFiles resolves arguments to a sorted, de-duplicated list of regular
// files. Arguments may be files, directories (searched recursively for
// names matching include) or glob patterns. Paths matching any exclude
// pattern are dropped. Include and exclude patterns match the base name.
func ExpandFiles(args []string, include string, exclude []string) ([]string, error) {
	inc, err := New(Glob, include, &Options{CaseInsensitive: true})
	if err != nil {
		return nil, err
	}
	exc, err := NewMultiMatcher(exclude, Auto, &Options{CaseInsensitive: true})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] || exc.Match(filepath.Base(path)) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		if IsGlobPattern(arg) {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob error for %q: %w", arg, err)
			}
			for _, match := range matches {
				add(match)
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			// Missing paths are kept so callers report them per file.
			add(arg)
			continue
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(arg), "**/*", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("walk error for %q: %w", arg, err)
		}
		for _, match := range matches {
			if inc.Match(filepath.Base(match)) {
				add(filepath.Join(arg, filepath.FromSlash(match)))
			}
		}
	}

	slices.Sort(files)
	return files, nil
}
