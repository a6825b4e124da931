// Package prompts loads agent prompt files from disk.
//
// Each prompt lives in <dir>/<slug>.md and holds a System: block followed by
// an Instruction: block, separated by a blank line. Keeping prompts outside
// the binary lets them be tuned without a rebuild.
package prompts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ErrNotFound means no prompt file exists for the requested slug.
var ErrNotFound = errors.New("prompt not found")

// Prompt is one parsed prompt file.
type Prompt struct {
	System      string
	Instruction string
}

// Labels are case-insensitive and the blocks may span multiple paragraphs;
// the first blank line followed by the Instruction label splits them.
var sectionRE = regexp.MustCompile(`(?is)\A\s*system:\s*(.*?)\n\s*\n\s*instruction:\s*(.*)\z`)

// Store reads and caches prompts from a directory.
type Store struct {
	dir string

	mu    sync.Mutex
	cache map[string]Prompt
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, cache: make(map[string]Prompt)}
}

// Get returns the prompt for slug, reading and parsing the file on first use.
func (s *Store) Get(slug string) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.cache[slug]; ok {
		return p, nil
	}

	path := filepath.Join(s.dir, slug+".md")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prompt{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return Prompt{}, fmt.Errorf("prompts: read %s: %w", path, err)
	}

	m := sectionRE.FindStringSubmatch(string(raw))
	if m == nil {
		return Prompt{}, fmt.Errorf("prompts: %s: want a System: block then an Instruction: block", path)
	}
	p := Prompt{
		System:      strings.TrimSpace(m[1]),
		Instruction: strings.TrimSpace(m[2]),
	}
	s.cache[slug] = p
	return p, nil
}

// ClearCache drops all cached prompts so edited files are re-read.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]Prompt)
	s.mu.Unlock()
}
