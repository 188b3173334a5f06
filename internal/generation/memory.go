package generation

import "sync"

// Thresholds past which Trim clears a tracking set.
const (
	ThemeLimit     = 20
	ReferenceLimit = 50
	StyleLimit     = 30
)

// orderedSet remembers insertion order so recent entries can be listed.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.seen[v]
	return ok
}

func (s *orderedSet) clear() {
	s.items = nil
	s.seen = make(map[string]struct{})
}

func (s *orderedSet) last(n int) []string {
	if n <= 0 || len(s.items) == 0 {
		return nil
	}
	if n > len(s.items) {
		n = len(s.items)
	}
	out := make([]string, n)
	copy(out, s.items[len(s.items)-n:])
	return out
}

// Memory tracks which themes, references and styles were used recently so
// consecutive generations vary. It lives in process memory only and is safe
// for concurrent use.
type Memory struct {
	mu         sync.Mutex
	themes     *orderedSet
	references *orderedSet
	styles     *orderedSet
}

func NewMemory() *Memory {
	return &Memory{
		themes:     newOrderedSet(),
		references: newOrderedSet(),
		styles:     newOrderedSet(),
	}
}

// UnusedThemes returns the themes in vocab not yet used. It never returns an
// empty list: once every theme has been used, tracking is cleared and the
// whole vocabulary is returned.
func (m *Memory) UnusedThemes(vocab []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	unused := unusedFrom(m.themes, vocab)
	if len(unused) == 0 {
		m.themes.clear()
		return append([]string(nil), vocab...)
	}
	return unused
}

// UnusedStyles returns the styles in vocab not yet used, or the full
// vocabulary when all have been used. Tracking is left untouched.
func (m *Memory) UnusedStyles(vocab []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	unused := unusedFrom(m.styles, vocab)
	if len(unused) == 0 {
		return append([]string(nil), vocab...)
	}
	return unused
}

func (m *Memory) MarkTheme(theme string) {
	m.mu.Lock()
	m.themes.add(theme)
	m.mu.Unlock()
}

func (m *Memory) MarkReference(ref string) {
	m.mu.Lock()
	m.references.add(ref)
	m.mu.Unlock()
}

func (m *Memory) MarkStyle(style string) {
	m.mu.Lock()
	m.styles.add(style)
	m.mu.Unlock()
}

// RecentReferences returns up to n references, oldest first.
func (m *Memory) RecentReferences(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.references.last(n)
}

// RecentStyles returns up to n styles, oldest first.
func (m *Memory) RecentStyles(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.styles.last(n)
}

// UsedReference reports whether ref is currently tracked.
func (m *Memory) UsedReference(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.references.has(ref)
}

// Trim clears any set that has grown past its threshold.
func (m *Memory) Trim() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.themes.items) > ThemeLimit {
		m.themes.clear()
	}
	if len(m.references.items) > ReferenceLimit {
		m.references.clear()
	}
	if len(m.styles.items) > StyleLimit {
		m.styles.clear()
	}
}

// Sizes reports how many themes, references and styles are tracked.
func (m *Memory) Sizes() (themes, references, styles int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.themes.items), len(m.references.items), len(m.styles.items)
}

func unusedFrom(set *orderedSet, vocab []string) []string {
	var out []string
	for _, v := range vocab {
		if !set.has(v) {
			out = append(out, v)
		}
	}
	return out
}
