package glue

import "strings"

// SnippetSource produces a skeleton definition for undefined step text.
// Backends implement it.
type SnippetSource interface {
	Snippet(text string) string
}

// AddSnippetSource appends sources consulted by SuggestSnippet.
func (g *Glue) AddSnippetSource(sources ...SnippetSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sources = append(g.sources, sources...)
}

// SuggestSnippet concatenates every source's snippet for text, separated
// by blank lines. It does not touch the registered definitions.
func (g *Glue) SuggestSnippet(text string) string {
	g.mu.RLock()
	sources := append([]SnippetSource(nil), g.sources...)
	g.mu.RUnlock()

	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		if s := strings.TrimRight(src.Snippet(text), "\n"); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
