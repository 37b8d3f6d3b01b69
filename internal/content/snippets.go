package content

import (
	"context"
	"embed"
	"fmt"
	"math/rand"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed snippets/*.txt
var snippetFS embed.FS

// Snippets serves embedded code snippets for the "code" source. Recently
// served snippets can be excluded so the same text does not repeat
// back-to-back during a streamed session.
type Snippets struct {
	rnd   *rand.Rand
	names []string
	texts map[string]string
	last  string
}

// NewSnippets loads the embedded snippet set.
func NewSnippets() (*Snippets, error) {
	entries, err := snippetFS.ReadDir("snippets")
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	s := &Snippets{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		texts: map[string]string{},
	}
	for _, entry := range entries {
		data, err := snippetFS.ReadFile(path.Join("snippets", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read snippet %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		s.names = append(s.names, name)
		s.texts[name] = strings.TrimSpace(string(data))
	}
	sort.Strings(s.names)
	if len(s.names) == 0 {
		return nil, fmt.Errorf("no snippets embedded")
	}
	return s, nil
}

// Names returns the available snippet identifiers.
func (s *Snippets) Names() []string { return s.names }

// Fetch concatenates randomly chosen snippets until the minimum length is
// reached, skipping excluded names while alternatives remain. The snippet
// served last is always excluded so consecutive fetches never start with the
// same text.
func (s *Snippets) Fetch(_ context.Context, req Request) (string, error) {
	excluded := map[string]struct{}{}
	for _, name := range req.ExcludeRecent {
		excluded[name] = struct{}{}
	}
	if s.last != "" {
		excluded[s.last] = struct{}{}
	}
	candidates := make([]string, 0, len(s.names))
	for _, name := range s.names {
		if _, ok := excluded[name]; !ok {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		candidates = s.names
	}

	var b strings.Builder
	for b.Len() < req.minLength() {
		name := candidates[s.rnd.Intn(len(candidates))]
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.texts[name])
		s.last = name
	}
	return b.String(), nil
}
