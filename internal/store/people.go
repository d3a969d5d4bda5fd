package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("person not found")
	ErrSelfMerge = errors.New("cannot merge a person into themself")
)

// People is the person table. Entities are held by stable ID and reached by
// name through a secondary index, so a rename only swaps index entries.
// All mutations hold the table lock for their whole duration.
type People struct {
	mu     sync.RWMutex
	byID   map[string]*Person
	byName map[string]string
}

func NewPeople() *People {
	return &People{
		byID:   make(map[string]*Person),
		byName: make(map[string]string),
	}
}

// Insert stores p under p.Name, assigning an ID when p has none. An entity
// already registered under that name is replaced. The table owns p
// afterwards; the returned view is the caller's copy.
func (t *People) Insert(p *Person) PersonView {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	t.put(p)
	return p.View()
}

// put indexes p by name, evicting any other entity that held the name.
func (t *People) put(p *Person) {
	if prev, ok := t.byName[p.Name]; ok && prev != p.ID {
		delete(t.byID, prev)
	}
	t.byID[p.ID] = p
	t.byName[p.Name] = p.ID
}

// Get returns the live entity registered under name. Its fields may only be
// read while no writer can run; concurrent readers use View.
func (t *People) Get(name string) (*Person, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.get(name)
}

func (t *People) get(name string) (*Person, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	p, ok := t.byID[id]
	return p, ok
}

// View returns a detached copy of the entity registered under name.
func (t *People) View(name string) (PersonView, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.get(name)
	if !ok {
		return PersonView{}, false
	}
	return p.View(), true
}

func (t *People) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Modify runs fn against the entity registered under name while holding the
// write lock. If fn changes the entity's Name, the index is re-keyed before
// the lock is released. The result is a copy taken under the same lock.
func (t *People) Modify(name string, fn func(p *Person)) (PersonView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.get(name)
	if !ok {
		return PersonView{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	fn(p)
	if p.Name != name {
		delete(t.byName, name)
		t.put(p)
	}
	return p.View(), nil
}

// Merge folds source into target and removes source from the table.
func (t *People) Merge(sourceName, targetName string) (PersonView, error) {
	if sourceName == targetName {
		return PersonView{}, fmt.Errorf("%q: %w", sourceName, ErrSelfMerge)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	source, ok := t.get(sourceName)
	if !ok {
		return PersonView{}, fmt.Errorf("source %q: %w", sourceName, ErrNotFound)
	}
	target, ok := t.get(targetName)
	if !ok {
		return PersonView{}, fmt.Errorf("target %q: %w", targetName, ErrNotFound)
	}

	target.Merge(source)
	delete(t.byName, sourceName)
	delete(t.byID, source.ID)
	// Merge never overwrites a non-empty name, so target keeps its key.
	return target.View(), nil
}

func (t *People) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}

// Names returns the registered names in sorted order.
func (t *People) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Views returns detached copies of every entity, sorted by name.
func (t *People) Views() []PersonView {
	return t.collect(func(*Person) bool { return true })
}

// Search returns entities whose name, description or role contains keyword,
// compared case-insensitively.
func (t *People) Search(keyword string) []PersonView {
	needle := strings.ToLower(keyword)
	return t.collect(func(p *Person) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Role), needle)
	})
}

func (t *People) collect(match func(*Person) bool) []PersonView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []PersonView{}
	for _, id := range t.byName {
		p := t.byID[id]
		if match(p) {
			out = append(out, p.View())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
