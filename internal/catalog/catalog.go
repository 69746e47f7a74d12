// Package catalog holds the programs and exercise library for a session.
package catalog

import (
	"sync"

	"github.com/claude/repbook/internal/library"
	"github.com/claude/repbook/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Catalog is the in-memory program collection plus the exercise library.
// Programs are keyed by name in insertion order; putting a program whose name
// already exists replaces it in its original slot. Stored programs are never
// mutated, so returned values may be shared between readers.
type Catalog struct {
	mu       sync.RWMutex
	programs *orderedmap.OrderedMap[string, models.Program]
	library  []models.LibraryEntry
	derived  bool
}

// New creates a catalog from programs (later duplicates win) and a library.
func New(programs []models.Program, lib []models.LibraryEntry) *Catalog {
	c := &Catalog{programs: orderedmap.New[string, models.Program]()}
	for _, p := range programs {
		c.programs.Set(p.Name, p)
	}
	c.library = lib
	return c
}

// Put adds or replaces a program by name.
func (c *Catalog) Put(p models.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs.Set(p.Name, p)
}

// Programs returns all programs in catalog order.
func (c *Catalog) Programs() []models.Program {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.programList()
}

func (c *Catalog) programList() []models.Program {
	out := make([]models.Program, 0, c.programs.Len())
	for pair := c.programs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Program looks a program up by name, then by id.
func (c *Catalog) Program(key string) (models.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.programs.Get(key); ok {
		return p, true
	}
	for pair := c.programs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.ID == key {
			return pair.Value, true
		}
	}
	return models.Program{}, false
}

// Library returns the exercise library, sorted by name.
func (c *Catalog) Library() []models.LibraryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.library
}

// SetLibrary replaces the exercise library with an explicit one. Later
// program changes leave it alone.
func (c *Catalog) SetLibrary(lib []models.LibraryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.library = lib
	c.derived = false
}

// DeriveLibrary builds the library from the base seed plus every program in
// the catalog, and keeps it derived so RefreshLibrary follows later puts.
func (c *Catalog) DeriveLibrary() []models.LibraryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.library = library.Derive(library.Base(), c.programList())
	c.derived = true
	return c.library
}

// RefreshLibrary re-derives a derived library from the current programs, so
// exercises of replaced programs drop out. An explicit library is returned
// unchanged with changed false.
func (c *Catalog) RefreshLibrary() (lib []models.LibraryEntry, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.derived {
		return c.library, false
	}
	c.library = library.Derive(library.Base(), c.programList())
	return c.library, true
}

// Len returns the number of programs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.programs.Len()
}
