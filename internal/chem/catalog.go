package chem

import (
	"errors"
	"fmt"
)

// ErrUnknownSolute indicates a solute that is not part of a catalog.
var ErrUnknownSolute = errors.New("chem: unknown solute")

// Catalog is an ordered, fixed set of solutes.
type Catalog struct {
	solutes []*Solute
	byKey   map[string]*Solute
}

func NewCatalog(solutes ...*Solute) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]*Solute, len(solutes))}
	for _, s := range solutes {
		if s == nil {
			return nil, fmt.Errorf("chem: nil solute in catalog")
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, fmt.Errorf("chem: duplicate solute key %q", s.Key)
		}
		c.byKey[s.Key] = s
		c.solutes = append(c.solutes, s)
	}
	return c, nil
}

// All returns the solutes in catalog order.
func (c *Catalog) All() []*Solute {
	out := make([]*Solute, len(c.solutes))
	copy(out, c.solutes)
	return out
}

func (c *Catalog) Len() int { return len(c.solutes) }

func (c *Catalog) Lookup(key string) (*Solute, error) {
	s, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolute, key)
	}
	return s, nil
}

// Contains reports whether s is this catalog's instance, by reference.
func (c *Catalog) Contains(s *Solute) bool {
	if s == nil {
		return false
	}
	return c.byKey[s.Key] == s
}

func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.solutes))
	for i, s := range c.solutes {
		keys[i] = s.Key
	}
	return keys
}

// IndexOf returns the position of s, or -1.
func (c *Catalog) IndexOf(s *Solute) int {
	for i, candidate := range c.solutes {
		if candidate == s {
			return i
		}
	}
	return -1
}
