package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed services.json
var embedded []byte

var ErrNotFound = errors.New("service not found")

type Service struct {
	ID          string `json:"id"`
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Catalog is read-only after Load.
type Catalog struct {
	services []Service
	index    map[string]int
}

// Load reads the catalog from path, or the built-in list when path is empty.
func Load(path string) (*Catalog, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var services []Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{services: services, index: make(map[string]int, len(services)*2)}
	for i, s := range services {
		if s.ID == "" {
			return nil, fmt.Errorf("parse catalog: service %d has no id", i)
		}
		id := strings.ToLower(s.ID)
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate id %q", s.ID)
		}
		c.index[id] = i
		if slug := strings.ToLower(s.Slug); slug != "" && slug != id {
			c.index[slug] = i
		}
	}
	return c, nil
}

// All returns a copy of the services in file order.
func (c *Catalog) All() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Get looks a service up by id or slug.
func (c *Catalog) Get(key string) (Service, error) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Service{}, ErrNotFound
	}
	return c.services[i], nil
}
