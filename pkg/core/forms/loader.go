package forms

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cost_intelligence/pkg/core/utils"
)

// Registry holds loaded form schemas keyed by entity name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// ParseSchema parses one schema document. Schemas are authored in HJSON
// (which also accepts plain JSON); sloppy JSON is accepted via the repair
// fallback.
func ParseSchema(data string) (*Schema, error) {
	var s Schema
	if err := utils.ParseHJSONToStruct(data, &s); err != nil {
		if _, repErr := utils.SmartParse(data, &s); repErr != nil {
			return nil, fmt.Errorf("schema parse failed: %w", err)
		}
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile parses and registers a single schema file.
func (r *Registry) LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	s, err := ParseSchema(string(data))
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", filepath.Base(path), err)
	}
	r.Register(s)
	return s, nil
}

// LoadDir loads every .hjson/.json schema under dir. Returns the number of
// schemas registered.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read schema directory: %w", err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".hjson" && ext != ".json" {
			continue
		}
		if _, err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Register adds or replaces a schema.
func (r *Registry) Register(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Entity] = s
}

// Get returns the schema for an entity, or nil.
func (r *Registry) Get(entity string) *Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemas[entity]
}

// Entities lists registered entity names, sorted.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.schemas))
	for e := range r.schemas {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
