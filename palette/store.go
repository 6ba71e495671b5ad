package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store resolves palettes by project id. Implementations must be safe for
// concurrent use; the returned palette is shared read-only.
type Store interface {
	Load(projectID string) (*Palette, error)
}

// ParseDocument decodes, sanitizes, and validates one palette document.
func ParseDocument(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("palette: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.sanitize()
	return &p, nil
}

// DirStore loads palettes from a directory of <project_id>.yaml documents.
// Loaded palettes are cached for the store's lifetime.
type DirStore struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Palette
}

// NewDirStore creates a directory-backed store. The directory does not
// need to exist yet; a missing file simply means no palette.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir, cache: make(map[string]*Palette)}
}

// Load resolves a project's palette. Returns ErrNotFound when no document
// exists for the project.
func (s *DirStore) Load(projectID string) (*Palette, error) {
	s.mu.RLock()
	if p, ok := s.cache[projectID]; ok {
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	var data []byte
	var err error
	for _, ext := range []string{".yaml", ".yml"} {
		data, err = os.ReadFile(filepath.Join(s.dir, projectID+ext))
		if err == nil {
			break
		}
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: project %q in %s", ErrNotFound, projectID, s.dir)
		}
		return nil, fmt.Errorf("palette: read %s: %w", projectID, err)
	}

	p, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if p.ProjectID != projectID {
		return nil, fmt.Errorf("%w: document project_id %q does not match file %q",
			ErrInvalidTemplate, p.ProjectID, projectID)
	}

	s.mu.Lock()
	s.cache[projectID] = p
	s.mu.Unlock()
	return p, nil
}

// Registry is an in-process palette store for programmatic registration,
// mostly used by tests and embedded deployments.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]*Palette
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{palettes: make(map[string]*Palette)}
}

// Register validates, sanitizes, and stores a palette under its project id.
func (r *Registry) Register(p *Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.sanitize()
	r.mu.Lock()
	r.palettes[p.ProjectID] = p
	r.mu.Unlock()
	return nil
}

// Load resolves a registered palette or ErrNotFound.
func (r *Registry) Load(projectID string) (*Palette, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.palettes[projectID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: project %q", ErrNotFound, projectID)
}
