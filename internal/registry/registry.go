// Package registry holds the component capability registry the pipeline
// consults for every tag it meets. Registries are built from snapshots
// produced offline; nothing mutates them at conversion time.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

var (
	// ErrInvalidDefinition indicates a component definition that fails
	// structural validation.
	ErrInvalidDefinition = errors.New("registry: invalid component definition")
	// ErrDuplicateComponent indicates two definitions whose names collide,
	// ignoring case.
	ErrDuplicateComponent = errors.New("registry: duplicate component")
)

var componentNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// Registry is a thread-safe in-memory capability registry. Lookups preserve
// the snapshot's casing; a folded index catches tags whose case drifted from
// the snapshot.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]interfaces.ComponentDefinition
	folded map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]interfaces.ComponentDefinition),
		folded: make(map[string]string),
	}
}

// Register validates and adds a definition.
func (r *Registry) Register(def interfaces.ComponentDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(def.Name)
	if existing, ok := r.folded[key]; ok {
		return fmt.Errorf("%w: %q collides with %q", ErrDuplicateComponent, def.Name, existing)
	}
	r.byName[def.Name] = def
	r.folded[key] = def.Name
	return nil
}

// Lookup implements interfaces.ComponentRegistry.
func (r *Registry) Lookup(name string) (interfaces.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.byName[name]; ok {
		return def, true
	}
	canonical, ok := r.folded[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return interfaces.ComponentDefinition{}, false
	}
	return r.byName[canonical], true
}

// List implements interfaces.ComponentRegistry.
func (r *Registry) List() []interfaces.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]interfaces.ComponentDefinition, 0, len(r.byName))
	for _, def := range r.byName {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports how many components are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func validateDefinition(def interfaces.ComponentDefinition) error {
	err := validation.ValidateStruct(&def,
		validation.Field(&def.Name, validation.Required,
			validation.Match(componentNamePattern).Error("must start with an uppercase letter and stay alphanumeric")),
		validation.Field(&def.Status, validation.Required, validation.In(
			interfaces.ComponentStatusImplemented,
			interfaces.ComponentStatusPlaceholder,
			interfaces.ComponentStatusNeedsWork,
			interfaces.ComponentStatusDeprecated,
		)),
		validation.Field(&def.Type, validation.Required, validation.In(
			interfaces.ComponentTypeBlock,
			interfaces.ComponentTypeInline,
			interfaces.ComponentTypeWrapper,
		)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Name, err)
	}
	return nil
}
