package interfaces

// ComponentStatus tracks how far along the destination implementation of a
// component is. Only implemented components produce blocks or placeholder
// tokens; everything else is reported.
type ComponentStatus string

const (
	ComponentStatusImplemented ComponentStatus = "implemented"
	ComponentStatusPlaceholder ComponentStatus = "placeholder"
	ComponentStatusNeedsWork   ComponentStatus = "needs-work"
	ComponentStatusDeprecated  ComponentStatus = "deprecated"
)

// ComponentType describes the structural role a component plays in source
// documents.
type ComponentType string

const (
	// ComponentTypeBlock components become standalone typed blocks.
	ComponentTypeBlock ComponentType = "block"
	// ComponentTypeInline components are encoded inside rich text.
	ComponentTypeInline ComponentType = "inline"
	// ComponentTypeWrapper components contribute structure only; their
	// children are hoisted and converted in place.
	ComponentTypeWrapper ComponentType = "wrapper"
)

// ComponentDefinition is one entry of the component capability registry.
type ComponentDefinition struct {
	Name         string          `json:"name"`
	Status       ComponentStatus `json:"status"`
	Type         ComponentType   `json:"type"`
	RenderBlock  bool            `json:"renderBlock"`
	RenderInline bool            `json:"renderInline"`
	Fields       []string        `json:"fields,omitempty"`
}

// Implemented reports whether the destination can render the component.
func (d ComponentDefinition) Implemented() bool {
	return d.Status == ComponentStatusImplemented
}

// IsWrapper reports whether the component only provides structure.
func (d ComponentDefinition) IsWrapper() bool {
	return d.Type == ComponentTypeWrapper
}

// ComponentRegistry answers capability questions during conversion. The
// registry is injected; the pipeline never hardcodes component knowledge.
type ComponentRegistry interface {
	// Lookup returns the definition for name. Lookup misses classify the
	// component as unmapped.
	Lookup(name string) (ComponentDefinition, bool)
	// List returns every known definition, sorted by name.
	List() []ComponentDefinition
}
