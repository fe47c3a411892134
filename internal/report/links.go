package report

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// LinkOptions configures the go-urlkit backed admin link builder.
type LinkOptions struct {
	Manager        *urlkit.RouteManager
	Group          string
	DocumentRoute  string
	ComponentRoute string
	SlugParam      string
	LocaleParam    string
	NameParam      string
}

// LinkBuilder builds deep links into the destination backend's admin UI so a
// report reader can jump straight to a published document or to the registry
// page for an unhandled component. A nil builder produces no links.
type LinkBuilder struct {
	manager *urlkit.RouteManager

	group          string
	documentRoute  string
	componentRoute string
	slugParam      string
	localeParam    string
	nameParam      string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewLinkBuilder constructs a link builder backed by go-urlkit.
func NewLinkBuilder(opts LinkOptions) *LinkBuilder {
	if opts.SlugParam == "" {
		opts.SlugParam = "slug"
	}
	if opts.NameParam == "" {
		opts.NameParam = "name"
	}

	return &LinkBuilder{
		manager: opts.Manager,

		group:          strings.TrimSpace(opts.Group),
		documentRoute:  strings.TrimSpace(opts.DocumentRoute),
		componentRoute: strings.TrimSpace(opts.ComponentRoute),
		slugParam:      opts.SlugParam,
		localeParam:    strings.TrimSpace(opts.LocaleParam),
		nameParam:      opts.NameParam,

		groupCache: make(map[string]*urlkit.Group),
	}
}

// DocumentURL builds the admin link for a published document. Missing
// configuration yields an empty URL, not an error.
func (b *LinkBuilder) DocumentURL(slug, locale string) (string, error) {
	if b == nil || b.manager == nil || b.group == "" || b.documentRoute == "" {
		return "", nil
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", nil
	}

	group, err := b.groupForPath(b.group)
	if err != nil || group == nil {
		return "", err
	}

	builder, err := b.safeBuilder(group, b.documentRoute)
	if err != nil {
		return "", err
	}

	builder.WithParam(b.slugParam, slug)
	if b.localeParam != "" && strings.TrimSpace(locale) != "" {
		builder.WithParam(b.localeParam, strings.TrimSpace(locale))
	}
	return builder.Build()
}

// ComponentURL builds the admin link for an unhandled component, typically
// the registry page where its mapping would be added.
func (b *LinkBuilder) ComponentURL(name string) (string, error) {
	if b == nil || b.manager == nil || b.group == "" || b.componentRoute == "" {
		return "", nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	group, err := b.groupForPath(b.group)
	if err != nil || group == nil {
		return "", err
	}

	builder, err := b.safeBuilder(group, b.componentRoute)
	if err != nil {
		return "", err
	}

	builder.WithParam(b.nameParam, name)
	return builder.Build()
}

func (b *LinkBuilder) groupForPath(path string) (*urlkit.Group, error) {
	b.mu.RLock()
	group, ok := b.groupCache[path]
	b.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return nil, fmt.Errorf("report: invalid route group path %q", path)
	}

	root, err := lookupGroup(b.manager, parts[0])
	if err != nil {
		return nil, err
	}
	current := root
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	b.groupCache[path] = current
	b.mu.Unlock()
	return current, nil
}

// safeBuilder shields callers from urlkit's panic on unknown routes.
func (b *LinkBuilder) safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("report: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("report: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("report: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("report: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("report: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("report: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}
