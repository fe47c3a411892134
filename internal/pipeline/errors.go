package pipeline

import (
	"errors"
	"fmt"

	"github.com/ComparePower/go-payload-migrate/blocks"
	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrUnmappedComponent marks a tag with no registry entry at all.
	ErrUnmappedComponent = errors.New("pipeline: component is not in the registry")
	// ErrUnsupportedUsage marks a registered component used in a position
	// its capabilities do not cover.
	ErrUnsupportedUsage = errors.New("pipeline: component does not support this usage")
	// ErrNotImplemented marks a registered component whose destination
	// implementation is not ready.
	ErrNotImplemented = errors.New("pipeline: component mapping is not implemented")
	// ErrMalformedDocument marks source that could not be parsed at all.
	ErrMalformedDocument = errors.New("pipeline: document could not be parsed")
)

const (
	componentUnmappedCode       = "MIGRATE_COMPONENT_UNMAPPED"
	componentUsageCode          = "MIGRATE_COMPONENT_UNSUPPORTED_USAGE"
	componentNotImplementedCode = "MIGRATE_COMPONENT_NOT_IMPLEMENTED"
	documentParseCode           = "MIGRATE_DOCUMENT_PARSE_FAILED"
	conversionFailedCode        = "MIGRATE_RICHTEXT_CONVERSION_FAILED"
)

// ComponentError is the fail-fast diagnostic for a component the pipeline
// cannot place. Hint tells the operator what registry change unblocks the
// document.
type ComponentError struct {
	Name  string
	Usage blocks.ComponentUsage
	Line  int
	Col   int
	Hint  string
	Err   error
}

func (e *ComponentError) Error() string {
	msg := fmt.Sprintf("%v: %s used as %s", e.Err, e.Name, e.Usage)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at %d:%d", msg, e.Line, e.Col)
	}
	if e.Hint != "" {
		msg = msg + " (" + e.Hint + ")"
	}
	return msg
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

func unmappedComponent(name string, usage blocks.ComponentUsage, line, col int) *ComponentError {
	return &ComponentError{
		Name:  name,
		Usage: usage,
		Line:  line,
		Col:   col,
		Hint:  fmt.Sprintf("add a registry entry for %q declaring its type and capabilities", name),
		Err:   ErrUnmappedComponent,
	}
}

func unsupportedUsage(name string, usage blocks.ComponentUsage, line, col int) *ComponentError {
	return &ComponentError{
		Name:  name,
		Usage: usage,
		Line:  line,
		Col:   col,
		Hint:  fmt.Sprintf("extend the registry entry for %q to allow %s rendering", name, usage),
		Err:   ErrUnsupportedUsage,
	}
}

func notImplemented(name string, usage blocks.ComponentUsage, line, col int) *ComponentError {
	return &ComponentError{
		Name:  name,
		Usage: usage,
		Line:  line,
		Col:   col,
		Hint:  fmt.Sprintf("finish the destination mapping for %q and mark it implemented", name),
		Err:   ErrNotImplemented,
	}
}

func wrapComponentError(err *ComponentError) error {
	code := componentUnmappedCode
	switch {
	case errors.Is(err, ErrUnsupportedUsage):
		code = componentUsageCode
	case errors.Is(err, ErrNotImplemented):
		code = componentNotImplementedCode
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "component cannot be migrated").
		WithTextCode(code)
}

func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(
		fmt.Errorf("%w: %w", ErrMalformedDocument, err),
		goerrors.CategoryValidation,
		"document parse failed",
	).WithTextCode(documentParseCode)
}

func wrapConversionError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "rich text conversion failed").
		WithTextCode(conversionFailedCode)
}
