package mdx

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclosedTag indicates a component tag that was opened but never
	// closed before the document ended.
	ErrUnclosedTag = errors.New("mdx: unclosed component tag")
	// ErrUnmatchedClosingTag indicates a closing component tag with no open
	// tag to pair with.
	ErrUnmatchedClosingTag = errors.New("mdx: unmatched closing tag")
	// ErrMalformedTag indicates a component tag whose attributes could not
	// be parsed.
	ErrMalformedTag = errors.New("mdx: malformed component tag")
)

// TagError decorates a tag sentinel with the tag name and source position.
type TagError struct {
	Name string
	Line int
	Col  int
	err  error
}

func newTagError(err error, name string, source []byte, offset int) *TagError {
	line, col := Position(source, offset)
	return &TagError{Name: name, Line: line, Col: col, err: err}
}

func (e *TagError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v at %d:%d", e.err, e.Line, e.Col)
	}
	return fmt.Sprintf("%v: <%s> at %d:%d", e.err, e.Name, e.Line, e.Col)
}

func (e *TagError) Unwrap() error {
	return e.err
}
