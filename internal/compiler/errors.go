package compiler

import "fmt"

// ParseError locates a failure inside a program file.
// Index is the top-level statement index, or -1 for document-level errors.
type ParseError struct {
	File  string
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", file, e.Err)
	}
	return fmt.Sprintf("%s: statement %d: %v", file, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
