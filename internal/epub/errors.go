package epub

import "errors"

// Sentinel errors for EPUB packaging.
var (
	// ErrTemplate indicates an OPF or NCX template failed to parse or render.
	ErrTemplate = errors.New("invalid package template")

	// ErrDuplicateFile indicates two files with the same archive path.
	ErrDuplicateFile = errors.New("duplicate file in package")

	// ErrFinished indicates use of a Writer after Finish.
	ErrFinished = errors.New("package already finished")

	// ErrWrite indicates the underlying archive could not be written.
	ErrWrite = errors.New("failed to write package")
)
