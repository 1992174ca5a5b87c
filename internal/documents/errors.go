package documents

import "errors"

var (
	ErrNotFound           = errors.New("document not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCompleted          = errors.New("document review already completed")
	ErrFileType           = errors.New("file type not allowed")
	ErrNoEditedFile       = errors.New("no edited file available")
)
