package types

import "errors"

// Domain errors for chunk validation
var (
	ErrMissingID         = errors.New("chunk ID is required")
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrMissingSourceFile = errors.New("source file is required")
	ErrInvalidDocType    = errors.New("invalid doc type")
	ErrMissingMetadata   = errors.New("metadata is required")
)
