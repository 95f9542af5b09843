package db

import (
	"errors"
	"fmt"
)

// Domain-level database error sentinels.
var (
	// Keyword errors
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already exists")
)

// TransactionError reports that a multi-row all-or-nothing operation was
// rolled back. Nothing was persisted; the caller may retry the whole call.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s transaction rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
