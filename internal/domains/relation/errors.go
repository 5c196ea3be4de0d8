package relation

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeNotInRelation    = "NOT_IN_RELATION"
	ErrCodeSelfSubscription = "SELF_SUBSCRIPTION"
)

var (
	ErrAlreadyExists    = errors.New("relation already exists")
	ErrNotInRelation    = errors.New("relation does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
)

// RelationError is a client error of a toggle operation.
// Field, when set, keys the message in the error details.
type RelationError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *RelationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RelationError) Unwrap() error {
	return e.Err
}

func NewAlreadyExistsError(kind Kind) *RelationError {
	return &RelationError{
		Code:    ErrCodeAlreadyExists,
		Message: kind.ExistsMessage,
		Err:     ErrAlreadyExists,
	}
}

func NewNotInRelationError(kind Kind) *RelationError {
	return &RelationError{
		Code:    ErrCodeNotInRelation,
		Message: kind.MissingMessage,
		Err:     ErrNotInRelation,
	}
}

func NewSelfSubscriptionError() *RelationError {
	return &RelationError{
		Code:    ErrCodeSelfSubscription,
		Message: "You cannot subscribe to yourself",
		Field:   "author",
		Err:     ErrSelfSubscription,
	}
}
