package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Remote assignment errors

// UnreachableError reports that no route exists from a base to a node under the
// allowed zone statuses. It is an expected outcome, not a fault.
type UnreachableError struct {
	*DomainError
	NodeID string
	Base   string
}

func NewUnreachableError(nodeID, base string) *UnreachableError {
	return &UnreachableError{
		DomainError: NewDomainError(fmt.Sprintf("node %s is unreachable from base %s", nodeID, base)),
		NodeID:      nodeID,
		Base:        base,
	}
}

// EvaluationError reports malformed input or missing zone/base data.
type EvaluationError struct {
	*DomainError
	NodeID string
	Cause  error
}

func NewEvaluationError(nodeID string, cause error) *EvaluationError {
	return &EvaluationError{
		DomainError: NewDomainError(fmt.Sprintf("failed to evaluate node %s: %v", nodeID, cause)),
		NodeID:      nodeID,
		Cause:       cause,
	}
}

func (e *EvaluationError) Unwrap() error { return e.Cause }

// PersistenceError reports that a route or assignment could not be written.
// The surrounding operation has been rolled back.
type PersistenceError struct {
	*DomainError
	Operation string
	Cause     error
}

func NewPersistenceError(operation string, cause error) *PersistenceError {
	return &PersistenceError{
		DomainError: NewDomainError(fmt.Sprintf("%s failed: %v", operation, cause)),
		Operation:   operation,
		Cause:       cause,
	}
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// InconsistentRegistryError signals that the global node->base map and a base's
// local records disagree. Never reconciled silently.
type InconsistentRegistryError struct {
	*DomainError
	NodeID string
	Base   string
}

func NewInconsistentRegistryError(nodeID, base, detail string) *InconsistentRegistryError {
	return &InconsistentRegistryError{
		DomainError: NewDomainError(fmt.Sprintf("registry inconsistent for node %s (base %q): %s", nodeID, base, detail)),
		NodeID:      nodeID,
		Base:        base,
	}
}
