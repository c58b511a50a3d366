// Package memsvc provides access to the external managed-memory service
// that stores and semantically searches robot observations.
package memsvc

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for the memory service.
var (
	ErrServiceUnavailable = errors.New("memory service unavailable")
	ErrUnauthorized       = errors.New("memory service rejected credentials")
	ErrRateLimited        = errors.New("rate limited by memory service")
	ErrEmptyContent       = errors.New("cannot store empty content")
	ErrEmptyQuery         = errors.New("cannot search with empty query")
	ErrContextCanceled    = errors.New("memory service operation canceled")
)

// Message is a single role-tagged message sent to the service on store.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AddOptions contains options for storing memories.
type AddOptions struct {
	UserID string
}

// SearchOptions contains options for semantic search.
type SearchOptions struct {
	UserID string
}

// GetAllOptions contains options for listing stored memories.
type GetAllOptions struct {
	UserID   string
	Page     int
	PageSize int
}

// Result is a ranked search hit returned by the service. Score is an opaque
// relevance measure; the service returns results already rank-sorted.
type Result struct {
	ID     string  `json:"id"`
	Memory string  `json:"memory"`
	Score  float64 `json:"score"`
}

// Entry is a stored memory returned by a listing call.
type Entry struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
}

// Service defines the operations this codebase consumes from the external
// memory service. The service is the sole system of record; implementations
// must not cache results locally.
type Service interface {
	// Add stores messages under the given user and returns the service-side
	// identifier of the created memory (may be empty if the service does not
	// report one).
	Add(ctx context.Context, messages []Message, opts AddOptions) (string, error)

	// Search performs semantic search over stored memories. Results are
	// returned in the service's ranking order.
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)

	// GetAll lists stored memories for a user, one page at a time.
	GetAll(ctx context.Context, opts GetAllOptions) ([]Entry, error)

	// UpdateProject pushes project-level custom instructions to the service.
	UpdateProject(ctx context.Context, instructions string) error
}

// ServiceError wraps errors with operation context.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("memsvc: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(op string, err error) error {
	return &ServiceError{Op: op, Err: err}
}
