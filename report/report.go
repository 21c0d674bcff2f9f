// Package report surfaces user-visible errors from the review
// coordinator. Errors are identified by stable catalog keys so the UI
// layer can localize and style them; each surfaced instance carries a
// unique id for dismissal tracking.
package report

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity ranks a surfaced error.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Catalog keys for the errors this core surfaces.
const (
	// KeyUserUnauthorized is surfaced after a security failure, once
	// re-authentication has completed or failed.
	KeyUserUnauthorized = "user.unauthorized"

	// KeyTaskUpdateFailure is surfaced when a review status mutation is
	// rejected for a non-security reason.
	KeyTaskUpdateFailure = "task.updateFailure"
)

// Descriptor is one surfaced error instance.
type Descriptor struct {
	// ID uniquely identifies this instance.
	ID string

	// Key is the stable catalog key.
	Key string

	Severity   Severity
	Message    string
	OccurredAt time.Time
}

// UserUnauthorized builds a user.unauthorized descriptor.
func UserUnauthorized() *Descriptor {
	return newDescriptor(KeyUserUnauthorized, SeverityError, "you are not authorized to perform this action")
}

// TaskUpdateFailure builds a task.updateFailure descriptor.
func TaskUpdateFailure() *Descriptor {
	return newDescriptor(KeyTaskUpdateFailure, SeverityError, "unable to update the task review status")
}

func newDescriptor(key string, severity Severity, message string) *Descriptor {
	return &Descriptor{
		ID:         uuid.NewString(),
		Key:        key,
		Severity:   severity,
		Message:    message,
		OccurredAt: time.Now(),
	}
}

// Reporter receives surfaced errors.
type Reporter interface {
	AddError(desc *Descriptor)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(desc *Descriptor)

// AddError calls the wrapped function.
func (f ReporterFunc) AddError(desc *Descriptor) {
	f(desc)
}

// MemoryReporter collects surfaced errors in memory, for tests and for
// UI layers that poll.
type MemoryReporter struct {
	mu     sync.Mutex
	errors []*Descriptor
}

// NewMemoryReporter creates an empty reporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

// AddError records the descriptor.
func (r *MemoryReporter) AddError(desc *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, desc)
}

// Errors returns all recorded descriptors in order.
func (r *MemoryReporter) Errors() []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Descriptor, len(r.errors))
	copy(out, r.errors)
	return out
}

// Dismiss removes the descriptor with the given instance id.
func (r *MemoryReporter) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, desc := range r.errors {
		if desc.ID == id {
			r.errors = append(r.errors[:i], r.errors[i+1:]...)
			return
		}
	}
}
