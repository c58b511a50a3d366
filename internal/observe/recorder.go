package observe

import (
	"context"
	"log"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
)

// Recorder stores observations in the memory service.
type Recorder struct {
	svc memsvc.Service
}

// NewRecorder creates a new Recorder.
func NewRecorder(svc memsvc.Service) *Recorder {
	return &Recorder{svc: svc}
}

// Remember forwards an already-serialized observation to the memory service.
//
// Failures are logged and swallowed: the caller cannot distinguish a stored
// observation from a failed store, and the service-side identifier is never
// surfaced.
func (r *Recorder) Remember(ctx context.Context, content, userID string) {
	messages := []memsvc.Message{
		{Role: "system", Content: RoleAnnotation},
		{Role: "user", Content: content},
	}

	if _, err := r.svc.Add(ctx, messages, memsvc.AddOptions{UserID: userID}); err != nil {
		log.Printf("observe: failed to store observation: %v", err)
	}
}
