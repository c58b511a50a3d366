package observe

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
)

// NoResultsMessage is rendered when a recall produced no hits.
const NoResultsMessage = "No relevant observations found"

// Retriever searches stored observations in the memory service.
type Retriever struct {
	svc memsvc.Service
}

// NewRetriever creates a new Retriever.
func NewRetriever(svc memsvc.Service) *Retriever {
	return &Retriever{svc: svc}
}

// Recall performs semantic search over stored observations. Retrieval is
// fail-open: on a remote failure the error is logged and an empty list is
// returned, degrading to "no memories found". Result order is the service's
// ranking order and is not re-sorted here.
func (r *Retriever) Recall(ctx context.Context, query, userID string) []memsvc.Result {
	results, err := r.svc.Search(ctx, query, memsvc.SearchOptions{UserID: userID})
	if err != nil {
		log.Printf("observe: search failed: %v", err)
		return nil
	}
	return results
}

// RenderResults renders ranked search results as human-readable text.
func RenderResults(results []memsvc.Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	lines := make([]string, 0, len(results)*3)
	for _, res := range results {
		lines = append(lines,
			fmt.Sprintf("Observation: %s", res.Memory),
			fmt.Sprintf("Relevance: %v", res.Score),
			"---")
	}
	return strings.Join(lines, "\n")
}
