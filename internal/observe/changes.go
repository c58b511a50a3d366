package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// dedupPrefixLen is how many leading characters of the current
	// observation are used to filter the just-stored entry out of recall
	// results. Two distinct observations sharing this prefix are treated as
	// duplicates; that is accepted behavior.
	dedupPrefixLen = 50

	// maxPreviousObservations caps how many prior entries a report carries.
	maxPreviousObservations = 2
)

// PreviousObservation is a prior entry reported by change detection.
type PreviousObservation struct {
	Observation string  `json:"observation"`
	Relevance   float64 `json:"relevance"`
}

// ChangeReport is the result of comparing a new observation against prior
// observations at the same location.
type ChangeReport struct {
	CurrentObservation   string                `json:"current_observation"`
	Location             string                `json:"location"`
	Timestamp            string                `json:"timestamp"`
	PreviousObservations []PreviousObservation `json:"previous_observations"`
}

// NewTerritory reports whether no prior observations survived filtering.
func (r *ChangeReport) NewTerritory() bool {
	return len(r.PreviousObservations) == 0
}

// Render returns the text form of the report: the new-territory notice when
// nothing prior was found, otherwise the report as indented JSON.
func (r *ChangeReport) Render() (string, error) {
	if r.NewTerritory() {
		return fmt.Sprintf("No previous observations found at %s. This is new territory.", r.Location), nil
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render change report: %w", err)
	}
	return string(data), nil
}

// Detector compares new observations against stored ones.
type Detector struct {
	recorder  *Recorder
	retriever *Retriever
}

// NewDetector creates a new change Detector.
func NewDetector(recorder *Recorder, retriever *Retriever) *Detector {
	return &Detector{recorder: recorder, retriever: retriever}
}

// DetectChanges stores the current observation tagged with its location,
// then reports up to two of the most relevant prior observations at that
// location. The just-stored entry is filtered out by prefix match.
//
// Storage failures are swallowed by the Recorder and retrieval fails open,
// so detection itself never fails; an empty report means new territory.
func (d *Detector) DetectChanges(ctx context.Context, current, location, userID string) *ChangeReport {
	timestamp := time.Now().Format(time.RFC3339)

	// The Conditions line is deliberately omitted on this path; only the
	// Location line matters for later spatial grouping.
	content := fmt.Sprintf("Observation: %s\nLocation: %s\nTimestamp: %s", current, location, timestamp)
	d.recorder.Remember(ctx, content, userID)

	query := fmt.Sprintf("What did I previously observe at location %s?", location)
	results := d.retriever.Recall(ctx, query, userID)

	prefix := current
	if len(prefix) > dedupPrefixLen {
		prefix = prefix[:dedupPrefixLen]
	}

	report := &ChangeReport{
		CurrentObservation:   current,
		Location:             location,
		Timestamp:            timestamp,
		PreviousObservations: []PreviousObservation{},
	}

	for _, res := range results {
		if strings.Contains(res.Memory, prefix) {
			continue
		}
		report.PreviousObservations = append(report.PreviousObservations, PreviousObservation{
			Observation: res.Memory,
			Relevance:   res.Score,
		})
		if len(report.PreviousObservations) == maxPreviousObservations {
			break
		}
	}

	return report
}
