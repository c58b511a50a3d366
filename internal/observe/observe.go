// Package observe implements robot observation recording, recall, change
// detection and spatial aggregation on top of the external memory service.
package observe

import (
	"fmt"
	"time"
)

const (
	// DefaultUserID is the fixed robot identity used when a caller does not
	// supply one.
	DefaultUserID = "navigation_robot"

	// RoleAnnotation is the system-level annotation sent alongside every
	// stored observation. It is constant for all calls.
	RoleAnnotation = "Robot navigation memory system"

	unknownLocation      = "unknown"
	unspecifiedCondition = "not specified"
)

// ProjectInstructions are the extraction instructions pushed to the memory
// service at startup so stored observations keep their navigation-relevant
// detail.
const ProjectInstructions = `
Extract the Following Information:

- Visual Observations: Detailed descriptions of what the robot sees in the environment
- Spatial Information: Locations, landmarks, and navigation points
- Object Details: Descriptions and characteristics of objects encountered
- Environmental Conditions: Lighting, weather, and other environmental factors
- Temporal Information: When observations were made and any time-dependent changes
`

// Metadata holds the optional tags attached to an observation.
type Metadata struct {
	Location   string
	Timestamp  string
	Conditions string
}

// FormatObservation serializes an observation for storage.
//
// With nil metadata the observation text is stored verbatim. With metadata
// present the serialized form is a four-line block with fixed line order,
// substituting defaults for absent fields. Downstream location extraction
// depends on the "Location:" line, so callers that need spatial grouping
// must always pass metadata.
func FormatObservation(text string, meta *Metadata) string {
	if meta == nil {
		return text
	}

	location := meta.Location
	if location == "" {
		location = unknownLocation
	}
	timestamp := meta.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}
	conditions := meta.Conditions
	if conditions == "" {
		conditions = unspecifiedCondition
	}

	return fmt.Sprintf("Observation: %s\nLocation: %s\nTimestamp: %s\nConditions: %s",
		text, location, timestamp, conditions)
}
