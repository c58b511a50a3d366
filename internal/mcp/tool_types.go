package mcp

// MetadataInput carries the optional tags attached to a stored observation.
type MetadataInput struct {
	Location                string `json:"location,omitempty" jsonschema:"Location identifier where the observation was made."`
	Timestamp               string `json:"timestamp,omitempty" jsonschema:"ISO-8601 timestamp of the observation. Defaults to the current time."`
	EnvironmentalConditions string `json:"environmentalConditions,omitempty" jsonschema:"Environmental conditions during the observation (lighting, weather, etc.)."`
}

// StoreInput is the input for store-robot-observation.
type StoreInput struct {
	Observation string         `json:"observation" jsonschema:"Detailed description of what the robot observes: surroundings, objects, spatial information, environmental conditions."`
	Metadata    *MetadataInput `json:"metadata,omitempty" jsonschema:"Optional location/timestamp/conditions tags. When present the observation is stored as a tagged block; when absent the raw text is stored verbatim."`
	UserID      string         `json:"userId,omitempty" jsonschema:"Identity to store the observation under. Defaults to the fixed robot identity."`
}

// SearchInput is the input for search-robot-observations.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"Natural language query describing what the robot is looking for."`
	UserID string `json:"userId,omitempty" jsonschema:"Identity whose observations are searched. Defaults to the fixed robot identity."`
}

// ChangesInput is the input for detect-environment-changes.
type ChangesInput struct {
	CurrentObservation string `json:"currentObservation" jsonschema:"The current observation to compare against previous ones at the same location."`
	Location           string `json:"location" jsonschema:"The location identifier to search for previous observations."`
	UserID             string `json:"userId,omitempty" jsonschema:"Identity whose observations are compared. Defaults to the fixed robot identity."`
}

// SpatialMapInput is the input for build-spatial-map.
type SpatialMapInput struct {
	UserID string `json:"userId,omitempty" jsonschema:"Identity whose observations are aggregated. Defaults to the fixed robot identity."`
}
