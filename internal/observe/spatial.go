package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
)

// spatialPageSize bounds how many stored entries a spatial map covers.
// Entries beyond the first page are silently excluded; this is a known
// scale limitation of the bounded-page contract, not a bug.
const spatialPageSize = 50

// locationPattern extracts the rest of the first "Location:" line,
// case-insensitive.
var locationPattern = regexp.MustCompile(`(?i)location:\s*(.+)`)

// ExtractLocation returns the location key of a stored observation text.
// Entries without an extractable location map to "unknown".
func ExtractLocation(text string) string {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return unknownLocation
	}
	return strings.TrimSpace(m[1])
}

// SpatialMap groups observation texts by location key, preserving the
// first-seen order of locations. A plain map would lose that order in JSON
// output, so serialization is done by hand.
type SpatialMap struct {
	keys   []string
	groups map[string][]string
}

// NewSpatialMap creates an empty SpatialMap.
func NewSpatialMap() *SpatialMap {
	return &SpatialMap{groups: make(map[string][]string)}
}

// Add appends an observation text under a location key.
func (m *SpatialMap) Add(location, text string) {
	if _, ok := m.groups[location]; !ok {
		m.keys = append(m.keys, location)
	}
	m.groups[location] = append(m.groups[location], text)
}

// Get returns the observation texts stored under a location key.
func (m *SpatialMap) Get(location string) []string {
	return m.groups[location]
}

// Len returns the number of distinct location keys.
func (m *SpatialMap) Len() int {
	return len(m.keys)
}

// Locations returns the location keys in first-seen order.
func (m *SpatialMap) Locations() []string {
	return m.keys
}

// MarshalJSON serializes the map as a JSON object with keys in first-seen
// order.
func (m *SpatialMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(m.groups[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SpatialReport is the result of aggregating stored observations by
// location.
type SpatialReport struct {
	SpatialMap        *SpatialMap `json:"spatial_map"`
	LocationCount     int         `json:"location_count"`
	TotalObservations int         `json:"total_observations"`
}

// Render returns the report as indented JSON.
func (r *SpatialReport) Render() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render spatial report: %w", err)
	}
	return string(data), nil
}

// Aggregator builds spatial maps from stored observations.
type Aggregator struct {
	svc memsvc.Service
}

// NewAggregator creates a new spatial Aggregator.
func NewAggregator(svc memsvc.Service) *Aggregator {
	return &Aggregator{svc: svc}
}

// BuildSpatialMap lists up to one page of stored observations for a user
// and groups them by extracted location key. A failed listing yields an
// error rather than a partial map.
func (a *Aggregator) BuildSpatialMap(ctx context.Context, userID string) (*SpatialReport, error) {
	entries, err := a.svc.GetAll(ctx, memsvc.GetAllOptions{
		UserID:   userID,
		Page:     1,
		PageSize: spatialPageSize,
	})
	if err != nil {
		log.Printf("observe: listing failed: %v", err)
		return nil, fmt.Errorf("build spatial map: %w", err)
	}

	spatial := NewSpatialMap()
	for _, entry := range entries {
		spatial.Add(ExtractLocation(entry.Memory), entry.Memory)
	}

	return &SpatialReport{
		SpatialMap:        spatial,
		LocationCount:     spatial.Len(),
		TotalObservations: len(entries),
	}, nil
}
