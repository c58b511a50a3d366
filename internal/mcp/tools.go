package mcp

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/robomem/internal/observe"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// storedSnippetLen is how much of the observation the store confirmation
// echoes back.
const storedSnippetLen = 50

// handleStore handles the store-robot-observation tool.
func (s *SDKServer) handleStore(ctx context.Context, req *sdkmcp.CallToolRequest, input StoreInput) (*sdkmcp.CallToolResult, any, error) {
	if input.Observation == "" {
		return errorResult("Error: 'observation' parameter is required."), nil, nil
	}

	var meta *observe.Metadata
	if input.Metadata != nil {
		meta = &observe.Metadata{
			Location:   input.Metadata.Location,
			Timestamp:  input.Metadata.Timestamp,
			Conditions: input.Metadata.EnvironmentalConditions,
		}
	}

	content := observe.FormatObservation(input.Observation, meta)
	s.recorder.Remember(ctx, content, s.user(input.UserID))

	snippet := input.Observation
	if len(snippet) > storedSnippetLen {
		snippet = snippet[:storedSnippetLen] + "..."
	}
	return textResult(fmt.Sprintf("Successfully stored observation: %s", snippet)), nil, nil
}

// handleSearch handles the search-robot-observations tool.
func (s *SDKServer) handleSearch(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, any, error) {
	if input.Query == "" {
		return errorResult("Error: 'query' parameter is required."), nil, nil
	}

	results := s.retriever.Recall(ctx, input.Query, s.user(input.UserID))
	return textResult(observe.RenderResults(results)), nil, nil
}

// handleChanges handles the detect-environment-changes tool.
func (s *SDKServer) handleChanges(ctx context.Context, req *sdkmcp.CallToolRequest, input ChangesInput) (*sdkmcp.CallToolResult, any, error) {
	if input.CurrentObservation == "" {
		return errorResult("Error: 'currentObservation' parameter is required."), nil, nil
	}
	if input.Location == "" {
		return errorResult("Error: 'location' parameter is required."), nil, nil
	}

	report := s.detector.DetectChanges(ctx, input.CurrentObservation, input.Location, s.user(input.UserID))

	rendered, err := report.Render()
	if err != nil {
		return errorResult(fmt.Sprintf("Error detecting changes: %v", err)), nil, nil
	}
	return textResult(rendered), nil, nil
}

// handleSpatialMap handles the build-spatial-map tool.
func (s *SDKServer) handleSpatialMap(ctx context.Context, req *sdkmcp.CallToolRequest, input SpatialMapInput) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.aggregator.BuildSpatialMap(ctx, s.user(input.UserID))
	if err != nil {
		return errorResult("Error building spatial map"), nil, nil
	}

	rendered, err := report.Render()
	if err != nil {
		return errorResult("Error building spatial map"), nil, nil
	}
	return textResult(rendered), nil, nil
}
