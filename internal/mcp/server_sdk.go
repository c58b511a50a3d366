// Package mcp exposes the robot observation tools over the Model Context
// Protocol using the official SDK.
package mcp

import (
	"context"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
	"github.com/abdul-hamid-achik/robomem/internal/observe"
	"github.com/abdul-hamid-achik/robomem/internal/version"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SDKServer wraps the official MCP SDK server around the observation
// components.
type SDKServer struct {
	server      *sdkmcp.Server
	recorder    *observe.Recorder
	retriever   *observe.Retriever
	detector    *observe.Detector
	aggregator  *observe.Aggregator
	defaultUser string
}

// SDKServerConfig contains configuration for the SDK-based MCP server.
type SDKServerConfig struct {
	Service     memsvc.Service
	DefaultUser string
}

// NewSDKServer creates a new MCP server exposing the four observation tools.
func NewSDKServer(cfg SDKServerConfig) *SDKServer {
	recorder := observe.NewRecorder(cfg.Service)
	retriever := observe.NewRetriever(cfg.Service)

	s := &SDKServer{
		recorder:    recorder,
		retriever:   retriever,
		detector:    observe.NewDetector(recorder, retriever),
		aggregator:  observe.NewAggregator(cfg.Service),
		defaultUser: cfg.DefaultUser,
	}
	if s.defaultUser == "" {
		s.defaultUser = observe.DefaultUserID
	}

	s.server = sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "robomem",
		Version: version.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: "robomem stores and recalls robot navigation observations through a managed memory service. " +
			"Use store-robot-observation to persist what the robot sees (include metadata with a location whenever known), " +
			"search-robot-observations to recall relevant prior observations, " +
			"detect-environment-changes to compare a new observation with prior ones at the same location, " +
			"and build-spatial-map to group stored observations by location.",
	})

	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name: "store-robot-observation",
		Description: "Store a robot observation for later semantic recall. Include visual descriptions, " +
			"spatial information, object properties, environmental conditions and the time of observation. " +
			"Pass metadata with a location whenever the robot knows where it is.",
	}, s.handleStore)

	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name: "search-robot-observations",
		Description: "Search stored robot observations with a natural language query. Returns previously " +
			"observed objects, landmarks, spatial information and changes over time, ranked by relevance.",
	}, s.handleSearch)

	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name: "detect-environment-changes",
		Description: "Compare a current observation with previous observations at the same location. " +
			"Stores the current observation, then reports up to two of the most relevant prior entries, " +
			"or flags the location as new territory.",
	}, s.handleChanges)

	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name: "build-spatial-map",
		Description: "Group stored observations by their location tag into a naive spatial map. " +
			"Covers up to the 50 most recently listed observations.",
	}, s.handleSpatialMap)

	return s
}

// MCP returns the underlying SDK server, for mounting on HTTP transports.
func (s *SDKServer) MCP() *sdkmcp.Server {
	return s.server
}

// Run starts the MCP server on stdio.
func (s *SDKServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdkmcp.StdioTransport{})
}

// user resolves a per-call user identity against the configured default.
func (s *SDKServer) user(userID string) string {
	if userID == "" {
		return s.defaultUser
	}
	return userID
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
		IsError: true,
	}
}
