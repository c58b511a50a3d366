package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// fakeService is an in-memory memsvc.Service for testing tool handlers.
type fakeService struct {
	added      []string
	addedUsers []string
	searchRes  []memsvc.Result
	getAllRes  []memsvc.Entry
}

func (f *fakeService) Add(ctx context.Context, messages []memsvc.Message, opts memsvc.AddOptions) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			f.added = append(f.added, m.Content)
		}
	}
	f.addedUsers = append(f.addedUsers, opts.UserID)
	return "mem-1", nil
}

func (f *fakeService) Search(ctx context.Context, query string, opts memsvc.SearchOptions) ([]memsvc.Result, error) {
	return f.searchRes, nil
}

func (f *fakeService) GetAll(ctx context.Context, opts memsvc.GetAllOptions) ([]memsvc.Entry, error) {
	return f.getAllRes, nil
}

func (f *fakeService) UpdateProject(ctx context.Context, instructions string) error {
	return nil
}

func setupTestServer(t *testing.T) (*SDKServer, *fakeService) {
	t.Helper()
	svc := &fakeService{}
	server := NewSDKServer(SDKServerConfig{Service: svc})
	return server, svc
}

func resultText(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected single content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestNewSDKServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.MCP() == nil {
		t.Fatal("expected underlying SDK server")
	}
	if server.defaultUser != "navigation_robot" {
		t.Errorf("expected default robot identity, got %s", server.defaultUser)
	}
}

func TestHandleStoreRawText(t *testing.T) {
	server, svc := setupTestServer(t)

	result, _, err := server.handleStore(context.Background(), nil, StoreInput{
		Observation: "I see a chair",
	})
	if err != nil {
		t.Fatalf("handleStore failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if got := resultText(t, result); got != "Successfully stored observation: I see a chair" {
		t.Errorf("unexpected confirmation: %q", got)
	}
	if len(svc.added) != 1 || svc.added[0] != "I see a chair" {
		t.Errorf("expected raw text stored verbatim, got %v", svc.added)
	}
	if svc.addedUsers[0] != "navigation_robot" {
		t.Errorf("expected default user, got %s", svc.addedUsers[0])
	}
}

func TestHandleStoreWithMetadata(t *testing.T) {
	server, svc := setupTestServer(t)

	_, _, err := server.handleStore(context.Background(), nil, StoreInput{
		Observation: "I see a chair",
		Metadata: &MetadataInput{
			Location:                "living_room",
			Timestamp:               "2026-08-29T10:00:00Z",
			EnvironmentalConditions: "bright",
		},
		UserID: "nav_robot_2",
	})
	if err != nil {
		t.Fatalf("handleStore failed: %v", err)
	}

	want := "Observation: I see a chair\nLocation: living_room\nTimestamp: 2026-08-29T10:00:00Z\nConditions: bright"
	if len(svc.added) != 1 || svc.added[0] != want {
		t.Errorf("expected tagged block stored, got %v", svc.added)
	}
	if svc.addedUsers[0] != "nav_robot_2" {
		t.Errorf("expected caller-supplied user, got %s", svc.addedUsers[0])
	}
}

func TestHandleStoreTruncatesConfirmation(t *testing.T) {
	server, _ := setupTestServer(t)

	long := strings.Repeat("x", 80)
	result, _, err := server.handleStore(context.Background(), nil, StoreInput{Observation: long})
	if err != nil {
		t.Fatalf("handleStore failed: %v", err)
	}

	want := "Successfully stored observation: " + strings.Repeat("x", 50) + "..."
	if got := resultText(t, result); got != want {
		t.Errorf("expected truncated confirmation, got %q", got)
	}
}

func TestHandleStoreRequiresObservation(t *testing.T) {
	server, svc := setupTestServer(t)

	result, _, err := server.handleStore(context.Background(), nil, StoreInput{})
	if err != nil {
		t.Fatalf("handleStore failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing observation")
	}
	if len(svc.added) != 0 {
		t.Errorf("nothing should be stored, got %v", svc.added)
	}
}

func TestHandleSearchRendersResults(t *testing.T) {
	server, svc := setupTestServer(t)
	svc.searchRes = []memsvc.Result{
		{Memory: "I see a chair", Score: 0.92},
		{Memory: "Door is open", Score: 0.4},
	}

	result, _, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "Where is the chair?"})
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}

	got := resultText(t, result)
	if !strings.Contains(got, "Observation: I see a chair") {
		t.Errorf("expected observation line, got:\n%s", got)
	}
	if !strings.Contains(got, "Relevance: 0.92") {
		t.Errorf("expected relevance line, got:\n%s", got)
	}
	if n := strings.Count(got, "---"); n != 2 {
		t.Errorf("expected 2 separators, got %d", n)
	}
}

func TestHandleSearchNoResults(t *testing.T) {
	server, _ := setupTestServer(t)

	result, _, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}
	if got := resultText(t, result); got != "No relevant observations found" {
		t.Errorf("expected literal no-results message, got %q", got)
	}
}

func TestHandleChangesNewTerritory(t *testing.T) {
	server, svc := setupTestServer(t)

	result, _, err := server.handleChanges(context.Background(), nil, ChangesInput{
		CurrentObservation: "First look around",
		Location:           "basement",
	})
	if err != nil {
		t.Fatalf("handleChanges failed: %v", err)
	}

	if got := resultText(t, result); got != "No previous observations found at basement. This is new territory." {
		t.Errorf("unexpected new-territory message: %q", got)
	}
	if len(svc.added) != 1 || !strings.Contains(svc.added[0], "Location: basement") {
		t.Errorf("expected tagged observation stored first, got %v", svc.added)
	}
}

func TestHandleChangesReportsPrevious(t *testing.T) {
	server, svc := setupTestServer(t)
	svc.searchRes = []memsvc.Result{
		{Memory: "the couch was against the wall", Score: 0.9},
		{Memory: "a lamp stood in the corner", Score: 0.8},
		{Memory: "dust on the floor", Score: 0.2},
	}

	result, _, err := server.handleChanges(context.Background(), nil, ChangesInput{
		CurrentObservation: "The couch has moved to the center",
		Location:           "living_room",
	})
	if err != nil {
		t.Fatalf("handleChanges failed: %v", err)
	}

	var report struct {
		CurrentObservation   string `json:"current_observation"`
		Location             string `json:"location"`
		PreviousObservations []struct {
			Observation string  `json:"observation"`
			Relevance   float64 `json:"relevance"`
		} `json:"previous_observations"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("expected JSON report: %v", err)
	}
	if report.Location != "living_room" {
		t.Errorf("unexpected location: %s", report.Location)
	}
	if len(report.PreviousObservations) != 2 {
		t.Fatalf("expected 2 previous observations, got %d", len(report.PreviousObservations))
	}
	if report.PreviousObservations[0].Observation != "the couch was against the wall" {
		t.Errorf("expected recall order preserved, got %+v", report.PreviousObservations)
	}
}

func TestHandleChangesRequiredFields(t *testing.T) {
	server, _ := setupTestServer(t)

	result, _, _ := server.handleChanges(context.Background(), nil, ChangesInput{Location: "x"})
	if !result.IsError {
		t.Error("expected error result for missing currentObservation")
	}

	result, _, _ = server.handleChanges(context.Background(), nil, ChangesInput{CurrentObservation: "x"})
	if !result.IsError {
		t.Error("expected error result for missing location")
	}
}

func TestHandleSpatialMap(t *testing.T) {
	server, svc := setupTestServer(t)
	svc.getAllRes = []memsvc.Entry{
		{ID: "1", Memory: "Location: A\nfoo"},
		{ID: "2", Memory: "Location: A\nbar"},
		{ID: "3", Memory: "baz"},
	}

	result, _, err := server.handleSpatialMap(context.Background(), nil, SpatialMapInput{})
	if err != nil {
		t.Fatalf("handleSpatialMap failed: %v", err)
	}

	var report struct {
		SpatialMap        map[string][]string `json:"spatial_map"`
		LocationCount     int                 `json:"location_count"`
		TotalObservations int                 `json:"total_observations"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("expected JSON report: %v", err)
	}
	if report.LocationCount != 2 || report.TotalObservations != 3 {
		t.Errorf("unexpected counts: %+v", report)
	}
	if len(report.SpatialMap["A"]) != 2 || len(report.SpatialMap["unknown"]) != 1 {
		t.Errorf("unexpected grouping: %+v", report.SpatialMap)
	}
}

func TestEndToEndStoreThenSearch(t *testing.T) {
	server, svc := setupTestServer(t)

	_, _, err := server.handleStore(context.Background(), nil, StoreInput{
		Observation: "I see a chair",
		Metadata:    &MetadataInput{Location: "living_room"},
	})
	if err != nil {
		t.Fatalf("handleStore failed: %v", err)
	}

	// The fake plays the service's part: the stored text comes back ranked.
	svc.searchRes = []memsvc.Result{{Memory: svc.added[0], Score: 0.95}}

	result, _, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "Where is the chair?"})
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}

	got := resultText(t, result)
	if !strings.Contains(got, "I see a chair") {
		t.Errorf("expected stored observation in output:\n%s", got)
	}
	if !strings.Contains(got, "Relevance:") {
		t.Errorf("expected relevance line in output:\n%s", got)
	}
}
