package observe

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
)

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Location: living_room", "living_room"},
		{"Observation: foo\nLocation: dock\nTimestamp: x", "dock"},
		{"location: lowercase works", "lowercase works"},
		{"LOCATION:   padded   ", "padded"},
		{"Location: first\nLocation: second", "first"},
		{"no tag here", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := ExtractLocation(tt.text); got != tt.want {
			t.Errorf("ExtractLocation(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestBuildSpatialMapGrouping(t *testing.T) {
	svc := &fakeService{
		getAllRes: []memsvc.Entry{
			{ID: "1", Memory: "Location: A\nfoo"},
			{ID: "2", Memory: "Location: A\nbar"},
			{ID: "3", Memory: "baz"},
		},
	}
	aggregator := NewAggregator(svc)

	report, err := aggregator.BuildSpatialMap(context.Background(), "nav_robot_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.LocationCount != 2 {
		t.Errorf("expected 2 locations, got %d", report.LocationCount)
	}
	if report.TotalObservations != 3 {
		t.Errorf("expected 3 observations, got %d", report.TotalObservations)
	}
	if got := report.SpatialMap.Locations(); !reflect.DeepEqual(got, []string{"A", "unknown"}) {
		t.Errorf("expected first-seen order [A unknown], got %v", got)
	}
	if got := report.SpatialMap.Get("A"); !reflect.DeepEqual(got, []string{"Location: A\nfoo", "Location: A\nbar"}) {
		t.Errorf("unexpected group A: %v", got)
	}
	if got := report.SpatialMap.Get("unknown"); !reflect.DeepEqual(got, []string{"baz"}) {
		t.Errorf("unexpected unknown group: %v", got)
	}
}

func TestBuildSpatialMapBoundedPage(t *testing.T) {
	svc := &fakeService{}
	aggregator := NewAggregator(svc)

	if _, err := aggregator.BuildSpatialMap(context.Background(), "u"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.getAllOpts.Page != 1 {
		t.Errorf("expected page 1, got %d", svc.getAllOpts.Page)
	}
	if svc.getAllOpts.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", svc.getAllOpts.PageSize)
	}
	if svc.getAllOpts.UserID != "u" {
		t.Errorf("expected user u, got %s", svc.getAllOpts.UserID)
	}
}

func TestBuildSpatialMapListingFailure(t *testing.T) {
	svc := &fakeService{getAllErr: errors.New("boom")}
	aggregator := NewAggregator(svc)

	report, err := aggregator.BuildSpatialMap(context.Background(), "u")
	if err == nil {
		t.Fatal("expected error on listing failure")
	}
	if report != nil {
		t.Errorf("expected no partial map, got %+v", report)
	}
}

func TestSpatialMapMarshalPreservesOrder(t *testing.T) {
	spatial := NewSpatialMap()
	spatial.Add("zeta", "Location: zeta\nfoo")
	spatial.Add("alpha", "Location: alpha\nbar")
	spatial.Add("zeta", "Location: zeta\nbaz")

	data, err := spatial.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got := string(data)
	zeta := strings.Index(got, `"zeta"`)
	alpha := strings.Index(got, `"alpha"`)
	if zeta == -1 || alpha == -1 || zeta > alpha {
		t.Errorf("expected first-seen key order, got %s", got)
	}
}

func TestSpatialReportRender(t *testing.T) {
	spatial := NewSpatialMap()
	spatial.Add("A", "Location: A\nfoo")

	report := &SpatialReport{
		SpatialMap:        spatial,
		LocationCount:     1,
		TotalObservations: 1,
	}

	rendered, err := report.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(rendered, `"spatial_map"`) {
		t.Errorf("expected spatial_map field, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "\n  \"location_count\": 1") {
		t.Errorf("expected two-space indented JSON, got:\n%s", rendered)
	}
}
