package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

func testGraph(t *testing.T) *roadnet.Graph {
	t.Helper()
	g := roadnet.New()
	for id, pt := range map[roadnet.NodeID]orb.Point{
		1: {137.95, 36.11},
		2: {137.951, 36.11},
	} {
		if err := g.AddNode(roadnet.Node{ID: id, Point: pt}); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}
	err := g.AddEdge(roadnet.Edge{
		ID:   roadnet.EdgeID{U: 1, V: 2},
		Attr: roadnet.Attributes{HighwayType: "residential"},
	})
	if err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	return g
}

func TestExtentValidate(t *testing.T) {
	cases := []struct {
		name    string
		extent  Extent
		wantErr bool
	}{
		{"valid bbox", BBoxExtent(137.9, 36.1, 138.0, 36.2), false},
		{"inverted bbox", BBoxExtent(138.0, 36.1, 137.9, 36.2), true},
		{"bbox out of range", BBoxExtent(-190, 36.1, 138.0, 36.2), true},
		{"valid point", PointExtent(137.95, 36.11, 1000), false},
		{"zero distance", PointExtent(137.95, 36.11, 0), true},
		{"excessive distance", PointExtent(137.95, 36.11, 1e6), true},
		{"bad latitude", PointExtent(137.95, 96, 1000), true},
		{"unknown kind", Extent{Kind: "polygon"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.extent.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := roadnet.WriteSnapshotFile(testGraph(t), path); err != nil {
		t.Fatalf("WriteSnapshotFile failed: %v", err)
	}

	p := NewFile(path)
	g, err := p.Snapshot(context.Background(), BBoxExtent(137.9, 36.1, 138.0, 36.2))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("expected 2 nodes / 1 edge, got %d / %d", g.NodeCount(), g.EdgeCount())
	}
}

func TestFileProviderMissing(t *testing.T) {
	p := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	_, err := p.Snapshot(context.Background(), PointExtent(137.95, 36.11, 500))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if apperrors.GetCode(err) != apperrors.ErrCodeFileNotFound {
		t.Errorf("expected file-not-found code, got %v", apperrors.GetCode(err))
	}
}

func TestFileProviderRejectsBadExtent(t *testing.T) {
	p := NewFile("irrelevant.json")
	_, err := p.Snapshot(context.Background(), PointExtent(137.95, 36.11, -5))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperrors.GetCode(err) != apperrors.ErrCodeInvalidExtent {
		t.Errorf("expected invalid-extent code, got %v", apperrors.GetCode(err))
	}
}

func TestHTTPProvider(t *testing.T) {
	snapshot, err := roadnet.MarshalSnapshot(testGraph(t))
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}

	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(snapshot)
	}))
	defer srv.Close()

	p, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}

	g, err := p.Snapshot(context.Background(), BBoxExtent(137.9, 36.1, 138.0, 36.2))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.NodeCount())
	}

	query, _ := gotQuery.Load().(string)
	if query != "bbox=137.9%2C36.1%2C138%2C36.2" {
		t.Errorf("unexpected query: %s", query)
	}
}

func TestHTTPProviderRetriesServerErrors(t *testing.T) {
	snapshot, err := roadnet.MarshalSnapshot(testGraph(t))
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(snapshot)
	}))
	defer srv.Close()

	p, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}

	g, err := p.Snapshot(context.Background(), PointExtent(137.95, 36.11, 500))
	if err != nil {
		t.Fatalf("Snapshot failed after retry: %v", err)
	}
	if g == nil || g.NodeCount() != 2 {
		t.Error("expected graph after retry")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestHTTPProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}

	_, err = p.Snapshot(context.Background(), PointExtent(137.95, 36.11, 500))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 request, got %d", calls.Load())
	}
}

func TestNewHTTPRequiresBaseURL(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
