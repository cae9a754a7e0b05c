package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// writeTestSnapshot writes a small four-way crossing snapshot and
// returns its path.
func writeTestSnapshot(t *testing.T) string {
	t.Helper()
	g := roadnet.New()

	center := orb.Point{137.95, 36.11}
	points := map[roadnet.NodeID]orb.Point{
		1: center,
		2: {center[0], center[1] + 0.002},
		3: {center[0] + 0.002, center[1]},
		4: {center[0], center[1] - 0.002},
		5: {center[0] - 0.002, center[1]},
	}
	for id, pt := range points {
		if err := g.AddNode(roadnet.Node{ID: id, Point: pt}); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}
	for _, v := range []roadnet.NodeID{2, 3, 4, 5} {
		err := g.AddEdge(roadnet.Edge{
			ID:   roadnet.EdgeID{U: 1, V: v},
			Attr: roadnet.Attributes{HighwayType: "residential", SpeedLimit: 30},
		})
		if err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := roadnet.WriteSnapshotFile(g, path); err != nil {
		t.Fatalf("WriteSnapshotFile failed: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestAnalyzeCommand(t *testing.T) {
	snapshot := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "junctions.json")

	err := runCommand(t, "analyze", snapshot, "-o", output, "--no-cache")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var reports []junctionReport
	if err := json.Unmarshal(data, &reports); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(reports) != 5 {
		t.Fatalf("junctions = %d, want 5", len(reports))
	}
	if reports[0].Node != 1 {
		t.Errorf("first node = %d, want 1", reports[0].Node)
	}
	if reports[0].Type != "CROSSROAD" {
		t.Errorf("center type = %q, want CROSSROAD", reports[0].Type)
	}
}

func TestAnalyzeCommandMissingSnapshot(t *testing.T) {
	err := runCommand(t, "analyze", filepath.Join(t.TempDir(), "nope.json"), "--no-cache")
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}

func TestNetworkCommand(t *testing.T) {
	snapshot := writeTestSnapshot(t)
	output := filepath.Join(t.TempDir(), "network.geojson")

	err := runCommand(t, "network", snapshot, "-o", output, "--mode", "all", "--no-cache")
	if err != nil {
		t.Fatalf("network failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("decode GeoJSON: %v", err)
	}
	if len(fc.Features) == 0 {
		t.Error("expected at least one polyline in the network")
	}
}

func TestNetworkCommandWithoutStoredFeatures(t *testing.T) {
	output := filepath.Join(t.TempDir(), "network.geojson")

	// In-memory store with no prior analyze run: evaluation sees no
	// edges and reports an empty network without failing.
	err := runCommand(t, "network", "-o", output, "--mode", "all", "--no-cache")
	if err != nil {
		t.Fatalf("network failed: %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file should be written for an empty network")
	}
}
