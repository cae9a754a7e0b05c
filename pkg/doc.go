// Package pkg provides the core libraries for oddnet road network analysis.
//
// # Overview
//
// Oddnet decides which parts of a road network an automated vehicle may
// operate in. It classifies junctions, counts conflicting movements,
// evaluates edges against operational design domain criteria, and
// extracts the largest connected compliant sub-network. The pkg
// directory is organized into three main areas:
//
//  1. Domain logic (road graphs, junction analysis, compliance evaluation)
//  2. Infrastructure (stores, caches, snapshot providers)
//  3. Orchestration (pipeline used by CLI and HTTP server)
//
// # Architecture
//
// The typical data flow through oddnet:
//
//	Snapshot source (HTTP endpoint or local file)
//	         ↓
//	    [roadnet] package (graph structure + snapshot codec)
//	         ↓
//	    [junction] package (classification, conflicts, corridors)
//	         ↓
//	    [odd] package (criteria evaluation + network selection)
//	         ↓
//	    GeoJSON FeatureCollection output
//
// # Quick Start
//
// Analyze a snapshot and extract the compliant network:
//
//	import (
//	    "context"
//	    "github.com/urbanpilot/oddnet/pkg/pipeline"
//	    "github.com/urbanpilot/oddnet/pkg/roadnet"
//	)
//
//	// 1. Load a road network snapshot
//	g, _ := roadnet.ReadSnapshotFile("snapshot.json")
//
//	// 2. Analyze junctions and persist features
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	_, _ = runner.Analyze(context.Background(), g, pipeline.Options{})
//
//	// 3. Evaluate criteria and select the largest compliant network
//	result, _ := runner.Network(context.Background(), pipeline.Options{})
//	data, _ := result.Collection.MarshalJSON()
//
// # Main Packages
//
// ## Domain Logic
//
// [roadnet] - Directed road graph with node tags and edge attributes,
// plus the JSON snapshot format used for interchange and caching.
//
// [junction] - Junction analysis: type classification (T, Y, crossroad,
// roundabout), movement conflict counting from a total conflict policy
// table, and junction corridor construction.
//
// [odd] - Operational design domain criteria, per-edge compliance
// evaluation, and largest connected sub-network selection.
//
// [geomath] - Geodesic helpers shared by the analysis: bearings,
// lengths, line trimming, and corridor buffering.
//
// ## Infrastructure
//
// [store] - Persistence for junction, node feature and edge documents.
// Memory store for CLI and tests, MongoDB store for server deployments.
//
// [cache] - Snapshot and network result caching with null, file and
// Redis backends plus deterministic key derivation.
//
// [provider] - Road network snapshot sources: an HTTP provider with
// retries and a file provider for local snapshots.
//
// [httputil] - Retry with backoff and retryable error classification.
//
// [errors] - Structured error codes and input validation shared by the
// CLI and the HTTP API.
//
// [observability] - Hook interfaces for analysis, cache and snapshot
// instrumentation with no-op defaults.
//
// ## Orchestration
//
// [pipeline] - Complete analysis pipeline (fetch → analyze → network)
// used by CLI and server. Ensures consistent behavior across all entry
// points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/junction/...     # Specific package
//
// [roadnet]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/roadnet
// [junction]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/junction
// [odd]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/odd
// [geomath]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/geomath
// [store]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/store
// [cache]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/cache
// [provider]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/provider
// [httputil]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/errors
// [observability]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/urbanpilot/oddnet/pkg/pipeline
package pkg
