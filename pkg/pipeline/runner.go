package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb/geojson"

	"github.com/urbanpilot/oddnet/pkg/cache"
	"github.com/urbanpilot/oddnet/pkg/geomath"
	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/observability"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/provider"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
	"github.com/urbanpilot/oddnet/pkg/store"
)

// Runner encapsulates pipeline execution with storage and caching.
// Both CLI and API use this to avoid duplicating orchestration logic.
//
// The Runner is stateless apart from its collaborators - it doesn't
// hold run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Store    store.Store
	Cache    cache.Cache
	Keyer    cache.Keyer
	Provider provider.Provider
	Logger   *log.Logger

	// Source labels the snapshot provider in cache keys so snapshots
	// from different upstreams never collide.
	Source string
}

// NewRunner creates a runner with the given collaborators.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If s is nil, an in-memory store is used.
func NewRunner(s store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if s == nil {
		s = store.NewMemory()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  s,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Source: "snapshot",
	}
}

// Fetch resolves an extent to a road network graph through the
// configured provider, with snapshot caching. Returns the graph and
// whether it came from cache.
func (r *Runner) Fetch(ctx context.Context, extent provider.Extent, refresh bool) (*roadnet.Graph, bool, error) {
	if r.Provider == nil {
		return nil, false, fmt.Errorf("no snapshot provider configured")
	}
	if err := extent.Validate(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.SnapshotKey(r.Source, extent.KeyOpts())
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := roadnet.ReadSnapshot(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return g, true, nil
			}
			// Corrupt cached snapshot, refetch.
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	observability.Snapshot().OnFetchStart(ctx, r.Source)
	start := time.Now()
	g, err := r.Provider.Snapshot(ctx, extent)
	if err != nil {
		observability.Snapshot().OnFetchError(ctx, r.Source, err)
		return nil, false, err
	}
	observability.Snapshot().OnFetchComplete(ctx, r.Source, g.NodeCount(), g.EdgeCount(), time.Since(start))

	if data, err := roadnet.MarshalSnapshot(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}
	return g, false, nil
}

// Analyze classifies every junction in the graph, counts movement
// conflicts, builds corridors, and persists the results to the store.
func (r *Runner) Analyze(ctx context.Context, g *roadnet.Graph, opts Options) (*AnalyzeResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if opts.Overwrite {
		if err := r.Store.Drop(ctx); err != nil {
			return nil, fmt.Errorf("drop stored results: %w", err)
		}
	}

	observability.Analysis().OnAnalyzeStart(ctx, g.NodeCount())
	start := time.Now()

	results, err := junction.AnalyzeGraph(ctx, g, opts.JunctionConfig())
	if err != nil {
		observability.Analysis().OnAnalyzeComplete(ctx, 0, time.Since(start), err)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if err := r.persist(ctx, g, results, opts); err != nil {
		observability.Analysis().OnAnalyzeComplete(ctx, len(results), time.Since(start), err)
		return nil, err
	}

	duration := time.Since(start)
	observability.Analysis().OnAnalyzeComplete(ctx, len(results), duration, nil)
	r.Logger.Info("analyzed junctions",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"junctions", len(results),
		"duration", duration)

	return &AnalyzeResult{
		Junctions: results,
		Stats: AnalyzeStats{
			NodeCount:     g.NodeCount(),
			EdgeCount:     g.EdgeCount(),
			JunctionCount: len(results),
			Duration:      duration,
		},
	}, nil
}

// persist writes junction docs, per-node feature docs, and edge docs.
// All writes are idempotent upserts keyed by node or edge ID.
func (r *Runner) persist(ctx context.Context, g *roadnet.Graph, results map[roadnet.NodeID]*junction.Result, opts Options) error {
	ids := make([]roadnet.NodeID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	proximity := amenityFeatures(g, opts.SchoolZoneRadius, opts.ParkingLotRadius)

	for _, id := range ids {
		res := results[id]
		if err := r.Store.PutJunction(ctx, res); err != nil {
			return fmt.Errorf("store junction %d: %w", id, err)
		}
		feature := odd.JunctionFeature{Type: res.Type, Conflicts: res.Conflicts}
		if err := r.Store.AppendNodeFeature(ctx, id, feature); err != nil {
			return fmt.Errorf("store junction feature %d: %w", id, err)
		}
		node, ok := g.Node(id)
		if ok && node.Tags[roadnet.TagHighway] == roadnet.HighwayTrafficSignals {
			if err := r.Store.AppendNodeFeature(ctx, id, odd.TrafficSignalFeature{}); err != nil {
				return fmt.Errorf("store signal feature %d: %w", id, err)
			}
		}
		for _, f := range proximity[id] {
			if err := r.Store.AppendNodeFeature(ctx, id, f); err != nil {
				return fmt.Errorf("store %s feature %d: %w", f.Kind(), id, err)
			}
		}
	}

	for _, e := range g.Edges() {
		if err := r.Store.PutEdge(ctx, e); err != nil {
			return fmt.Errorf("store edge %s: %w", e.ID, err)
		}
	}
	return nil
}

// Network evaluates stored features against the compliance criteria and
// selects the largest connected compliant sub-network. An empty result
// collection means nothing satisfied the criteria; it is not an error.
func (r *Runner) Network(ctx context.Context, opts Options) (*NetworkResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	criteria, err := odd.ResolveCriteria(opts.Mode, opts.Predefined, opts.Criteria)
	if err != nil {
		return nil, err
	}

	edges, err := r.Store.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	features, err := r.Store.NodeFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	// The cached collection is keyed by the stored edge and feature
	// state plus the resolved criteria, so re-analysis or a changed
	// predefined set invalidates it naturally.
	cacheKey := r.Keyer.NetworkKey(storeStateHash(edges, features), opts.NetworkKeyOpts(criteria))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if result, ok := decodeCachedNetwork(data, len(edges)); ok {
				observability.Cache().OnCacheHit(ctx, "network")
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "network")
	}

	g := graphFromEdges(edges)

	observability.Analysis().OnEvaluateStart(ctx, len(edges))
	evalStart := time.Now()
	eval := odd.Evaluate(g, features, criteria)
	evalTime := time.Since(evalStart)
	observability.Analysis().OnEvaluateComplete(ctx, len(eval.CompliantEdges), evalTime, nil)

	observability.Analysis().OnSelectStart(ctx, len(eval.CompliantEdges))
	selStart := time.Now()
	polylines := odd.SelectLargest(eval.CompliantEdges, opts.SnapTolerance)
	selTime := time.Since(selStart)
	observability.Analysis().OnSelectComplete(ctx, len(polylines), selTime)

	fc := geojson.NewFeatureCollection()
	for _, line := range polylines {
		f := geojson.NewFeature(line)
		f.Properties["length_m"] = geomath.Length(line)
		fc.Append(f)
	}

	if data, err := encodeCachedNetwork(fc, len(eval.CompliantEdges)); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLNetwork); err == nil {
			observability.Cache().OnCacheSet(ctx, "network", len(data))
		}
	}

	r.Logger.Info("selected compliant network",
		"total_edges", len(edges),
		"compliant_edges", len(eval.CompliantEdges),
		"polylines", len(polylines),
		"duration", evalTime+selTime)

	return &NetworkResult{
		Collection: fc,
		Stats: NetworkStats{
			TotalEdges:     len(edges),
			CompliantEdges: len(eval.CompliantEdges),
			Polylines:      len(polylines),
			EvaluateTime:   evalTime,
			SelectTime:     selTime,
		},
	}, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// graphFromEdges rebuilds a graph from stored edge documents. Nodes are
// synthesized from edge endpoints; node tags are not needed here since
// node-level features come from the store.
func graphFromEdges(edges []*roadnet.Edge) *roadnet.Graph {
	g := roadnet.New()
	for _, e := range edges {
		if len(e.Geometry) < 2 {
			continue
		}
		// Duplicate nodes are fine, first write wins.
		_ = g.AddNode(roadnet.Node{ID: e.ID.U, Point: e.Geometry[0]})
		_ = g.AddNode(roadnet.Node{ID: e.ID.V, Point: e.Geometry[len(e.Geometry)-1]})
		_ = g.AddEdge(*e)
	}
	return g
}

// storeStateHash produces a deterministic digest of the stored edge IDs
// and feature documents. Any change to either yields a new cache key.
func storeStateHash(edges []*roadnet.Edge, features map[roadnet.NodeID][]odd.Feature) string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID.String()
	}
	sort.Strings(ids)

	nodes := make([]roadnet.NodeID, 0, len(features))
	for id := range features {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var b strings.Builder
	b.WriteString(strings.Join(ids, ","))
	for _, id := range nodes {
		fmt.Fprintf(&b, "|%d", id)
		for _, f := range features[id] {
			doc, _ := json.Marshal(f)
			b.WriteByte(':')
			b.WriteString(string(f.Kind()))
			b.Write(doc)
		}
	}
	return cache.Hash([]byte(b.String()))
}

// cachedNetwork is the stored form of a network result. It wraps the
// GeoJSON collection with the stats the collection alone cannot carry.
type cachedNetwork struct {
	Collection     json.RawMessage `json:"collection"`
	CompliantEdges int             `json:"compliant_edges"`
}

func encodeCachedNetwork(fc *geojson.FeatureCollection, compliantEdges int) ([]byte, error) {
	collection, err := fc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedNetwork{Collection: collection, CompliantEdges: compliantEdges})
}

func decodeCachedNetwork(data []byte, totalEdges int) (*NetworkResult, bool) {
	var entry cachedNetwork
	if err := json.Unmarshal(data, &entry); err != nil || entry.Collection == nil {
		return nil, false
	}
	fc, err := geojson.UnmarshalFeatureCollection(entry.Collection)
	if err != nil {
		return nil, false
	}
	return &NetworkResult{
		Collection: fc,
		Stats: NetworkStats{
			TotalEdges:     totalEdges,
			CompliantEdges: entry.CompliantEdges,
			Polylines:      len(fc.Features),
		},
		CacheHit: true,
	}, true
}
