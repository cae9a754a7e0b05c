package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/paulmach/orb/geojson"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/provider"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// ===== Requests and responses =====

type extentRequest struct {
	Kind  string  `json:"kind"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Dist  float64 `json:"dist"`
}

type queryRequest struct {
	Extent  extentRequest `json:"extent"`
	Refresh bool          `json:"refresh"`
}

type queryResponse struct {
	Nodes    int  `json:"nodes"`
	Edges    int  `json:"edges"`
	CacheHit bool `json:"cache_hit"`
}

type junctionResult struct {
	Node      int64          `json:"node"`
	Lon       float64        `json:"lon"`
	Lat       float64        `json:"lat"`
	Type      string         `json:"junc_type"`
	Conflicts map[string]int `json:"conflict_counter"`
}

type junctionResponse struct {
	Junctions         []junctionResult    `json:"junctions"`
	FeatureDictionary map[string][]string `json:"feature_dictionary"`
}

type networkResponse struct {
	Network *geojson.FeatureCollection `json:"network"`
	Stats   networkStats               `json:"stats"`
	Message string                     `json:"message,omitempty"`
}

type networkStats struct {
	TotalEdges     int  `json:"total_edges"`
	CompliantEdges int  `json:"compliant_edges"`
	Polylines      int  `json:"polylines"`
	CacheHit       bool `json:"cache_hit"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ===== Handlers =====

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "oddnet",
		"endpoints": []string{
			"GET /",
			"GET /healthz",
			"POST /query",
			"POST /junction",
			"POST /network",
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	extent, err := toExtent(req.Extent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, hit, err := s.runner.Fetch(r.Context(), extent, req.Refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// A new extent starts a fresh working set.
	if err := s.runner.Store.Drop(r.Context()); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to reset stored results"))
		return
	}
	s.setGraph(g, extent)

	writeJSON(w, http.StatusOK, queryResponse{
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		CacheHit: hit,
	})
}

func (s *Server) handleJunction(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadedGraph()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	if err := decodeBody(r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Analyze(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := junctionResponse{
		Junctions:         make([]junctionResult, 0, len(result.Junctions)),
		FeatureDictionary: featureDictionary(),
	}
	for _, node := range sortedNodeIDs(result.Junctions) {
		res := result.Junctions[node]
		counts := make(map[string]int, len(res.Conflicts))
		for kind, n := range res.Conflicts {
			counts[string(kind)] = n
		}
		resp.Junctions = append(resp.Junctions, junctionResult{
			Node:      int64(res.Node),
			Lon:       res.Point[0],
			Lat:       res.Point[1],
			Type:      string(res.Type),
			Conflicts: counts,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults
	if err := decodeBody(r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Network(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := networkResponse{
		Network: result.Collection,
		Stats: networkStats{
			TotalEdges:     result.Stats.TotalEdges,
			CompliantEdges: result.Stats.CompliantEdges,
			Polylines:      len(result.Collection.Features),
			CacheHit:       result.CacheHit,
		},
	}
	if len(result.Collection.Features) == 0 {
		resp.Message = "no compliant road network found for the given criteria"
	}
	writeJSON(w, http.StatusOK, resp)
}

// ===== Helpers =====

// decodeBody decodes a JSON request body into v. An empty body is
// allowed and leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "malformed request body")
}

func toExtent(req extentRequest) (provider.Extent, error) {
	var extent provider.Extent
	switch provider.ExtentKind(req.Kind) {
	case provider.ExtentBBox:
		extent = provider.BBoxExtent(req.West, req.South, req.East, req.North)
	case provider.ExtentPoint:
		extent = provider.PointExtent(req.Lon, req.Lat, req.Dist)
	default:
		return extent, apperrors.New(apperrors.ErrCodeInvalidExtent, "unknown extent kind %q", req.Kind)
	}
	return extent, extent.Validate()
}

// featureDictionary lists the possible values per feature attribute,
// for clients building criteria forms.
func featureDictionary() map[string][]string {
	types := make([]string, 0, 5)
	for _, t := range []junction.Type{
		junction.TypeRoundabout,
		junction.TypeT,
		junction.TypeY,
		junction.TypeCrossroad,
		junction.TypeOther,
	} {
		types = append(types, string(t))
	}
	kinds := make([]string, 0, 3)
	for _, k := range []junction.ConflictKind{
		junction.ConflictIntersect,
		junction.ConflictMerge,
		junction.ConflictNoConflict,
	} {
		kinds = append(kinds, string(k))
	}
	return map[string][]string{
		"junc_type":        types,
		"conflict_counter": kinds,
		"school_zone":      {"true", "false"},
		"parking_lot":      {"true", "false"},
		"traffic_signals":  {"true", "false"},
	}
}

func sortedNodeIDs(m map[roadnet.NodeID]*junction.Result) []roadnet.NodeID {
	ids := make([]roadnet.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed",
			"id", RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err)
	}
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: apperrors.UserMessage(err),
	}})
}

// statusForCode maps structured error codes onto HTTP statuses.
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidExtent,
		apperrors.ErrCodeInvalidCriteria,
		apperrors.ErrCodeInvalidMode,
		apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeExtentNotLoaded:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
