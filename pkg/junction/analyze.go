package junction

import (
	"context"
	"sync"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// AnalyzeGraph runs the full junction analysis (classification, conflict
// counts, corridor) for every node of the graph.
//
// Nodes are independent, so the work is spread over Config.Workers
// goroutines; the graph is only read. Results are collected into a map keyed
// by node ID, so the output is identical regardless of scheduling. Returns
// the context error if the context is canceled before all nodes finish.
func AnalyzeGraph(ctx context.Context, g *roadnet.Graph, cfg Config) (map[roadnet.NodeID]*Result, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	nodes := g.Nodes()
	jobs := make(chan *roadnet.Node, len(nodes))
	results := make(chan *Result, len(nodes))

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results <- AnalyzeNode(g, node.ID, cfg)
			}
		}()
	}

	for _, node := range nodes {
		jobs <- node
	}
	close(jobs)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[roadnet.NodeID]*Result, len(nodes))
	for r := range results {
		out[r.Node] = r
	}
	return out, nil
}

// AnalyzeNode runs the full analysis for one node.
func AnalyzeNode(g *roadnet.Graph, id roadnet.NodeID, cfg Config) *Result {
	node, _ := g.Node(id)
	r := &Result{
		Node:      id,
		Type:      Classify(g, id, cfg),
		Conflicts: Analyze(g, id, cfg),
		Corridor:  Corridor(g, id, cfg),
	}
	if node != nil {
		r.Point = node.Point
	}
	return r
}
