// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernels

import (
	"container/heap"
	"math"
	"slices"

	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
)

// A graph is a ragged array var * var * {node, cost}: row i lists the edges
// leaving node i, each edge being the index of the target node and the cost
// of the edge.

func graphKernels() []*dispatch.Kernel {
	return []*dispatch.Kernel{{
		Op:   "single_source_shortest_paths",
		Name: "single_source_shortest_paths",
		Sig: dispatch.Sig(
			dispatch.P(dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()), dispatch.Ragged),
			dispatch.P(dispatch.AnyInteger(), dispatch.Scalar),
		),
		Fn: shortestPaths,
	}}
}

type (
	edge struct {
		to   int
		cost float64
	}

	// queueItem is a tentative distance to a node. Items are never updated:
	// a node is pushed again when its distance decreases and stale items are
	// skipped when popped.
	queueItem struct {
		node int
		dist float64
		seq  int
	}

	distQueue []queueItem
)

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// readGraph returns the adjacency lists of a graph.
// It checks that every edge has a non-negative cost and a target in the graph.
func readGraph(g *array.View) ([][]edge, error) {
	layout := g.Ragged()
	if layout.NDim() != 2 {
		return nil, dispatch.InvalidArgument("a graph has 2 dimensions, got %d", layout.NDim())
	}
	fields := g.Kind().Fields()
	nodeField, costField := fields[0], fields[1]
	nodeTag, costTag := nodeField.Kind.Tag(), costField.Kind.Tag()
	b := g.Buffer()
	n := g.Len()
	adj := make([][]edge, n)
	for i := range n {
		lo, hi := layout.Row(0, layout.Start+i)
		for j := lo; j < hi; j++ {
			off := g.LeafOffset(j)
			to := b.Int(nodeTag, off+nodeField.Offset)
			cost := b.Float(costTag, off+costField.Offset)
			if to < 0 || to >= int64(n) {
				return nil, dispatch.InvalidArgument("edge %d of node %d: node %d out of range [0, %d)", j-lo, i, to, n)
			}
			if cost < 0 || math.IsNaN(cost) {
				return nil, dispatch.InvalidArgument("edge %d of node %d: invalid cost %v (must be a non-negative number)", j-lo, i, cost)
			}
			adj[i] = append(adj[i], edge{to: int(to), cost: cost})
		}
	}
	return adj, nil
}

// dijkstra returns the predecessor of every node on a shortest path from start,
// -1 for the start node and for unreachable nodes, and the distance to every node.
// When two paths have the same cost, the path found first is kept.
func dijkstra(adj [][]edge, start int) (pred []int, dist []float64) {
	n := len(adj)
	pred = make([]int, n)
	dist = make([]float64, n)
	for i := range n {
		pred[i], dist[i] = -1, math.Inf(1)
	}
	done := make([]bool, n)
	dist[start] = 0
	seq := 0
	q := &distQueue{{node: start}}
	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		u := item.node
		if done[u] || item.dist > dist[u] {
			continue
		}
		done[u] = true
		for _, e := range adj[u] {
			d := dist[u] + e.cost
			if d < dist[e.to] {
				dist[e.to], pred[e.to] = d, u
				seq++
				heap.Push(q, queueItem{node: e.to, dist: d, seq: seq})
			}
		}
	}
	return pred, dist
}

func shortestPaths(alloc array.Allocator, args []*array.View) (*array.View, error) {
	g, s := args[0], args[1]
	adj, err := readGraph(g)
	if err != nil {
		return nil, err
	}
	start := s.Buffer().Int(s.Kind().Tag(), s.Offset())
	if start < 0 || start >= int64(len(adj)) {
		return nil, dispatch.InvalidArgument("start node %d out of range [0, %d)", start, len(adj))
	}
	pred, dist := dijkstra(adj, int(start))

	paths := make([][]int, len(adj))
	offsets := make([]int, len(adj)+1)
	for v := range adj {
		if !math.IsInf(dist[v], 1) {
			for u := v; u >= 0; u = pred[u] {
				paths[v] = append(paths[v], u)
			}
			slices.Reverse(paths[v])
		}
		offsets[v+1] = offsets[v] + len(paths[v])
	}
	nodeKind := g.Kind().Fields()[0].Kind
	z, err := alloc.Ragged(nodeKind, array.NewRagged(len(adj), offsets))
	if err != nil {
		return nil, err
	}
	zb, tag := z.Buffer(), nodeKind.Tag()
	for v, path := range paths {
		for i, u := range path {
			zb.SetInt(tag, z.LeafOffset(offsets[v]+i), int64(u))
		}
	}
	return z, nil
}
