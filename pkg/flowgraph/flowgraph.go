// Package flowgraph implements the DAB physical-layer encoder as a
// directed acyclic graph of single-threaded stages. Topology is fixed
// at construction; Run executes stages in topological order once per
// invocation, moving byte buffers along edges.
package flowgraph

import "github.com/dbehnke/dabmod/pkg/daberr"

// Stage is one node of the flowgraph. Process consumes the buffers on
// its input edges and writes to its output edges, returning the
// number of output buffers actually produced: 0 means the call
// consumed input but produced no output yet (a CIF phase drop, or
// accumulation of CIFs within one transmission frame); >0 means
// output is ready on the stage's output edge(s).
type Stage interface {
	Name() string
	Process(inputs [][]byte, outputs [][]byte) (int, error)
}

// edge carries at most one buffer between two stages, mirroring the
// flowgraph's single-producer/single-consumer ownership rule: a buffer
// moves from producer to consumer and is never shared.
type edge struct {
	buf []byte
}

// Graph is a fixed topology of stages connected by edges, run in
// construction order (the caller is responsible for adding stages in
// a topologically valid order; this package does not sort them).
type Graph struct {
	stages []Stage
	edges  map[Stage][]*edge // each stage's output edges, one per stage
	inputs map[Stage][]*edge // each stage's input edges
}

// NewGraph returns an empty flowgraph.
func NewGraph() *Graph {
	return &Graph{
		edges:  make(map[Stage][]*edge),
		inputs: make(map[Stage][]*edge),
	}
}

// AddStage appends a stage to the graph's run order.
func (g *Graph) AddStage(s Stage) {
	g.stages = append(g.stages, s)
}

// Connect wires producer's output edge index outIdx to consumer's
// input edge index inIdx. Both stages must already have been added.
func (g *Graph) Connect(producer Stage, outIdx int, consumer Stage, inIdx int) {
	e := &edge{}
	out := g.edges[producer]
	for len(out) <= outIdx {
		out = append(out, nil)
	}
	out[outIdx] = e
	g.edges[producer] = out

	in := g.inputs[consumer]
	for len(in) <= inIdx {
		in = append(in, nil)
	}
	in[inIdx] = e
	g.inputs[consumer] = in
}

// Feed places buf directly on stage's input edge inIdx, used to inject
// the flowgraph's source data (the collected ETI frame) at the first stage.
func (g *Graph) Feed(stage Stage, inIdx int, buf []byte) {
	in := g.inputs[stage]
	for len(in) <= inIdx {
		in = append(in, nil)
	}
	if in[inIdx] == nil {
		in[inIdx] = &edge{}
	}
	in[inIdx].buf = buf
	g.inputs[stage] = in
}

// Output returns the buffer currently sitting on stage's output edge
// outIdx, or nil if the stage has not produced output yet.
func (g *Graph) Output(stage Stage, outIdx int) []byte {
	out := g.edges[stage]
	if outIdx >= len(out) || out[outIdx] == nil {
		return nil
	}
	return out[outIdx].buf
}

// Run executes every stage once, in the order stages were added,
// reading each stage's input edges and writing its produced output
// (if any) back onto its output edges. It returns, per stage, the
// outcome from Stage.Process so a caller can tell a transmission
// frame was completed (non-zero on the terminal stage) from a
// still-accumulating pass (zero).
func (g *Graph) Run() ([]int, error) {
	outcomes := make([]int, len(g.stages))
	for i, s := range g.stages {
		inEdges := g.inputs[s]
		inputs := make([][]byte, len(inEdges))
		for j, e := range inEdges {
			if e != nil {
				inputs[j] = e.buf
			}
		}

		outEdges := g.edges[s]
		outputs := make([][]byte, len(outEdges))

		n, err := s.Process(inputs, outputs)
		if err != nil {
			return outcomes, daberr.NewInvariant("flowgraph: stage %q: %v", s.Name(), err)
		}
		outcomes[i] = n

		for j, e := range outEdges {
			if e != nil {
				e.buf = outputs[j]
			}
		}
	}
	return outcomes, nil
}
