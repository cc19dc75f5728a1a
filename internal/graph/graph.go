// Package graph builds the ffmpeg filter_complex that labels every clip and
// chains them together with video and audio cross-fades.
//
// Stream names are never written by hand. A Graph hands out typed Node
// handles and only renders them to ffmpeg's [name] syntax when the stage list
// is serialized.
package graph

import (
	"fmt"
	"strings"
)

// Kind is the media type carried by a stream
type Kind int

const (
	Video Kind = iota
	Audio
)

func (k Kind) String() string {
	if k == Audio {
		return "audio"
	}
	return "video"
}

// specifier is the ffmpeg stream specifier letter
func (k Kind) specifier() string {
	if k == Audio {
		return "a"
	}
	return "v"
}

// Pad is a stream a stage can read from
type Pad interface {
	Kind() Kind
	Label() string
}

// Input is a raw stream of the input file at Index
type Input struct {
	Index  int
	Stream Kind
}

func (in Input) Kind() Kind { return in.Stream }

func (in Input) Label() string {
	return fmt.Sprintf("[%d:%s]", in.Index, in.Stream.specifier())
}

// Node is an intermediate stream produced by exactly one stage
type Node struct {
	kind Kind
	name string
}

func (n Node) Kind() Kind { return n.kind }

// Name returns the bare identifier, e.g. xv2
func (n Node) Name() string { return n.name }

// Label returns the identifier in filtergraph link syntax, e.g. [xv2]
func (n Node) Label() string { return "[" + n.name + "]" }

func (n Node) String() string { return n.Label() }

// role fixes the name prefix and media type of a family of nodes
type role struct {
	prefix string
	kind   Kind
}

var (
	labelled   = role{prefix: "v", kind: Video}
	normalized = role{prefix: "a", kind: Audio}
	videoFade  = role{prefix: "xv", kind: Video}
	audioFade  = role{prefix: "xa", kind: Audio}
)

// Stage is one filter reading Inputs and writing Output
type Stage struct {
	Inputs []Pad
	Filter string
	Output Node
}

// Name returns the filter name without its options
func (s Stage) Name() string {
	name, _, _ := strings.Cut(s.Filter, "=")
	return name
}

func (s Stage) String() string {
	var sb strings.Builder
	for _, in := range s.Inputs {
		sb.WriteString(in.Label())
	}
	sb.WriteString(s.Filter)
	sb.WriteString(s.Output.Label())
	return sb.String()
}

// Graph is an append-only list of stages with collision-free node names
type Graph struct {
	stages []Stage
	names  map[string]struct{}
}

// New creates an empty graph
func New() *Graph {
	return &Graph{names: make(map[string]struct{})}
}

// node allocates the handle for role r at index i. Asking for the same name
// twice is a programming error.
func (g *Graph) node(r role, i int) Node {
	name := fmt.Sprintf("%s%d", r.prefix, i)
	if _, taken := g.names[name]; taken {
		panic(fmt.Sprintf("graph: node %s allocated twice", name))
	}
	g.names[name] = struct{}{}
	return Node{kind: r.kind, name: name}
}

// add appends a stage after checking that every input matches the output kind
func (g *Graph) add(filter string, out Node, inputs ...Pad) {
	for _, in := range inputs {
		if in.Kind() != out.kind {
			panic(fmt.Sprintf("graph: %s input %s feeds %s output %s", in.Kind(), in.Label(), out.kind, out.Label()))
		}
	}
	g.stages = append(g.stages, Stage{
		Inputs: inputs,
		Filter: filter,
		Output: out,
	})
}

// Stages returns a copy of the stage list
func (g *Graph) Stages() []Stage {
	out := make([]Stage, len(g.stages))
	copy(out, g.stages)
	return out
}

// String serializes the graph as a filter_complex argument
func (g *Graph) String() string {
	parts := make([]string, len(g.stages))
	for i, s := range g.stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}
