package cad

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// StepKind is the boolean or rigid operation of a pipeline Step.
type StepKind int

const (
	StepFuse StepKind = iota
	StepCut
	StepRotate
)

func (k StepKind) String() string {
	switch k {
	case StepFuse:
		return "fuse"
	case StepCut:
		return "cut"
	case StepRotate:
		return "rotate"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one labelled operation of a Pipeline.
type Step struct {
	Label string
	Kind  StepKind
	// Tool is the operand of fuse and cut steps.
	Tool Solid
	// Center, Axis and AngleDeg describe rotate steps.
	Center, Axis r3.Vec
	AngleDeg     float64
}

func (st Step) apply(s Solid) (Solid, error) {
	switch st.Kind {
	case StepFuse:
		return s.Fuse(st.Tool)
	case StepCut:
		return s.Cut(st.Tool)
	case StepRotate:
		return s.Rotate(st.Center, st.Axis, st.AngleDeg)
	}
	return Solid{}, fmt.Errorf("cad: unknown step kind %v", st.Kind)
}

// Pipeline is an ordered list of operations applied to a base solid.
// Building a pipeline folds the steps over the base in order; the base
// and tools are never modified so a pipeline may be built any number of
// times.
type Pipeline struct {
	base  Solid
	steps []Step
}

// NewPipeline returns an empty pipeline starting from base.
func NewPipeline(base Solid) *Pipeline {
	return &Pipeline{base: base}
}

// Fuse appends a union with tool.
func (p *Pipeline) Fuse(label string, tool Solid) *Pipeline {
	return p.add(Step{Label: label, Kind: StepFuse, Tool: tool})
}

// Cut appends a subtraction of tool.
func (p *Pipeline) Cut(label string, tool Solid) *Pipeline {
	return p.add(Step{Label: label, Kind: StepCut, Tool: tool})
}

// Rotate appends a rotation of the accumulated solid by angleDeg degrees
// about the line through center with direction axis.
func (p *Pipeline) Rotate(label string, center, axis r3.Vec, angleDeg float64) *Pipeline {
	return p.add(Step{Label: label, Kind: StepRotate, Center: center, Axis: axis, AngleDeg: angleDeg})
}

func (p *Pipeline) add(st Step) *Pipeline {
	p.steps = append(p.steps, st)
	return p
}

// Steps returns a copy of the pipeline's steps in application order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Build folds all steps over the base solid and returns the result.
// The first failing step aborts the build; its label is part of the error.
func (p *Pipeline) Build() (Solid, error) {
	s := p.base
	if s.IsEmpty() {
		return Solid{}, ErrEmptySolid
	}
	for i, st := range p.steps {
		var err error
		s, err = st.apply(s)
		if err != nil {
			return Solid{}, fmt.Errorf("step %d %q: %w", i, st.Label, err)
		}
	}
	return s, nil
}

// Trace is like Build but returns the solid after every step.
// The last element equals the result of Build.
func (p *Pipeline) Trace() ([]Solid, error) {
	s := p.base
	if s.IsEmpty() {
		return nil, ErrEmptySolid
	}
	trace := make([]Solid, 0, len(p.steps))
	for i, st := range p.steps {
		var err error
		s, err = st.apply(s)
		if err != nil {
			return trace, fmt.Errorf("step %d %q: %w", i, st.Label, err)
		}
		trace = append(trace, s)
	}
	return trace, nil
}
