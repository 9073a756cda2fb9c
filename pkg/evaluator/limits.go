package evaluator

import "fmt"

// Limits bounds a single evaluation. Zero means unlimited.
type Limits struct {
	MaxCallDepth      int   `yaml:"maxCallDepth,omitempty" json:"maxCallDepth,omitempty"`
	MaxLoopIterations int64 `yaml:"maxLoopIterations,omitempty" json:"maxLoopIterations,omitempty"`
}

// usage tracks consumption against Limits during evaluation.
type usage struct {
	depth      int
	iterations int64
}

func (ev *Evaluator) enterCall() *ErrorSignal {
	if limit := ev.opts.Limits.MaxCallDepth; limit > 0 && ev.usage.depth >= limit {
		return &ErrorSignal{Message: fmt.Sprintf("call depth exceeded (max %d)", limit)}
	}
	ev.usage.depth++
	return nil
}

func (ev *Evaluator) leaveCall() {
	ev.usage.depth--
}

func (ev *Evaluator) countIteration() *ErrorSignal {
	ev.usage.iterations++
	if limit := ev.opts.Limits.MaxLoopIterations; limit > 0 && ev.usage.iterations > limit {
		return &ErrorSignal{Message: fmt.Sprintf("loop iteration limit exceeded (max %d)", limit)}
	}
	return nil
}
