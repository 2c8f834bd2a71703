package error

import "fmt"

// Phase identifies which pipeline stage raised a PipelineError.
type Phase string

const (
	PhaseTrace      = Phase("trace")
	PhaseTreeMiner  = Phase("tree-miner")
	PhaseGeneralize = Phase("generalize")
	PhaseAssemble   = Phase("assemble")
	PhaseOracle     = Phase("oracle")
	PhaseConfig     = Phase("config")
)

// PipelineError wraps a failure with the phase and, when available, the
// input (seed path or candidate string) that was being processed.
type PipelineError struct {
	Cause error
	Phase Phase
	Input string
}

func (e *PipelineError) Error() string {
	switch {
	case e.Phase == "" && e.Input == "":
		return fmt.Sprintf("error: %v", e.Cause)
	case e.Input == "":
		return fmt.Sprintf("%v: error: %v", e.Phase, e.Cause)
	default:
		return fmt.Sprintf("%v [%v]: error: %v", e.Phase, e.Input, e.Cause)
	}
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// PipelineErrors collects multiple non-fatal errors recorded while a phase
// kept running (e.g. skipped trace records), mirroring how the teacher
// attributes a batch of parse errors to one compile invocation.
type PipelineErrors []*PipelineError

func (es PipelineErrors) Error() string {
	if len(es) == 0 {
		return "no errors"
	}
	return fmt.Sprintf("%v (and %d more)", es[0].Error(), len(es)-1)
}
