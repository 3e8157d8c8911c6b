package application

import (
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

// RunStart describes a plan about to be built.
type RunStart struct {
	RunID string
	Start hanoi.Configuration
	Steps int
	K     int
}

// StepEvent describes one decided step.
type StepEvent struct {
	RunID   string
	Index   int
	Action  hanoi.Action
	State   hanoi.Configuration
	Outcome Outcome
	Elapsed time.Duration
}

// RunEnd describes a finished plan. Err is set when planning failed.
type RunEnd struct {
	RunID   string
	Final   hanoi.Configuration
	Steps   int
	Err     error
	Elapsed time.Duration
}

// Observer receives planning progress. Calls are made from the planning
// goroutine in order.
type Observer interface {
	OnRunStart(RunStart)
	OnStep(StepEvent)
	OnRunEnd(RunEnd)
}

type noopObserver struct{}

func (noopObserver) OnRunStart(RunStart) {}
func (noopObserver) OnStep(StepEvent)    {}
func (noopObserver) OnRunEnd(RunEnd)     {}

// NoopObserver returns an observer that ignores all events.
func NoopObserver() Observer {
	return noopObserver{}
}

type progressObserver struct {
	w     io.Writer
	every int
	first int
}

// ProgressObserver writes human-readable progress to w. Step lines are
// written for the first ten steps and every hundredth step after that.
func ProgressObserver(w io.Writer) Observer {
	return &progressObserver{w: w, every: 100, first: 10}
}

func (p *progressObserver) OnRunStart(e RunStart) {
	fmt.Fprintf(p.w, "Starting MAKER with k=%d, %d steps...\n", e.K, e.Steps)
	fmt.Fprintf(p.w, "Initial state: %s\n", e.Start)
}

func (p *progressObserver) OnStep(e StepEvent) {
	if e.Index >= p.first && e.Index%p.every != 0 {
		return
	}
	fmt.Fprintf(p.w, "Step %d: Move %s, State: %s\n", e.Index, e.Action, e.State)
}

func (p *progressObserver) OnRunEnd(e RunEnd) {
	if e.Err != nil {
		fmt.Fprintf(p.w, "Failed after %d steps: %v\n", e.Steps, e.Err)
		return
	}
	fmt.Fprintf(p.w, "Final state: %s\n", e.Final)
}
