package sim

// Stage is one part of a fixed step.
type Stage interface {
	FixedStep(step uint64, dt float64)
}

// StageFunc adapts a function to Stage.
type StageFunc func(step uint64, dt float64)

func (f StageFunc) FixedStep(step uint64, dt float64) { f(step, dt) }

// Scheduler runs its stages in registration order.
type Scheduler struct {
	stages []Stage
}

func NewScheduler(stages ...Stage) *Scheduler {
	copied := append([]Stage(nil), stages...)
	return &Scheduler{stages: copied}
}

func (s *Scheduler) Add(stage Stage) {
	if stage == nil {
		return
	}
	s.stages = append(s.stages, stage)
}

func (s *Scheduler) FixedStep(step uint64, dt float64) {
	for _, stage := range s.stages {
		stage.FixedStep(step, dt)
	}
}

func (s *Scheduler) Stages() []Stage {
	stages := make([]Stage, 0, len(s.stages))
	return append(stages, s.stages...)
}
