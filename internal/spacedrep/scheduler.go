package spacedrep

import (
	"time"

	"github.com/abhisek/flashiz/internal/collection"
)

// Scheduler computes the outcome of each rating for a card.
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a scheduler. Empty step lists fall back to defaults.
func NewScheduler(cfg Config) *Scheduler {
	def := DefaultConfig()
	if len(cfg.LearnSteps) == 0 {
		cfg.LearnSteps = def.LearnSteps
	}
	if len(cfg.RelearnSteps) == 0 {
		cfg.RelearnSteps = def.RelearnSteps
	}
	if cfg.LeechThreshold <= 0 {
		cfg.LeechThreshold = def.LeechThreshold
	}
	return &Scheduler{cfg: cfg}
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// StateOf extracts the scheduling state from a card.
func StateOf(c collection.Card) collection.CardState {
	return collection.CardState{
		Queue:    c.Queue,
		Stage:    c.Stage,
		Due:      c.Due,
		Interval: c.Interval,
		Lapses:   c.Lapses,
	}
}

// NextStates returns the state each rating would move cur to at time now.
func (s *Scheduler) NextStates(cur collection.CardState, now time.Time) collection.NextStates {
	ns := collection.NextStates{Current: cur}
	switch cur.Queue {
	case collection.QueueReview:
		ns.Again = s.lapse(cur, now)
		ns.Hard = review(cur, cur.Stage, now)
		ns.Good = review(cur, cur.Stage+1, now)
		ns.Easy = review(cur, cur.Stage+2, now)
	case collection.QueueRelearning:
		ns.Again = s.step(cur, collection.QueueRelearning, s.cfg.RelearnSteps, 0, now)
		ns.Hard = s.step(cur, collection.QueueRelearning, s.cfg.RelearnSteps, cur.Stage, now)
		ns.Good = s.advance(cur, collection.QueueRelearning, s.cfg.RelearnSteps, now)
		ns.Easy = review(cur, 1, now)
	default:
		// New and learning cards share the learning steps.
		ns.Again = s.step(cur, collection.QueueLearning, s.cfg.LearnSteps, 0, now)
		ns.Hard = s.step(cur, collection.QueueLearning, s.cfg.LearnSteps, learningStage(cur), now)
		ns.Good = s.advance(cur, collection.QueueLearning, s.cfg.LearnSteps, now)
		ns.Easy = review(cur, 1, now)
	}
	return ns
}

// IsLeech reports whether lapses sits on a leech threshold: the first time
// at LeechThreshold and again every half threshold after that.
func (s *Scheduler) IsLeech(lapses int) bool {
	t := s.cfg.LeechThreshold
	if lapses < t {
		return false
	}
	half := t / 2
	if half < 1 {
		half = 1
	}
	return (lapses-t)%half == 0
}

func learningStage(cur collection.CardState) int {
	if cur.Queue == collection.QueueNew {
		return 0
	}
	return cur.Stage
}

// step keeps the card in queue q at the given step index.
func (s *Scheduler) step(cur collection.CardState, q collection.Queue, steps []time.Duration, idx int, now time.Time) collection.CardState {
	if idx >= len(steps) {
		idx = len(steps) - 1
	}
	if idx < 0 {
		idx = 0
	}
	next := cur
	next.Queue = q
	next.Stage = idx
	next.Interval = steps[idx]
	next.Due = now.Add(steps[idx])
	return next
}

// advance moves to the next step, graduating to review after the last one.
func (s *Scheduler) advance(cur collection.CardState, q collection.Queue, steps []time.Duration, now time.Time) collection.CardState {
	idx := learningStage(cur) + 1
	if cur.Queue == collection.QueueNew {
		idx = 1
	}
	if idx >= len(steps) {
		return review(cur, 0, now)
	}
	return s.step(cur, q, steps, idx, now)
}

func (s *Scheduler) lapse(cur collection.CardState, now time.Time) collection.CardState {
	next := s.step(cur, collection.QueueRelearning, s.cfg.RelearnSteps, 0, now)
	next.Lapses = cur.Lapses + 1
	return next
}

func review(cur collection.CardState, stage int, now time.Time) collection.CardState {
	if stage > GraduationStage {
		stage = GraduationStage
	}
	next := cur
	next.Queue = collection.QueueReview
	next.Stage = stage
	next.Interval = intervalForStage(stage)
	next.Due = now.Add(next.Interval)
	return next
}
