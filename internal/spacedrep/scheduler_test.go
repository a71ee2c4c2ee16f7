package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/flashiz/internal/collection"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNextStates_NewCard(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	ns := s.NextStates(collection.CardState{Queue: collection.QueueNew}, now)

	if ns.Again.Queue != collection.QueueLearning || ns.Again.Interval != time.Minute {
		t.Errorf("Again = %+v, want learning 1m", ns.Again)
	}
	if ns.Good.Queue != collection.QueueLearning || ns.Good.Stage != 1 || ns.Good.Interval != 10*time.Minute {
		t.Errorf("Good = %+v, want learning step 1 (10m)", ns.Good)
	}
	if ns.Easy.Queue != collection.QueueReview || ns.Easy.Interval != 3*day {
		t.Errorf("Easy = %+v, want review 3d", ns.Easy)
	}
	if !ns.Good.Due.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("Good.Due = %v", ns.Good.Due)
	}
}

func TestNextStates_LearningGraduates(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	cur := collection.CardState{Queue: collection.QueueLearning, Stage: 1}
	ns := s.NextStates(cur, now)

	if ns.Good.Queue != collection.QueueReview || ns.Good.Stage != 0 {
		t.Errorf("Good = %+v, want review stage 0", ns.Good)
	}
	if ns.Good.Interval != day {
		t.Errorf("Good.Interval = %v, want 1d", ns.Good.Interval)
	}
	if ns.Hard.Queue != collection.QueueLearning || ns.Hard.Stage != 1 {
		t.Errorf("Hard = %+v, want repeat of step 1", ns.Hard)
	}
}

func TestNextStates_ReviewLadder(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	cur := collection.CardState{Queue: collection.QueueReview, Stage: 2, Interval: 7 * day, Lapses: 1}
	ns := s.NextStates(cur, now)

	tests := []struct {
		name     string
		got      collection.CardState
		queue    collection.Queue
		interval time.Duration
		lapses   int
	}{
		{"again", ns.Again, collection.QueueRelearning, 10 * time.Minute, 2},
		{"hard", ns.Hard, collection.QueueReview, 7 * day, 1},
		{"good", ns.Good, collection.QueueReview, 14 * day, 1},
		{"easy", ns.Easy, collection.QueueReview, 30 * day, 1},
	}
	for _, tt := range tests {
		if tt.got.Queue != tt.queue || tt.got.Interval != tt.interval || tt.got.Lapses != tt.lapses {
			t.Errorf("%s = %+v, want queue %v interval %v lapses %d", tt.name, tt.got, tt.queue, tt.interval, tt.lapses)
		}
	}
}

func TestNextStates_GraduatedCap(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	cur := collection.CardState{Queue: collection.QueueReview, Stage: GraduationStage}
	ns := s.NextStates(cur, now)

	if ns.Easy.Stage != GraduationStage {
		t.Errorf("Easy.Stage = %d, want capped at %d", ns.Easy.Stage, GraduationStage)
	}
	if ns.Good.Interval != GraduatedIntervalDays*day {
		t.Errorf("Good.Interval = %v, want %d days", ns.Good.Interval, GraduatedIntervalDays)
	}
}

func TestNextStates_RelearningReturnsToReview(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	cur := collection.CardState{Queue: collection.QueueRelearning, Stage: 0, Lapses: 3}
	ns := s.NextStates(cur, now)

	if ns.Good.Queue != collection.QueueReview || ns.Good.Stage != 0 {
		t.Errorf("Good = %+v, want review stage 0", ns.Good)
	}
	if ns.Good.Lapses != 3 {
		t.Errorf("Good.Lapses = %d, want unchanged 3", ns.Good.Lapses)
	}
}

func TestIsLeech(t *testing.T) {
	s := NewScheduler(Config{LeechThreshold: 8})
	tests := []struct {
		lapses int
		want   bool
	}{
		{0, false}, {7, false}, {8, true}, {9, false}, {11, false}, {12, true}, {16, true},
	}
	for _, tt := range tests {
		if got := s.IsLeech(tt.lapses); got != tt.want {
			t.Errorf("IsLeech(%d) = %v, want %v", tt.lapses, got, tt.want)
		}
	}
}

func TestIsLeech_SmallThreshold(t *testing.T) {
	s := NewScheduler(Config{LeechThreshold: 1})
	for lapses := 1; lapses < 4; lapses++ {
		if !s.IsLeech(lapses) {
			t.Errorf("IsLeech(%d) = false, want true with threshold 1", lapses)
		}
	}
}
