package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/flashiz/internal/collection"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "<1m"},
		{time.Minute, "1m"},
		{10 * time.Minute, "10m"},
		{3 * time.Hour, "3h"},
		{day, "1d"},
		{14 * day, "14d"},
		{60 * day, "2mo"},
		{45 * day, "1.5mo"},
		{GraduatedIntervalDays * day, "3mo"},
		{548 * day, "1.5y"},
	}
	for _, tt := range tests {
		if got := Describe(tt.d); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDescribeStates_Order(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	labels := DescribeStates(s.NextStates(collection.CardState{Queue: collection.QueueNew}, now))
	want := []string{"1m", "1m", "10m", "3d"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestIsDue(t *testing.T) {
	ahead := 20 * time.Minute
	if !IsDue(collection.QueueLearning, now.Add(10*time.Minute), now, ahead) {
		t.Error("learning card within learn-ahead should be due")
	}
	if IsDue(collection.QueueLearning, now.Add(time.Hour), now, ahead) {
		t.Error("learning card an hour out should not be due")
	}
	if !IsDue(collection.QueueReview, now.Add(6*time.Hour), now, ahead) {
		t.Error("review card due later today should be due")
	}
	if IsDue(collection.QueueReview, EndOfDay(now), now, ahead) {
		t.Error("review card due tomorrow should not be due")
	}
	if !IsDue(collection.QueueNew, time.Time{}, now, ahead) {
		t.Error("new cards are always eligible")
	}
}
