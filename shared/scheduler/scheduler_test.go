package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New()
	if err := s.Add(Job{Name: "bad", Schedule: "not a cron spec", Run: func() error { return nil }}); err == nil {
		t.Fatal("Add() accepted an invalid schedule")
	}
}

func TestJobRuns(t *testing.T) {
	s := New()

	var runs atomic.Int32
	err := s.Add(Job{
		Name:     "tick",
		Schedule: "@every 100ms",
		Run: func() error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
