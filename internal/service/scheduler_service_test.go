package service

import (
	"testing"
	"time"
)

func TestScheduleIntervalFires(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	fired := make(chan struct{}, 4)
	if _, err := scheduler.ScheduleInterval(time.Second, func() {
		fired <- struct{}{}
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	if _, err := scheduler.ScheduleInterval(0, func() {}); err == nil {
		t.Error("zero interval accepted")
	}
	if _, err := scheduler.ScheduleInterval(-time.Minute, func() {}); err == nil {
		t.Error("negative interval accepted")
	}
}
