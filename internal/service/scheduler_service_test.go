package service

import (
	"context"
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 0 8 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "08:60", wantErr: true},
		{in: "8am", wantErr: true},
	}
	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("buildDailySpec(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("buildDailySpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchedulerService_Register(t *testing.T) {
	f := newFixture(t)
	reminders := NewReminderService(f.taskRepo, f.apptRepo, nil, time.UTC)
	s := NewSchedulerService(time.UTC)
	ctx := context.Background()

	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Error("ScheduleInterval(0) should fail")
	}
	if _, err := s.ScheduleReminders(ctx, time.Minute, reminders); err != nil {
		t.Fatalf("ScheduleReminders: %v", err)
	}
	send := func(context.Context, string) error { return nil }
	if _, err := s.ScheduleSummary(ctx, "08:00", reminders, send); err != nil {
		t.Fatalf("ScheduleSummary: %v", err)
	}
	if _, err := s.ScheduleSummary(ctx, "noon", reminders, send); err == nil {
		t.Error("ScheduleSummary with a bad time should fail")
	}
	if s.Entries() != 2 {
		t.Errorf("Entries() = %d, want 2", s.Entries())
	}

	s.Start()
	s.Stop()
}
