package jobs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestScheduler_AddInvalidSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	if err := s.Add("bad", "not a cron", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestScheduler_EmptySpecDisables(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	if err := s.Add("off", "", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entries() != 0 {
		t.Errorf("expected no entries, got %d", s.Entries())
	}
}

func TestScheduler_AddValidSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop(), time.Second)
	if err := s.Add("sweep", "5 0 * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entries() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Entries())
	}
	s.Start()
	s.Stop()
}

func TestScheduler_RunLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(zerolog.New(&buf), time.Second)

	s.run("ok", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the job context")
		}
		return nil
	})
	s.run("broken", func(context.Context) error { return errors.New("boom") })
	s.run("panics", func(context.Context) error { panic("oops") })

	out := buf.String()
	for _, want := range []string{"job finished", "job failed", "job panicked"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in logs: %s", want, out)
		}
	}
}
