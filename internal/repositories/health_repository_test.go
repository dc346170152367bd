package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

func TestDependencyHealthAllOK(t *testing.T) {
	now := time.Date(2025, time.May, 4, 9, 0, 0, 0, time.UTC)
	repo, err := NewDependencyHealth([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "storage", Check: func(context.Context) error { return nil }},
	}, WithHealthClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("expected ok, got %s", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(report.Checks))
	}
	if report.Checks["firestore"].CheckedAt != now {
		t.Fatalf("expected injected clock to be used")
	}
}

func TestDependencyHealthDegraded(t *testing.T) {
	repo, err := NewDependencyHealth([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return errors.New("topic missing") }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}
	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if got := report.Checks["pubsub"].Error; got != "topic missing" {
		t.Fatalf("unexpected error detail %q", got)
	}
}

func TestDependencyHealthTimeout(t *testing.T) {
	repo, err := NewDependencyHealth([]DependencyCheck{{
		Name:    "firestore",
		Timeout: 5 * time.Millisecond,
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}})
	if err != nil {
		t.Fatalf("NewDependencyHealth: %v", err)
	}
	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	check := report.Checks["firestore"]
	if report.Status != domain.HealthStatusError || check.Detail != "timeout" {
		t.Fatalf("expected timeout error, got %+v", check)
	}
}

func TestNewDependencyHealthRejectsBadChecks(t *testing.T) {
	cases := map[string][]DependencyCheck{
		"empty":     nil,
		"no name":   {{Check: func(context.Context) error { return nil }}},
		"no func":   {{Name: "firestore"}},
		"duplicate": {{Name: "a", Check: func(context.Context) error { return nil }}, {Name: "a", Check: func(context.Context) error { return nil }}},
	}
	for name, checks := range cases {
		if _, err := NewDependencyHealth(checks); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsNotFound(NewNotFound("projects.find", "p1")) {
		t.Fatalf("expected not found")
	}
	if !IsUnavailable(NewUnavailable("projects.query", errors.New("down"))) {
		t.Fatalf("expected unavailable")
	}
	if !IsConflict(NewConflict("projects.insert", "p1")) {
		t.Fatalf("expected conflict")
	}
	if IsNotFound(errors.New("plain")) {
		t.Fatalf("plain errors are not repository errors")
	}
}
