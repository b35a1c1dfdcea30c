package enums

import "testing"

func TestProjectStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ProjectStatus
		to      ProjectStatus
		allowed bool
	}{
		{ProjectStatusNew, ProjectStatusDraft, true},
		{ProjectStatusNew, ProjectStatusScheduled, false},
		{ProjectStatusDraft, ProjectStatusWait, true},
		{ProjectStatusDraft, ProjectStatusScheduled, true},
		{ProjectStatusWait, ProjectStatusScheduled, true},
		{ProjectStatusWait, ProjectStatusDraft, false},
		{ProjectStatusScheduled, ProjectStatusInProgress, true},
		{ProjectStatusScheduled, ProjectStatusCompleted, false},
		{ProjectStatusInProgress, ProjectStatusCompleted, true},
		{ProjectStatusInProgress, ProjectStatusFailed, true},
		{ProjectStatusCompleted, ProjectStatusFailed, false},
		{ProjectStatusFailed, ProjectStatusNew, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestProjectStatusTerminal(t *testing.T) {
	for _, st := range []ProjectStatus{ProjectStatusCompleted, ProjectStatusFailed} {
		if !st.IsTerminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	for _, st := range []ProjectStatus{ProjectStatusNew, ProjectStatusDraft, ProjectStatusWait, ProjectStatusScheduled, ProjectStatusInProgress} {
		if st.IsTerminal() {
			t.Fatalf("%s should not be terminal", st)
		}
	}
	if ProjectStatus("bogus").IsTerminal() {
		t.Fatal("unknown status must not report terminal")
	}
}

func TestParseProjectStatus(t *testing.T) {
	got, err := ParseProjectStatus("inprogress")
	if err != nil {
		t.Fatalf("ParseProjectStatus: %v", err)
	}
	if got != ProjectStatusInProgress {
		t.Fatalf("unexpected status %s", got)
	}

	if _, err := ParseProjectStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
