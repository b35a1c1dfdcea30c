package enums

import "fmt"

// ProjectStatus tracks the lifecycle of an installation project.
type ProjectStatus string

const (
	ProjectStatusNew        ProjectStatus = "new"
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusWait       ProjectStatus = "wait"
	ProjectStatusScheduled  ProjectStatus = "scheduled"
	ProjectStatusInProgress ProjectStatus = "inprogress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusFailed     ProjectStatus = "failed"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusNew,
	ProjectStatusDraft,
	ProjectStatusWait,
	ProjectStatusScheduled,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusFailed,
}

// projectTransitions is the single source of truth for allowed lifecycle moves.
// Same-state "moves" are not listed; callers treat those as idempotent no-ops.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusNew:        {ProjectStatusDraft},
	ProjectStatusDraft:      {ProjectStatusWait, ProjectStatusScheduled},
	ProjectStatusWait:       {ProjectStatusScheduled},
	ProjectStatusScheduled:  {ProjectStatusInProgress},
	ProjectStatusInProgress: {ProjectStatusCompleted, ProjectStatusFailed},
	ProjectStatusCompleted:  {},
	ProjectStatusFailed:     {},
}

// String implements fmt.Stringer.
func (p ProjectStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProjectStatus.
func (p ProjectStatus) IsValid() bool {
	for _, candidate := range validProjectStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (p ProjectStatus) IsTerminal() bool {
	targets, ok := projectTransitions[p]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether moving from p to target is a permitted
// lifecycle transition.
func (p ProjectStatus) CanTransitionTo(target ProjectStatus) bool {
	for _, candidate := range projectTransitions[p] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseProjectStatus converts raw input into a ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, error) {
	for _, candidate := range validProjectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project status %q", value)
}
