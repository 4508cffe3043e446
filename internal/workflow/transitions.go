// Package workflow owns the application status machine and the aggregate
// views built on top of it.
//
// Strict status graph:
//
//	applied ──► viewed ──► shortlisted ──► hired
//	   │          │             │
//	   └──────────┴─────────────┴──► rejected
//
// hired and rejected are terminal under the strict policy. The default policy
// is permissive: an employer may set any status at any time.
package workflow

import "jobmate/board-service/internal/domain"

// Policy selects which status moves Transition accepts.
type Policy int

const (
	Permissive Policy = iota
	Strict
)

// strictTransitions lists every allowed (from → to) pair under Strict.
var strictTransitions = map[domain.Status][]domain.Status{
	domain.StatusApplied:     {domain.StatusViewed, domain.StatusShortlisted, domain.StatusRejected},
	domain.StatusViewed:      {domain.StatusShortlisted, domain.StatusRejected},
	domain.StatusShortlisted: {domain.StatusHired, domain.StatusRejected},
	// hired and rejected are terminal
}

// Allows reports whether moving from → to is permitted. Re-setting the
// current status is always allowed.
func (p Policy) Allows(from, to domain.Status) bool {
	if p == Permissive || from == to {
		return true
	}
	for _, s := range strictTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing moves under Strict.
func IsTerminal(s domain.Status) bool {
	_, ok := strictTransitions[s]
	return !ok
}

// Next lists the statuses an application in from may move to, excluding from
// itself. It is empty for terminal states under Strict.
func (p Policy) Next(from domain.Status) []domain.Status {
	if p == Permissive {
		out := make([]domain.Status, 0, len(domain.Statuses)-1)
		for _, s := range domain.Statuses {
			if s != from {
				out = append(out, s)
			}
		}
		return out
	}
	if IsTerminal(from) {
		return []domain.Status{}
	}
	return append([]domain.Status(nil), strictTransitions[from]...)
}

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "permissive"
}
