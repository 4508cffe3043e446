package workflow_test

import (
	"testing"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/workflow"
)

// ── Permissive ─────────────────────────────────────────────────────────────

func TestPermissive_AllowsEveryPair(t *testing.T) {
	for _, from := range domain.Statuses {
		for _, to := range domain.Statuses {
			if !workflow.Permissive.Allows(from, to) {
				t.Errorf("Permissive.Allows(%s → %s) should be true", from, to)
			}
		}
	}
}

// ── Strict — forward moves ─────────────────────────────────────────────────

func TestStrict_ValidForward(t *testing.T) {
	cases := []struct {
		from domain.Status
		to   domain.Status
	}{
		{domain.StatusApplied, domain.StatusViewed},
		{domain.StatusApplied, domain.StatusShortlisted},
		{domain.StatusViewed, domain.StatusShortlisted},
		{domain.StatusShortlisted, domain.StatusHired},
	}
	for _, c := range cases {
		if !workflow.Strict.Allows(c.from, c.to) {
			t.Errorf("Strict.Allows(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── Strict — rejection from every non-terminal ─────────────────────────────

func TestStrict_ToRejected(t *testing.T) {
	for _, from := range []domain.Status{domain.StatusApplied, domain.StatusViewed, domain.StatusShortlisted} {
		if !workflow.Strict.Allows(from, domain.StatusRejected) {
			t.Errorf("Strict.Allows(%s → rejected) should be true", from)
		}
	}
}

// ── Strict — terminal states have no outgoing moves ────────────────────────

func TestStrict_FromTerminal(t *testing.T) {
	for _, from := range []domain.Status{domain.StatusHired, domain.StatusRejected} {
		if !workflow.IsTerminal(from) {
			t.Errorf("IsTerminal(%s) should be true", from)
		}
		for _, to := range domain.Statuses {
			if to == from {
				continue
			}
			if workflow.Strict.Allows(from, to) {
				t.Errorf("Strict.Allows(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

// ── Strict — skip-level and backwards moves ────────────────────────────────

func TestStrict_SkipAndBackwards(t *testing.T) {
	cases := []struct {
		from domain.Status
		to   domain.Status
	}{
		{domain.StatusApplied, domain.StatusHired},  // skip shortlisted
		{domain.StatusViewed, domain.StatusHired},   // skip shortlisted
		{domain.StatusViewed, domain.StatusApplied}, // backwards
		{domain.StatusShortlisted, domain.StatusViewed},
		{domain.StatusShortlisted, domain.StatusApplied},
	}
	for _, c := range cases {
		if workflow.Strict.Allows(c.from, c.to) {
			t.Errorf("Strict.Allows(%s → %s) should be false", c.from, c.to)
		}
	}
}

// Re-setting the current status is a no-op under both policies.
func TestStrict_SelfAllowed(t *testing.T) {
	for _, s := range domain.Statuses {
		if !workflow.Strict.Allows(s, s) {
			t.Errorf("Strict.Allows(%s → %s) should be true (self)", s, s)
		}
	}
}

func TestPolicyString(t *testing.T) {
	if workflow.Permissive.String() != "permissive" || workflow.Strict.String() != "strict" {
		t.Errorf("String() = %q / %q", workflow.Permissive, workflow.Strict)
	}
}

func TestPolicy_Next(t *testing.T) {
	if got := workflow.Permissive.Next(domain.StatusHired); len(got) != len(domain.Statuses)-1 {
		t.Errorf("Permissive.Next(hired) = %v, want every other status", got)
	}
	for _, from := range domain.Statuses {
		next := workflow.Strict.Next(from)
		if workflow.IsTerminal(from) != (len(next) == 0) {
			t.Errorf("Strict.Next(%s) = %v, terminal = %v", from, next, workflow.IsTerminal(from))
		}
		for _, to := range next {
			if to == from || !workflow.Strict.Allows(from, to) {
				t.Errorf("Strict.Next(%s) lists %s", from, to)
			}
		}
	}
}
