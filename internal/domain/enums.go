package domain

import (
	"fmt"
	"strings"
)

// Status values mirror the application_status CHECK constraint in PostgreSQL.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusViewed      Status = "viewed"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusHired       Status = "hired"
)

// Statuses lists every application status in workflow order.
var Statuses = []Status{StatusApplied, StatusViewed, StatusShortlisted, StatusRejected, StatusHired}

// ParseStatus converts a raw string to a Status, returning an
// *InvalidStatusError for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusApplied, StatusViewed, StatusShortlisted, StatusRejected, StatusHired:
		return st, nil
	}
	return "", &InvalidStatusError{Status: s}
}

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

func ParseJobType(s string) (JobType, error) {
	for _, t := range JobTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
)

var ExperienceLevels = []ExperienceLevel{ExperienceEntry, ExperienceMid, ExperienceSenior}

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	for _, l := range ExperienceLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}
