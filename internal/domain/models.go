// Package domain defines the entities shared by the board service: users and
// their job seeker / employer profiles, job postings and applications.
package domain

import (
	"strings"
	"time"
)

// User is the identity record behind every account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JobSeeker is the profile of a user who browses and applies to jobs.
type JobSeeker struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone"`
	Location   string    `json:"location"`
	Skills     []string  `json:"skills"`
	Experience string    `json:"experience"`
	Education  string    `json:"education"`
	Bio        string    `json:"bio"`
	ResumePath string    `json:"resumePath,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Employer is the profile of a user who posts jobs.
type Employer struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CompanyName    string    `json:"companyName"`
	ContactPerson  string    `json:"contactPerson"`
	Phone          string    `json:"phone"`
	CompanyAddress string    `json:"companyAddress"`
	IsVerified     bool      `json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Job is a posting owned by exactly one employer.
type Job struct {
	ID              string          `json:"id"`
	EmployerID      string          `json:"employerId"`
	CompanyName     string          `json:"companyName,omitempty"`
	Title           string          `json:"title"`
	Department      string          `json:"department"`
	Location        string          `json:"location"`
	JobType         JobType         `json:"jobType"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Salary          string          `json:"salary"`
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Application links one job seeker to one job.
type Application struct {
	ID          string    `json:"id"`
	JobSeekerID string    `json:"jobSeekerId"`
	JobID       string    `json:"jobId"`
	Status      Status    `json:"status"`
	CoverLetter string    `json:"coverLetter"`
	AppliedDate time.Time `json:"appliedDate"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a Application) IsPending() bool { return a.Status == StatusApplied }

func (a Application) IsAccepted() bool {
	return a.Status == StatusShortlisted || a.Status == StatusHired
}

func (a Application) IsRejected() bool { return a.Status == StatusRejected }

// JobFields carries the employer-editable part of a Job.
type JobFields struct {
	Title           string
	Department      string
	Location        string
	JobType         string
	ExperienceLevel string
	Salary          string
	Description     string
	Requirements    string
}

// JobQuery filters the public job listing. Empty fields match everything.
type JobQuery struct {
	Text            string
	JobType         JobType
	ExperienceLevel ExperienceLevel
	Location        string
	EmployerID      string
	ActiveOnly      bool
}

// SiteStats are the live counters shown on the home page.
type SiteStats struct {
	ActiveJobs int `json:"activeJobs"`
	Companies  int `json:"companies"`
	Candidates int `json:"candidates"`
}

// ParseSkills splits a comma-separated skills string, trimming blanks.
func ParseSkills(raw string) []string {
	skills := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// JoinSkills is the inverse of ParseSkills, used at the persistence edge.
func JoinSkills(skills []string) string {
	return strings.Join(skills, ",")
}

// ApplicationDetail is an Application joined with the names listings show.
type ApplicationDetail struct {
	Application
	JobTitle      string `json:"jobTitle"`
	CompanyName   string `json:"companyName"`
	JobSeekerName string `json:"jobSeekerName"`
}
