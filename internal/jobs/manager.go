// Package jobs manages job postings scoped to their owning employer and the
// public job listing.
package jobs

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"jobmate/board-service/internal/domain"
)

// Store is the persistence the manager needs.
type Store interface {
	CreateJob(ctx context.Context, job domain.Job) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	UpdateJob(ctx context.Context, job domain.Job) (*domain.Job, error)
	ToggleJobActive(ctx context.Context, id string) (*domain.Job, error)
	// ScanJobs streams matching jobs newest first, stopping when fn returns false.
	ScanJobs(ctx context.Context, q domain.JobQuery, fn func(domain.Job) bool) error
	SiteStats(ctx context.Context) (domain.SiteStats, error)
}

// Counter supplies per-job application counts for the my-jobs listing.
type Counter interface {
	CountByStatus(ctx context.Context, scope domain.Scope) (domain.StatusCounts, error)
}

// Summary is a job with its application counts.
type Summary struct {
	domain.Job
	Applications int `json:"applications"`
	Pending      int `json:"pending"`
}

type Manager struct {
	store   Store
	counter Counter
}

func NewManager(store Store, counter Counter) *Manager {
	return &Manager{store: store, counter: counter}
}

// Create posts a new, active job for employerID.
func (m *Manager) Create(ctx context.Context, employerID string, f domain.JobFields) (*domain.Job, error) {
	job, err := buildJob(f)
	if err != nil {
		return nil, err
	}
	job.EmployerID = employerID
	job.IsActive = true
	return m.store.CreateJob(ctx, job)
}

// Update replaces the editable fields of a job owned by employerID.
func (m *Manager) Update(ctx context.Context, jobID, employerID string, f domain.JobFields) (*domain.Job, error) {
	current, err := m.owned(ctx, jobID, employerID)
	if err != nil {
		return nil, err
	}
	job, err := buildJob(f)
	if err != nil {
		return nil, err
	}
	job.ID = current.ID
	job.EmployerID = current.EmployerID
	job.IsActive = current.IsActive
	job.CreatedAt = current.CreatedAt
	return m.store.UpdateJob(ctx, job)
}

// ToggleActive flips is_active on a job owned by employerID.
func (m *Manager) ToggleActive(ctx context.Context, jobID, employerID string) (*domain.Job, error) {
	if _, err := m.owned(ctx, jobID, employerID); err != nil {
		return nil, err
	}
	return m.store.ToggleJobActive(ctx, jobID)
}

func (m *Manager) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return m.store.GetJob(ctx, jobID)
}

// Search returns the public listing: active jobs only, newest first. The
// sequence queries the store each time it is ranged over.
func (m *Manager) Search(ctx context.Context, q domain.JobQuery) iter.Seq2[domain.Job, error] {
	q.Text = strings.TrimSpace(q.Text)
	q.Location = strings.TrimSpace(q.Location)
	q.EmployerID = ""
	q.ActiveOnly = true
	return m.scan(ctx, q)
}

// ListForEmployer returns every job the employer owns, active or not, with
// application counts. Counting starts only after the scan has finished, so
// the store's cursor is closed before the count queries run.
func (m *Manager) ListForEmployer(ctx context.Context, employerID string) ([]Summary, error) {
	out := make([]Summary, 0)
	for job, err := range m.scan(ctx, domain.JobQuery{EmployerID: employerID}) {
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{Job: job})
	}
	if m.counter == nil {
		return out, nil
	}
	for i := range out {
		counts, err := m.counter.CountByStatus(ctx, domain.JobScope(out[i].ID))
		if err != nil {
			return nil, err
		}
		out[i].Applications = counts.Total()
		out[i].Pending = counts.Pending()
	}
	return out, nil
}

// Stats returns the live home page counters.
func (m *Manager) Stats(ctx context.Context) (domain.SiteStats, error) {
	return m.store.SiteStats(ctx)
}

func (m *Manager) scan(ctx context.Context, q domain.JobQuery) iter.Seq2[domain.Job, error] {
	return func(yield func(domain.Job, error) bool) {
		stopped := false
		err := m.store.ScanJobs(ctx, q, func(j domain.Job) bool {
			if !yield(j, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(domain.Job{}, err)
		}
	}
}

func (m *Manager) owned(ctx context.Context, jobID, employerID string) (*domain.Job, error) {
	job, err := m.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotAuthorized)
	}
	return job, nil
}

// buildJob validates f and returns the job it describes. Every offending
// field is reported at once.
func buildJob(f domain.JobFields) (domain.Job, error) {
	fields := map[string]string{}
	required := map[string]string{
		"title":        f.Title,
		"department":   f.Department,
		"location":     f.Location,
		"description":  f.Description,
		"requirements": f.Requirements,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			fields[name] = name + " is required"
		}
	}
	jobType, err := domain.ParseJobType(strings.TrimSpace(f.JobType))
	if err != nil {
		fields["job_type"] = "job type must be full_time, part_time, contract, internship, or remote"
	}
	level, err := domain.ParseExperienceLevel(strings.TrimSpace(f.ExperienceLevel))
	if err != nil {
		fields["experience_level"] = "experience level must be entry, mid, or senior"
	}
	if err := domain.NewValidationError(fields); err != nil {
		return domain.Job{}, err
	}
	return domain.Job{
		Title:           strings.TrimSpace(f.Title),
		Department:      strings.TrimSpace(f.Department),
		Location:        strings.TrimSpace(f.Location),
		JobType:         jobType,
		ExperienceLevel: level,
		Salary:          strings.TrimSpace(f.Salary),
		Description:     strings.TrimSpace(f.Description),
		Requirements:    strings.TrimSpace(f.Requirements),
	}, nil
}
