package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/events"
)

// Store is the persistence the engine needs. CreateApplication must enforce
// the (job seeker, job) uniqueness itself and report a collision as
// domain.ErrDuplicateApplication.
type Store interface {
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	GetApplication(ctx context.Context, id string) (*domain.Application, error)
	CreateApplication(ctx context.Context, app domain.Application) (*domain.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.Status) (*domain.Application, error)
	ApplicationExists(ctx context.Context, seekerID, jobID string) (bool, error)
	CountApplications(ctx context.Context, scope domain.Scope) (map[domain.Status]int, error)
	ListApplicationsBySeeker(ctx context.Context, seekerID string) ([]domain.ApplicationDetail, error)
	ListApplicationsByEmployer(ctx context.Context, employerID, jobID string) ([]domain.ApplicationDetail, error)
}

// StatusChange is the result of a successful Transition.
type StatusChange struct {
	Application domain.Application `json:"application"`
	From        domain.Status      `json:"from"`
	To          domain.Status      `json:"to"`
}

// Engine encapsulates the application workflow. It has no dependency on
// net/http and is shared by the web and gRPC transports.
type Engine struct {
	store  Store
	pub    events.Publisher
	policy Policy
}

// NewEngine returns a configured Engine.
func NewEngine(store Store, pub events.Publisher, policy Policy) *Engine {
	return &Engine{store: store, pub: pub, policy: policy}
}

// NextStatuses lists the statuses Transition would accept for an application
// currently in from.
func (e *Engine) NextStatuses(from domain.Status) []domain.Status {
	return e.policy.Next(from)
}

// Submit creates an application in the applied state.
func (e *Engine) Submit(ctx context.Context, seekerID, jobID, coverLetter string) (*domain.Application, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, domain.ErrJobInactive
	}

	app, err := e.store.CreateApplication(ctx, domain.Application{
		JobSeekerID: seekerID,
		JobID:       jobID,
		Status:      domain.StatusApplied,
		CoverLetter: coverLetter,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.ChannelApplicationSubmitted, map[string]string{
		"type":          events.ChannelApplicationSubmitted,
		"applicationId": app.ID,
		"jobId":         jobID,
		"jobSeekerId":   seekerID,
		"employerId":    job.EmployerID,
	})
	return app, nil
}

// Transition moves an application to newStatus on behalf of employerID.
// Ownership is checked before the status value is looked at.
func (e *Engine) Transition(ctx context.Context, appID, employerID, newStatus string) (*StatusChange, error) {
	app, err := e.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, fmt.Errorf("application %s: %w", appID, domain.ErrNotAuthorized)
	}

	to, err := domain.ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}
	from := app.Status
	if !e.policy.Allows(from, to) {
		return nil, &domain.InvalidStatusError{Status: string(to), From: from}
	}

	updated, err := e.store.UpdateApplicationStatus(ctx, appID, to)
	if err != nil {
		return nil, err
	}

	slog.Info("application status changed", "applicationId", appID, "from", from, "to", to)
	e.publish(ctx, events.ChannelStatusChanged, map[string]string{
		"type":          events.ChannelStatusChanged,
		"applicationId": appID,
		"jobId":         app.JobID,
		"jobSeekerId":   app.JobSeekerID,
		"employerId":    employerID,
		"from":          string(from),
		"to":            string(to),
		"at":            time.Now().UTC().Format(time.RFC3339),
	})
	return &StatusChange{Application: *updated, From: from, To: to}, nil
}

// MarkViewed moves an application still in applied to viewed. Any other
// status is left alone.
func (e *Engine) MarkViewed(ctx context.Context, appID, employerID string) (*domain.Application, error) {
	app, err := e.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusApplied {
		job, err := e.store.GetJob(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if job.EmployerID != employerID {
			return nil, fmt.Errorf("application %s: %w", appID, domain.ErrNotAuthorized)
		}
		return app, nil
	}
	change, err := e.Transition(ctx, appID, employerID, string(domain.StatusViewed))
	if err != nil {
		return nil, err
	}
	return &change.Application, nil
}

// HasApplied reports whether seekerID already applied to jobID.
func (e *Engine) HasApplied(ctx context.Context, seekerID, jobID string) (bool, error) {
	return e.store.ApplicationExists(ctx, seekerID, jobID)
}

// CountByStatus returns the application count for every status in scope,
// zero-filled. It is recomputed on each call.
func (e *Engine) CountByStatus(ctx context.Context, scope domain.Scope) (domain.StatusCounts, error) {
	if scope.JobID == "" && scope.EmployerID == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"scope": "a job or an employer is required"}}
	}
	raw, err := e.store.CountApplications(ctx, scope)
	if err != nil {
		return nil, err
	}
	counts := domain.NewStatusCounts()
	for s, n := range raw {
		counts[s] += n
	}
	return counts, nil
}

// PendingCount returns the number of applications in scope still in applied.
func (e *Engine) PendingCount(ctx context.Context, scope domain.Scope) (int, error) {
	counts, err := e.CountByStatus(ctx, scope)
	if err != nil {
		return 0, err
	}
	return counts.Pending(), nil
}

// ApplicationsForSeeker lists a job seeker's applications, newest first.
func (e *Engine) ApplicationsForSeeker(ctx context.Context, seekerID string) ([]domain.ApplicationDetail, error) {
	return e.store.ListApplicationsBySeeker(ctx, seekerID)
}

// ApplicationsForEmployer lists applications on every job the employer owns,
// or on jobID only when it is non-empty.
func (e *Engine) ApplicationsForEmployer(ctx context.Context, employerID, jobID string) ([]domain.ApplicationDetail, error) {
	if jobID != "" {
		job, err := e.store.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.EmployerID != employerID {
			return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotAuthorized)
		}
	}
	return e.store.ListApplicationsByEmployer(ctx, employerID, jobID)
}

// publish is best effort: a broker outage never fails the request.
func (e *Engine) publish(ctx context.Context, channel string, payload any) {
	if e.pub == nil {
		return
	}
	if err := e.pub.Publish(ctx, channel, payload); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}
