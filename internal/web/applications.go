package web

import (
	"net/http"

	"jobmate/board-service/internal/domain"
)

// outcome summarises where an application stands for the seeker.
type outcome struct {
	Pending  bool `json:"pending"`
	Accepted bool `json:"accepted"`
	Rejected bool `json:"rejected"`
}

func outcomeOf(a domain.Application) outcome {
	return outcome{Pending: a.IsPending(), Accepted: a.IsAccepted(), Rejected: a.IsRejected()}
}

// review is what the employer may still do with an application under the
// active transition policy.
type review struct {
	outcome
	Final bool            `json:"final"`
	Next  []domain.Status `json:"next"`
}

func (h *Handler) reviewOf(a domain.Application) review {
	next := h.workflow.NextStatuses(a.Status)
	return review{outcome: outcomeOf(a), Final: len(next) == 0, Next: next}
}

type seekerRow struct {
	domain.ApplicationDetail
	Outcome outcome `json:"outcome"`
}

type employerRow struct {
	domain.ApplicationDetail
	Review review `json:"review"`
}

func (h *Handler) applyJob(w http.ResponseWriter, r *http.Request, a domain.JobSeekerAccount) {
	jobID := r.PathValue("id")
	if _, err := h.workflow.Submit(r.Context(), a.Profile.ID, jobID, r.FormValue("cover_letter")); err != nil {
		h.fail(w, r, err, "/jobs/"+jobID)
		return
	}
	h.redirect(w, r, "/applied-jobs", noticeSuccess, "Application submitted successfully!")
}

func (h *Handler) appliedJobs(w http.ResponseWriter, r *http.Request, a domain.JobSeekerAccount) {
	apps, err := h.workflow.ApplicationsForSeeker(r.Context(), a.Profile.ID)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	rows := make([]seekerRow, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, seekerRow{ApplicationDetail: a, Outcome: outcomeOf(a.Application)})
	}
	h.page(w, r, "applied_jobs", map[string]any{"applications": rows, "count": len(rows)})
}

// employerApplications serves both /applications and /applications/job/{id}.
func (h *Handler) employerApplications(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	ctx := r.Context()
	jobID := r.PathValue("id")
	apps, err := h.workflow.ApplicationsForEmployer(ctx, a.Profile.ID, jobID)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	scope := domain.EmployerScope(a.Profile.ID)
	if jobID != "" {
		scope = domain.JobScope(jobID)
	}
	counts, err := h.workflow.CountByStatus(ctx, scope)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}

	rows := make([]employerRow, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, employerRow{ApplicationDetail: a, Review: h.reviewOf(a.Application)})
	}
	data := map[string]any{
		"applications": rows,
		"counts":       counts,
		"total":        counts.Total(),
		"statuses":     domain.Statuses,
	}
	if jobID != "" {
		job, err := h.jobs.Get(ctx, jobID)
		if err != nil {
			h.fail(w, r, err, "/dashboard")
			return
		}
		data["job"] = job
	}
	h.page(w, r, "applications", data)
}

// viewApplication shows one application to the owning employer and marks it
// viewed on first open.
func (h *Handler) viewApplication(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	ctx := r.Context()
	app, err := h.workflow.MarkViewed(ctx, r.PathValue("id"), a.Profile.ID)
	if err != nil {
		h.fail(w, r, err, "/applications")
		return
	}
	job, err := h.jobs.Get(ctx, app.JobID)
	if err != nil {
		h.fail(w, r, err, "/applications")
		return
	}
	h.page(w, r, "application_detail", map[string]any{
		"application": app,
		"review":      h.reviewOf(*app),
		"job":         job,
		"statuses":    domain.Statuses,
	})
}

func (h *Handler) updateApplicationStatus(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	change, err := h.workflow.Transition(r.Context(), r.PathValue("id"), a.Profile.ID, r.PathValue("status"))
	if err != nil {
		h.fail(w, r, err, "/applications")
		return
	}
	h.redirect(w, r, "/applications/job/"+change.Application.JobID, noticeSuccess,
		"Application status updated to "+string(change.To)+".")
}
