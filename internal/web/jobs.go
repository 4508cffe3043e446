package web

import (
	"net/http"

	"jobmate/board-service/internal/domain"
)

// findJobs lists active jobs matching the query string filters.
func (h *Handler) findJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.JobQuery{
		Text:     q.Get("search"),
		Location: q.Get("location"),
	}
	// Unknown filter values are ignored rather than rejected.
	if jt, err := domain.ParseJobType(q.Get("job_type")); err == nil {
		query.JobType = jt
	}
	if lvl, err := domain.ParseExperienceLevel(q.Get("experience_level")); err == nil {
		query.ExperienceLevel = lvl
	}

	list := make([]domain.Job, 0)
	for job, err := range h.jobs.Search(r.Context(), query) {
		if err != nil {
			h.fail(w, r, err, "/")
			return
		}
		list = append(list, job)
	}
	h.page(w, r, "find_jobs", map[string]any{
		"jobs":  list,
		"count": len(list),
		"filters": map[string]string{
			"search":           query.Text,
			"job_type":         string(query.JobType),
			"experience_level": string(query.ExperienceLevel),
			"location":         query.Location,
		},
		"jobTypes":         domain.JobTypes,
		"experienceLevels": domain.ExperienceLevels,
	})
}

// jobDetail shows one job. Inactive jobs are visible only to their owner.
func (h *Handler) jobDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	job, err := h.jobs.Get(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "/jobs")
		return
	}

	data := map[string]any{"job": job}
	switch a := AccountFromContext(ctx).(type) {
	case domain.JobSeekerAccount:
		applied, err := h.workflow.HasApplied(ctx, a.Profile.ID, job.ID)
		if err != nil {
			h.fail(w, r, err, "/jobs")
			return
		}
		data["hasApplied"] = applied
		data["canApply"] = job.IsActive && !applied
	case domain.EmployerAccount:
		data["isOwner"] = a.Profile.ID == job.EmployerID
	}
	if !job.IsActive && data["isOwner"] != true {
		h.redirect(w, r, "/jobs", noticeError, "This job is no longer available.")
		return
	}
	h.page(w, r, "job_detail", data)
}

func (h *Handler) postJobPage(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	h.page(w, r, "post_job", map[string]any{
		"jobTypes":         domain.JobTypes,
		"experienceLevels": domain.ExperienceLevels,
	})
}

func (h *Handler) postJob(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	if _, err := h.jobs.Create(r.Context(), a.Profile.ID, jobFieldsFromForm(r)); err != nil {
		h.fail(w, r, err, "/post-job")
		return
	}
	h.redirect(w, r, "/my-jobs", noticeSuccess, "Job posted successfully!")
}

func (h *Handler) myJobs(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	list, err := h.jobs.ListForEmployer(r.Context(), a.Profile.ID)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	h.page(w, r, "my_jobs", map[string]any{"jobs": list, "count": len(list)})
}

func (h *Handler) editJobPage(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	job, err := h.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "/my-jobs")
		return
	}
	if job.EmployerID != a.Profile.ID {
		h.redirect(w, r, "/dashboard", noticeError, "You are not allowed to manage that record.")
		return
	}
	h.page(w, r, "edit_job", map[string]any{
		"job":              job,
		"jobTypes":         domain.JobTypes,
		"experienceLevels": domain.ExperienceLevels,
	})
}

func (h *Handler) editJob(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	id := r.PathValue("id")
	if _, err := h.jobs.Update(r.Context(), id, a.Profile.ID, jobFieldsFromForm(r)); err != nil {
		h.fail(w, r, err, "/jobs/"+id+"/edit")
		return
	}
	h.redirect(w, r, "/my-jobs", noticeSuccess, "Job updated successfully!")
}

func (h *Handler) toggleJob(w http.ResponseWriter, r *http.Request, a domain.EmployerAccount) {
	job, err := h.jobs.ToggleActive(r.Context(), r.PathValue("id"), a.Profile.ID)
	if err != nil {
		h.fail(w, r, err, "/my-jobs")
		return
	}
	msg := "Job deactivated."
	if job.IsActive {
		msg = "Job activated."
	}
	h.redirect(w, r, "/my-jobs", noticeSuccess, msg)
}

func jobFieldsFromForm(r *http.Request) domain.JobFields {
	return domain.JobFields{
		Title:           r.FormValue("title"),
		Department:      r.FormValue("department"),
		Location:        r.FormValue("location"),
		JobType:         r.FormValue("job_type"),
		ExperienceLevel: r.FormValue("experience_level"),
		Salary:          r.FormValue("salary"),
		Description:     r.FormValue("description"),
		Requirements:    r.FormValue("requirements"),
	}
}
