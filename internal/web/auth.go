package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/identity"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.Stats(r.Context())
	if err != nil {
		slog.Error("site stats", "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.page(w, r, "home", map[string]any{"stats": stats})
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "login", map[string]any{"next": safeNext(r.URL.Query().Get("next"))})
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "register", map[string]any{
		"roles": []string{"job-seeker", "employer"},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))
	account, err := h.identity.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.fail(w, r, err, "/login?next="+url.QueryEscape(next))
		return
	}
	h.signIn(w, r, account, next, "Welcome back, "+account.AccountUser().Username+"!")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := h.identity.Logout(r.Context(), c.Value); err != nil {
			slog.Warn("logout", "err", err)
		}
	}
	h.clearSession(w)
	h.redirect(w, r, "/", noticeInfo, "You have been logged out.")
}

func (h *Handler) registerJobSeeker(w http.ResponseWriter, r *http.Request) {
	account, err := h.identity.RegisterJobSeeker(r.Context(), identity.JobSeekerRegistration{
		NewUser:  newUserFromForm(r),
		FullName: r.FormValue("full_name"),
		Phone:    r.FormValue("phone"),
	})
	if err != nil {
		h.fail(w, r, err, "/register")
		return
	}
	h.signIn(w, r, *account, "/dashboard", "Registration successful!")
}

func (h *Handler) registerEmployer(w http.ResponseWriter, r *http.Request) {
	account, err := h.identity.RegisterEmployer(r.Context(), identity.EmployerRegistration{
		NewUser:        newUserFromForm(r),
		CompanyName:    r.FormValue("company_name"),
		ContactPerson:  r.FormValue("contact_person"),
		Phone:          r.FormValue("phone"),
		CompanyAddress: r.FormValue("company_address"),
	})
	if err != nil {
		h.fail(w, r, err, "/register")
		return
	}
	h.signIn(w, r, *account, "/dashboard", "Registration successful!")
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, account domain.Account, next, msg string) {
	token, err := h.identity.Login(r.Context(), account)
	if err != nil {
		h.fail(w, r, err, "/login")
		return
	}
	h.setSession(w, token)
	h.redirect(w, r, next, noticeSuccess, msg)
}

func newUserFromForm(r *http.Request) identity.NewUser {
	return identity.NewUser{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
	}
}

// dashboard renders the per-role landing page.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request, account domain.Account) {
	ctx := r.Context()
	switch a := account.(type) {
	case domain.JobSeekerAccount:
		apps, err := h.workflow.ApplicationsForSeeker(ctx, a.Profile.ID)
		if err != nil {
			h.fail(w, r, err, "/")
			return
		}
		counts := domain.NewStatusCounts()
		for _, app := range apps {
			counts[app.Status]++
		}
		recent := apps
		if len(recent) > 5 {
			recent = recent[:5]
		}
		h.page(w, r, "dashboard", map[string]any{
			"role":         "job_seeker",
			"profile":      a.Profile,
			"counts":       counts,
			"total":        counts.Total(),
			"recent":       recent,
			"resumeLoaded": a.Profile.ResumePath != "",
		})
	case domain.EmployerAccount:
		counts, err := h.workflow.CountByStatus(ctx, domain.EmployerScope(a.Profile.ID))
		if err != nil {
			h.fail(w, r, err, "/")
			return
		}
		jobs, err := h.jobs.ListForEmployer(ctx, a.Profile.ID)
		if err != nil {
			h.fail(w, r, err, "/")
			return
		}
		active := 0
		for _, j := range jobs {
			if j.IsActive {
				active++
			}
		}
		h.page(w, r, "dashboard", map[string]any{
			"role":       "employer",
			"profile":    a.Profile,
			"counts":     counts,
			"total":      counts.Total(),
			"pending":    counts.Pending(),
			"jobs":       len(jobs),
			"activeJobs": active,
		})
	}
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, account domain.Account) {
	ctx := r.Context()
	var err error
	switch a := account.(type) {
	case domain.JobSeekerAccount:
		_, err = h.identity.UpdateJobSeekerProfile(ctx, a.Profile, identity.JobSeekerProfile{
			FullName:   r.FormValue("full_name"),
			Phone:      r.FormValue("phone"),
			Location:   r.FormValue("location"),
			Skills:     domain.ParseSkills(r.FormValue("skills")),
			Experience: r.FormValue("experience"),
			Education:  r.FormValue("education"),
			Bio:        r.FormValue("bio"),
		})
	case domain.EmployerAccount:
		_, err = h.identity.UpdateEmployerProfile(ctx, a.Profile, identity.EmployerProfile{
			CompanyName:    r.FormValue("company_name"),
			ContactPerson:  r.FormValue("contact_person"),
			Phone:          r.FormValue("phone"),
			CompanyAddress: r.FormValue("company_address"),
		})
	}
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	h.redirect(w, r, "/dashboard", noticeSuccess, "Profile updated successfully!")
}

func (h *Handler) uploadResume(w http.ResponseWriter, r *http.Request, a domain.JobSeekerAccount) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	file, header, err := r.FormFile("resume")
	if err != nil {
		h.redirect(w, r, "/dashboard", noticeError, "Please choose a resume file under the upload limit.")
		return
	}
	defer file.Close()

	path, err := h.resumes.Save(r.Context(), a.Profile.ID, header.Filename, file)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	if _, err := h.identity.AttachResume(r.Context(), a.Profile, path); err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	h.redirect(w, r, "/dashboard", noticeSuccess, "Resume uploaded successfully!")
}

// downloadResume streams the signed-in job seeker's own resume.
func (h *Handler) downloadResume(w http.ResponseWriter, r *http.Request, a domain.JobSeekerAccount) {
	if a.Profile.ResumePath == "" {
		h.redirect(w, r, "/dashboard", noticeInfo, "You have not uploaded a resume yet.")
		return
	}
	f, err := h.resumes.Open(a.Profile.ResumePath)
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		h.fail(w, r, err, "/dashboard")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(a.Profile.ResumePath)+`"`)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
