// Package web implements the HTTP surface of the board service.
//
// Pages are JSON documents carrying the pending flash notice. Form actions
// answer with a 302 redirect and a notice; authorization failures redirect to
// the dashboard rather than returning 403.
//
// Routes:
//
//	GET  /                                   → home stats
//	GET  /login, /register                   → auth pages
//	POST /login, /logout                     → sign in / out
//	POST /register/job-seeker|employer       → create account and sign in
//	GET  /dashboard                          → per-role dashboard
//	POST /profile, /profile/resume           → profile update, resume upload
//	GET  /profile/resume                     → download own resume
//	GET  /jobs, /jobs/{id}                   → search, detail
//	POST /jobs/{id}/apply                    → job seeker applies
//	GET  /applied-jobs                       → job seeker's applications
//	GET  /applications[/job/{id}]            → employer's applications
//	GET  /applications/{id}                  → one application (marks viewed)
//	POST /applications/{id}/update/{status}  → status transition
//	GET|POST /post-job, GET /my-jobs         → job posting
//	GET|POST /jobs/{id}/edit, POST /jobs/{id}/toggle
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/identity"
	"jobmate/board-service/internal/jobs"
	"jobmate/board-service/internal/resume"
	"jobmate/board-service/internal/workflow"
)

const version = "1.0.0"

// Handler holds shared dependencies.
type Handler struct {
	identity      *identity.Service
	workflow      *workflow.Engine
	jobs          *jobs.Manager
	resumes       *resume.Storage
	sessionTTL    time.Duration
	maxUpload     int64
	secureCookies bool
	ping          func(context.Context) error
}

// Options configures cookie and upload behaviour.
type Options struct {
	SessionTTL     time.Duration
	MaxResumeBytes int64
	SecureCookies  bool
	// Ping, when set, is checked by /health.
	Ping func(context.Context) error
}

// NewHandler returns a configured Handler.
func NewHandler(ids *identity.Service, wf *workflow.Engine, jm *jobs.Manager, rs *resume.Storage, opts Options) *Handler {
	return &Handler{
		identity:      ids,
		workflow:      wf,
		jobs:          jm,
		resumes:       rs,
		sessionTTL:    opts.SessionTTL,
		maxUpload:     opts.MaxResumeBytes,
		secureCookies: opts.SecureCookies,
		ping:          opts.Ping,
	}
}

// Routes returns the complete HTTP handler with session loading applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /{$}", h.home)

	mux.HandleFunc("GET /login", h.loginPage)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("GET /register", h.registerPage)
	mux.HandleFunc("POST /register/job-seeker", h.registerJobSeeker)
	mux.HandleFunc("POST /register/employer", h.registerEmployer)
	mux.HandleFunc("GET /dashboard", h.requireLogin(h.dashboard))
	mux.HandleFunc("POST /profile", h.requireLogin(h.updateProfile))
	mux.HandleFunc("POST /profile/resume", h.requireSeeker(h.uploadResume))
	mux.HandleFunc("GET /profile/resume", h.requireSeeker(h.downloadResume))

	mux.HandleFunc("GET /jobs", h.findJobs)
	mux.HandleFunc("GET /jobs/{id}", h.jobDetail)
	mux.HandleFunc("POST /jobs/{id}/apply", h.requireSeeker(h.applyJob))
	mux.HandleFunc("GET /applied-jobs", h.requireSeeker(h.appliedJobs))

	mux.HandleFunc("GET /applications", h.requireEmployer(h.employerApplications))
	mux.HandleFunc("GET /applications/job/{id}", h.requireEmployer(h.employerApplications))
	mux.HandleFunc("GET /applications/{id}", h.requireEmployer(h.viewApplication))
	mux.HandleFunc("POST /applications/{id}/update/{status}", h.requireEmployer(h.updateApplicationStatus))

	mux.HandleFunc("GET /post-job", h.requireEmployer(h.postJobPage))
	mux.HandleFunc("POST /post-job", h.requireEmployer(h.postJob))
	mux.HandleFunc("GET /my-jobs", h.requireEmployer(h.myJobs))
	mux.HandleFunc("GET /jobs/{id}/edit", h.requireEmployer(h.editJobPage))
	mux.HandleFunc("POST /jobs/{id}/edit", h.requireEmployer(h.editJob))
	mux.HandleFunc("POST /jobs/{id}/toggle", h.requireEmployer(h.toggleJob))

	return h.withAccount(mux)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			slog.Warn("health check failed", "err", err)
			jsonError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "board-service",
		"version": version,
	})
}

// page writes a JSON page document with the pending notice and the
// signed-in username attached.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["page"] = name
	if n := popNotice(w, r); n != nil {
		data["notice"] = n
	}
	if account := AccountFromContext(r.Context()); account != nil {
		data["username"] = account.AccountUser().Username
	}
	jsonOK(w, data)
}

// fail recovers err into a notice and a redirect to fallback.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		ve *domain.ValidationError
		se *domain.InvalidStatusError
	)
	switch {
	case errors.As(err, &ve):
		h.redirect(w, r, fallback, noticeError, "Please correct the errors below: "+strings.TrimPrefix(ve.Error(), "invalid fields: "))
	case errors.As(err, &se):
		h.redirect(w, r, fallback, noticeError, "Invalid status: "+se.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		h.redirect(w, r, "/dashboard", noticeError, "You are not allowed to manage that record.")
	case errors.Is(err, domain.ErrNotFound):
		h.redirect(w, r, fallback, noticeError, "The requested record was not found.")
	case errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrJobInactive),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, resume.ErrTooLarge):
		h.redirect(w, r, fallback, noticeError, upperFirst(unwrapMessage(err)))
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		h.redirect(w, r, fallback, noticeError, "Something went wrong. Please try again.")
	}
}

// unwrapMessage returns the message of the innermost domain sentinel.
func unwrapMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrDuplicateApplication, domain.ErrJobInactive, domain.ErrDuplicateUser,
		domain.ErrInvalidCredentials, resume.ErrTooLarge,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
