package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"jobmate/board-service/internal/domain"
)

const (
	sessionCookie = "session"
	noticeCookie  = "notice"
)

type accountKey struct{}

// withAccount resolves the session cookie once per request. Lookup failures
// are logged and the caller is treated as anonymous.
func (h *Handler) withAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		account, err := h.identity.CurrentAccount(r.Context(), c.Value)
		if err != nil {
			slog.Error("load session", "err", err)
		}
		if account == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), accountKey{}, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFromContext returns the signed-in account, or nil when anonymous.
func AccountFromContext(ctx context.Context) domain.Account {
	a, _ := ctx.Value(accountKey{}).(domain.Account)
	return a
}

// requireLogin redirects anonymous callers to the login page.
func (h *Handler) requireLogin(fn func(http.ResponseWriter, *http.Request, domain.Account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil {
			h.redirectToLogin(w, r)
			return
		}
		fn(w, r, account)
	}
}

func (h *Handler) requireSeeker(fn func(http.ResponseWriter, *http.Request, domain.JobSeekerAccount)) http.HandlerFunc {
	return h.requireLogin(func(w http.ResponseWriter, r *http.Request, account domain.Account) {
		switch a := account.(type) {
		case domain.JobSeekerAccount:
			fn(w, r, a)
		default:
			h.redirect(w, r, "/dashboard", noticeError, "Only job seekers can do that.")
		}
	})
}

func (h *Handler) requireEmployer(fn func(http.ResponseWriter, *http.Request, domain.EmployerAccount)) http.HandlerFunc {
	return h.requireLogin(func(w http.ResponseWriter, r *http.Request, account domain.Account) {
		switch a := account.(type) {
		case domain.EmployerAccount:
			fn(w, r, a)
		default:
			h.redirect(w, r, "/dashboard", noticeError, "Only employers can do that.")
		}
	})
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), noticeInfo, "Please log in to continue.")
}

func (h *Handler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// ─── Flash notices ───────────────────────────────────────────────────────────

const (
	noticeInfo    = "info"
	noticeSuccess = "success"
	noticeError   = "error"
)

type notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// redirect stores a one-shot notice and answers 302 Found.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to, kind, msg string) {
	if msg != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     noticeCookie,
			Value:    url.QueryEscape(kind + "|" + msg),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// popNotice reads and clears the pending notice, if any.
func popNotice(w http.ResponseWriter, r *http.Request) *notice {
	c, err := r.Cookie(noticeCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: noticeCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return &notice{Kind: kind, Message: msg}
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, `\`) {
		return next
	}
	return "/dashboard"
}
