package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jobmate/board-service/internal/domain"
	"jobmate/board-service/internal/identity"
	"jobmate/board-service/internal/jobs"
	"jobmate/board-service/internal/resume"
	"jobmate/board-service/internal/store/memstore"
	"jobmate/board-service/internal/web"
	"jobmate/board-service/internal/workflow"
)

type site struct {
	t        *testing.T
	handler  http.Handler
	store    *memstore.Store
	ids      *identity.Service
	engine   *workflow.Engine
	employer *domain.EmployerAccount
	other    *domain.EmployerAccount
	seeker   *domain.JobSeekerAccount
	job      *domain.Job
}

func newSite(t *testing.T) *site {
	t.Helper()
	return newSiteWith(t, workflow.Permissive)
}

func newSiteWith(t *testing.T, policy workflow.Policy) *site {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	engine := workflow.NewEngine(st, nil, policy)
	manager := jobs.NewManager(st, engine)
	ids := identity.NewService(st, memstore.NewSessions(), time.Hour).WithHashCost(bcrypt.MinCost)
	h := web.NewHandler(ids, engine, manager, resume.NewStorage(t.TempDir(), 1024), web.Options{
		SessionTTL:     time.Hour,
		MaxResumeBytes: 1024,
	})

	s := &site{t: t, handler: h.Routes(), store: st, ids: ids, engine: engine}
	var err error
	s.employer, err = ids.RegisterEmployer(ctx, identity.EmployerRegistration{
		NewUser:     identity.NewUser{Username: "acme", Password: "pw", Email: "acme@example.com"},
		CompanyName: "Acme", ContactPerson: "Ada", CompanyAddress: "1 Main St",
	})
	if err != nil {
		t.Fatalf("RegisterEmployer: %v", err)
	}
	s.other, err = ids.RegisterEmployer(ctx, identity.EmployerRegistration{
		NewUser:     identity.NewUser{Username: "globex", Password: "pw", Email: "globex@example.com"},
		CompanyName: "Globex", ContactPerson: "Hank", CompanyAddress: "2 Main St",
	})
	if err != nil {
		t.Fatalf("RegisterEmployer: %v", err)
	}
	s.seeker, err = ids.RegisterJobSeeker(ctx, identity.JobSeekerRegistration{
		NewUser:  identity.NewUser{Username: "sam", Password: "pw", Email: "sam@example.com"},
		FullName: "Sam Seeker",
	})
	if err != nil {
		t.Fatalf("RegisterJobSeeker: %v", err)
	}
	s.job, err = manager.Create(ctx, s.employer.Profile.ID, domain.JobFields{
		Title: "Backend Engineer", Department: "Eng", Location: "Remote", JobType: "full_time",
		ExperienceLevel: "mid", Description: "Build services", Requirements: "Go",
	})
	if err != nil {
		t.Fatalf("Create job: %v", err)
	}
	return s
}

func (s *site) login(account domain.Account) *http.Cookie {
	s.t.Helper()
	token, err := s.ids.Login(context.Background(), account)
	if err != nil {
		s.t.Fatalf("Login: %v", err)
	}
	return &http.Cookie{Name: "session", Value: token}
}

func (s *site) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *site) applicationStatus(seeker *domain.JobSeekerAccount) domain.Status {
	s.t.Helper()
	apps, err := s.engine.ApplicationsForSeeker(context.Background(), seeker.Profile.ID)
	if err != nil || len(apps) != 1 {
		s.t.Fatalf("ApplicationsForSeeker = %d, %v; want 1", len(apps), err)
	}
	return apps[0].Status
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, prefix string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("code = %d, want 302 (body %s)", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, prefix) {
		t.Errorf("Location = %q, want prefix %q", loc, prefix)
	}
}

func noticeOf(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "notice" && c.Value != "" {
			v, _ := url.QueryUnescape(c.Value)
			return v
		}
	}
	return ""
}

func cookieOf(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 (Location %q)", rec.Code, rec.Header().Get("Location"))
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

// ── Access control ─────────────────────────────────────────────────────────

func TestApply_AnonymousRedirectsToLogin(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/jobs/"+s.job.ID+"/apply", url.Values{"cover_letter": {"hi"}})

	expectRedirect(t, rec, "/login?next="+url.QueryEscape("/jobs/"+s.job.ID+"/apply"))
	counts, _ := s.engine.CountByStatus(context.Background(), domain.JobScope(s.job.ID))
	if counts.Total() != 0 {
		t.Errorf("applications = %d, want 0", counts.Total())
	}
}

func TestApply_EmployerRedirectsToDashboard(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/jobs/"+s.job.ID+"/apply", nil, s.login(*s.employer))

	expectRedirect(t, rec, "/dashboard")
	if !strings.HasPrefix(noticeOf(rec), "error|") {
		t.Errorf("notice = %q, want an error notice", noticeOf(rec))
	}
}

func TestEmployerRoutes_RejectJobSeeker(t *testing.T) {
	s := newSite(t)
	cookie := s.login(*s.seeker)
	for _, path := range []string{"/applications", "/my-jobs", "/post-job"} {
		rec := s.do(http.MethodGet, path, nil, cookie)
		expectRedirect(t, rec, "/dashboard")
	}
}

// ── Apply flow ─────────────────────────────────────────────────────────────

func TestApply_ThenDuplicate(t *testing.T) {
	s := newSite(t)
	cookie := s.login(*s.seeker)

	rec := s.do(http.MethodPost, "/jobs/"+s.job.ID+"/apply", url.Values{"cover_letter": {"hi"}}, cookie)
	expectRedirect(t, rec, "/applied-jobs")
	if s.applicationStatus(s.seeker) != domain.StatusApplied {
		t.Error("application should start in applied")
	}

	rec = s.do(http.MethodPost, "/jobs/"+s.job.ID+"/apply", nil, cookie)
	expectRedirect(t, rec, "/jobs/"+s.job.ID)
	if !strings.Contains(noticeOf(rec), "already applied") {
		t.Errorf("notice = %q, want duplicate message", noticeOf(rec))
	}

	page := decode(t, s.do(http.MethodGet, "/jobs/"+s.job.ID, nil, cookie))
	if page["hasApplied"] != true || page["canApply"] != false {
		t.Errorf("job detail = %v", page)
	}
}

func TestApply_InactiveJob(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/jobs/"+s.job.ID+"/toggle", nil, s.login(*s.employer))
	expectRedirect(t, rec, "/my-jobs")

	rec = s.do(http.MethodPost, "/jobs/"+s.job.ID+"/apply", nil, s.login(*s.seeker))
	expectRedirect(t, rec, "/jobs/"+s.job.ID)
	if !strings.Contains(noticeOf(rec), "no longer accepting") {
		t.Errorf("notice = %q", noticeOf(rec))
	}
}

// ── Status updates ─────────────────────────────────────────────────────────

func TestUpdateStatus_OwnerAndNonOwner(t *testing.T) {
	s := newSite(t)
	app, err := s.engine.Submit(context.Background(), s.seeker.Profile.ID, s.job.ID, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rec := s.do(http.MethodPost, "/applications/"+app.ID+"/update/hired", nil, s.login(*s.other))
	expectRedirect(t, rec, "/dashboard")
	if got := s.applicationStatus(s.seeker); got != domain.StatusApplied {
		t.Errorf("status after non-owner = %s, want applied", got)
	}

	owner := s.login(*s.employer)
	rec = s.do(http.MethodPost, "/applications/"+app.ID+"/update/bogus", nil, owner)
	expectRedirect(t, rec, "/applications")
	if got := s.applicationStatus(s.seeker); got != domain.StatusApplied {
		t.Errorf("status after bogus = %s, want applied", got)
	}

	rec = s.do(http.MethodPost, "/applications/"+app.ID+"/update/shortlisted", nil, owner)
	expectRedirect(t, rec, "/applications/job/"+s.job.ID)
	if got := s.applicationStatus(s.seeker); got != domain.StatusShortlisted {
		t.Errorf("status = %s, want shortlisted", got)
	}
}

func TestViewApplication_MarksViewed(t *testing.T) {
	s := newSite(t)
	app, err := s.engine.Submit(context.Background(), s.seeker.Profile.ID, s.job.ID, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	decode(t, s.do(http.MethodGet, "/applications/"+app.ID, nil, s.login(*s.employer)))
	if got := s.applicationStatus(s.seeker); got != domain.StatusViewed {
		t.Errorf("status = %s, want viewed", got)
	}
}

func TestEmployerApplications_Counts(t *testing.T) {
	s := newSite(t)
	if _, err := s.engine.Submit(context.Background(), s.seeker.Profile.ID, s.job.ID, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	page := decode(t, s.do(http.MethodGet, "/applications/job/"+s.job.ID, nil, s.login(*s.employer)))
	if page["total"] != float64(1) {
		t.Errorf("total = %v, want 1", page["total"])
	}

	rec := s.do(http.MethodGet, "/applications/job/"+s.job.ID, nil, s.login(*s.other))
	expectRedirect(t, rec, "/dashboard")
}

func TestApplicationPages_ReviewFollowsStrictPolicy(t *testing.T) {
	s := newSiteWith(t, workflow.Strict)
	ctx := context.Background()
	app, err := s.engine.Submit(ctx, s.seeker.Profile.ID, s.job.ID, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	employer := s.login(*s.employer)

	page := decode(t, s.do(http.MethodGet, "/applications/job/"+s.job.ID, nil, employer))
	rows, _ := page["applications"].([]any)
	if len(rows) != 1 {
		t.Fatalf("applications = %v, want one row", page["applications"])
	}
	rv, _ := rows[0].(map[string]any)["review"].(map[string]any)
	if rv["pending"] != true || rv["final"] != false {
		t.Errorf("review = %v, want pending and not final", rv)
	}
	if next, _ := rv["next"].([]any); len(next) != 3 {
		t.Errorf("next = %v, want viewed, shortlisted, rejected", rv["next"])
	}

	if _, err := s.engine.Transition(ctx, app.ID, s.employer.Profile.ID, "hired"); err == nil {
		t.Fatal("strict applied → hired should be refused")
	}
	for _, to := range []string{"shortlisted", "hired"} {
		if _, err := s.engine.Transition(ctx, app.ID, s.employer.Profile.ID, to); err != nil {
			t.Fatalf("Transition(%s): %v", to, err)
		}
	}
	detail := decode(t, s.do(http.MethodGet, "/applications/"+app.ID, nil, employer))
	rv, _ = detail["review"].(map[string]any)
	if rv["final"] != true || rv["accepted"] != true {
		t.Errorf("review after hire = %v, want final and accepted", rv)
	}
	if next, _ := rv["next"].([]any); len(next) != 0 {
		t.Errorf("next after hire = %v, want none", rv["next"])
	}

	applied := decode(t, s.do(http.MethodGet, "/applied-jobs", nil, s.login(*s.seeker)))
	rows, _ = applied["applications"].([]any)
	if len(rows) != 1 {
		t.Fatalf("applied jobs = %v, want one row", applied["applications"])
	}
	if oc, _ := rows[0].(map[string]any)["outcome"].(map[string]any); oc["accepted"] != true || oc["pending"] != false {
		t.Errorf("seeker outcome = %v, want accepted", oc)
	}
}

// ── Jobs ───────────────────────────────────────────────────────────────────

func TestFindJobs(t *testing.T) {
	s := newSite(t)
	page := decode(t, s.do(http.MethodGet, "/jobs?search=acme&job_type=full_time", nil))
	if page["count"] != float64(1) {
		t.Errorf("count = %v, want 1", page["count"])
	}
	page = decode(t, s.do(http.MethodGet, "/jobs?search=nothing-matches", nil))
	if page["count"] != float64(0) {
		t.Errorf("count = %v, want 0", page["count"])
	}
}

func TestPostJob_ValidationAndSuccess(t *testing.T) {
	s := newSite(t)
	cookie := s.login(*s.employer)

	rec := s.do(http.MethodPost, "/post-job", url.Values{"title": {"Only a title"}}, cookie)
	expectRedirect(t, rec, "/post-job")
	if !strings.Contains(noticeOf(rec), "department") {
		t.Errorf("notice = %q, want field list", noticeOf(rec))
	}

	rec = s.do(http.MethodPost, "/post-job", url.Values{
		"title": {"SRE"}, "department": {"Ops"}, "location": {"Rabat"}, "job_type": {"contract"},
		"experience_level": {"senior"}, "description": {"Keep it up"}, "requirements": {"Linux"},
	}, cookie)
	expectRedirect(t, rec, "/my-jobs")

	page := decode(t, s.do(http.MethodGet, "/my-jobs", nil, cookie))
	if page["count"] != float64(2) {
		t.Errorf("my jobs = %v, want 2", page["count"])
	}
}

func TestEditJob_NonOwner(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/jobs/"+s.job.ID+"/edit", url.Values{"title": {"x"}}, s.login(*s.other))
	expectRedirect(t, rec, "/dashboard")
	job, _ := s.store.GetJob(context.Background(), s.job.ID)
	if job.Title != "Backend Engineer" {
		t.Errorf("title = %q, want unchanged", job.Title)
	}
}

// ── Auth pages and notices ─────────────────────────────────────────────────

func TestLogin_RedirectsToNextAndSetsSession(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/login", url.Values{"username": {"sam"}, "password": {"pw"}, "next": {"/applied-jobs"}})
	expectRedirect(t, rec, "/applied-jobs")
	session := cookieOf(rec, "session")
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("session cookie = %+v", session)
	}

	notice := cookieOf(rec, "notice")
	page := decode(t, s.do(http.MethodGet, "/dashboard", nil, session, notice))
	n, _ := page["notice"].(map[string]any)
	if n["kind"] != "success" || page["role"] != "job_seeker" {
		t.Errorf("dashboard = %v", page)
	}
}

func TestLogin_RejectsOffsiteNext(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/login", url.Values{"username": {"sam"}, "password": {"pw"}, "next": {"//evil.example"}})
	expectRedirect(t, rec, "/dashboard")
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/login", url.Values{"username": {"sam"}, "password": {"nope"}})
	expectRedirect(t, rec, "/login")
	if cookieOf(rec, "session") != nil {
		t.Error("session cookie set on failed login")
	}
}

func TestRegisterAndLogout(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/register/job-seeker", url.Values{
		"username": {"kim"}, "password": {"pw"}, "email": {"kim@example.com"}, "full_name": {"Kim"},
	})
	expectRedirect(t, rec, "/dashboard")
	session := cookieOf(rec, "session")
	if session == nil {
		t.Fatal("no session cookie after registration")
	}

	rec = s.do(http.MethodPost, "/register/employer", url.Values{
		"username": {"kim"}, "password": {"pw"}, "email": {"other@example.com"},
		"company_name": {"K"}, "contact_person": {"Kim"}, "company_address": {"x"},
	})
	expectRedirect(t, rec, "/register")

	expectRedirect(t, s.do(http.MethodPost, "/logout", nil, session), "/")
	expectRedirect(t, s.do(http.MethodGet, "/dashboard", nil, session), "/login")
}

// ── Profile and resume ─────────────────────────────────────────────────────

func TestUploadResume(t *testing.T) {
	s := newSite(t)
	cookie := s.login(*s.seeker)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("resume", "cv.pdf")
	fw.Write([]byte("%PDF-1.4 resume"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/profile/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	expectRedirect(t, rec, "/dashboard")

	profile, _ := s.store.GetJobSeekerByUser(context.Background(), s.seeker.User.ID)
	if !strings.HasSuffix(profile.ResumePath, "-cv.pdf") {
		t.Fatalf("ResumePath = %q", profile.ResumePath)
	}

	dl := s.do(http.MethodGet, "/profile/resume", nil, cookie)
	if dl.Code != http.StatusOK || dl.Body.String() != "%PDF-1.4 resume" {
		t.Errorf("download = %d %q", dl.Code, dl.Body.String())
	}
}

func TestUpdateProfile_Employer(t *testing.T) {
	s := newSite(t)
	rec := s.do(http.MethodPost, "/profile", url.Values{
		"company_name": {"Acme Inc"}, "contact_person": {"Ada"}, "company_address": {"3 Main St"},
	}, s.login(*s.employer))
	expectRedirect(t, rec, "/dashboard")
	e, _ := s.store.GetEmployerByUser(context.Background(), s.employer.User.ID)
	if e.CompanyName != "Acme Inc" {
		t.Errorf("CompanyName = %q", e.CompanyName)
	}
}

func TestHomeAndHealth(t *testing.T) {
	s := newSite(t)
	page := decode(t, s.do(http.MethodGet, "/", nil))
	stats, _ := page["stats"].(map[string]any)
	if stats["activeJobs"] != float64(1) || stats["companies"] != float64(2) || stats["candidates"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}
	health := decode(t, s.do(http.MethodGet, "/health", nil))
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}
