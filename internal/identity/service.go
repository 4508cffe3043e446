// Package identity authenticates users, registers job seekers and employers,
// and resolves session tokens to role-specific accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobmate/board-service/internal/domain"
)

// Store is the persistence the identity service needs. CreateUser must
// report a username or email collision as domain.ErrDuplicateUser.
type Store interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateJobSeeker(ctx context.Context, js domain.JobSeeker) (*domain.JobSeeker, error)
	CreateEmployer(ctx context.Context, e domain.Employer) (*domain.Employer, error)
	GetJobSeekerByUser(ctx context.Context, userID string) (*domain.JobSeeker, error)
	GetEmployerByUser(ctx context.Context, userID string) (*domain.Employer, error)
	UpdateJobSeeker(ctx context.Context, js domain.JobSeeker) (*domain.JobSeeker, error)
	UpdateEmployer(ctx context.Context, e domain.Employer) (*domain.Employer, error)
}

// Sessions maps opaque tokens to user IDs. Load returns domain.ErrNotFound
// for an unknown or expired token.
type Sessions interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Load(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type NewUser struct {
	Username  string
	Password  string
	Email     string
	FirstName string
}

type JobSeekerRegistration struct {
	NewUser
	FullName string
	Phone    string
}

type EmployerRegistration struct {
	NewUser
	CompanyName    string
	ContactPerson  string
	Phone          string
	CompanyAddress string
}

type JobSeekerProfile struct {
	FullName   string
	Phone      string
	Location   string
	Skills     []string
	Experience string
	Education  string
	Bio        string
}

type EmployerProfile struct {
	CompanyName    string
	ContactPerson  string
	Phone          string
	CompanyAddress string
}

type Service struct {
	store      Store
	sessions   Sessions
	sessionTTL time.Duration
	hashCost   int
}

func NewService(store Store, sessions Sessions, sessionTTL time.Duration) *Service {
	return &Service{store: store, sessions: sessions, sessionTTL: sessionTTL, hashCost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// maxPasswordBytes is the longest input bcrypt accepts.
const (
	maxPasswordBytes = 72
	passwordTooLong  = "password must be at most 72 bytes"
)

// rollbackTimeout bounds the user delete after a failed registration.
const rollbackTimeout = 5 * time.Second

// CreateUser validates and stores a user with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*domain.User, error) {
	nu = normalizeUser(nu)
	if err := domain.NewValidationError(userFields(nu, map[string]string{})); err != nil {
		return nil, err
	}
	return s.createUser(ctx, nu)
}

func (s *Service) createUser(ctx context.Context, nu NewUser) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &domain.ValidationError{Fields: map[string]string{"password": passwordTooLong}}
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, domain.User{
		Username:     nu.Username,
		Email:        nu.Email,
		FirstName:    strings.TrimSpace(nu.FirstName),
		PasswordHash: string(hash),
	})
}

func normalizeUser(nu NewUser) NewUser {
	nu.Username = strings.TrimSpace(nu.Username)
	nu.Email = strings.ToLower(strings.TrimSpace(nu.Email))
	return nu
}

// userFields adds the account-level problems of nu to fields.
func userFields(nu NewUser, fields map[string]string) map[string]string {
	if nu.Username == "" {
		fields["username"] = "username is required"
	}
	switch {
	case nu.Password == "":
		fields["password"] = "password is required"
	case len(nu.Password) > maxPasswordBytes:
		fields["password"] = passwordTooLong
	}
	if _, err := mail.ParseAddress(nu.Email); err != nil {
		fields["email"] = "a valid email is required"
	}
	return fields
}

// RegisterJobSeeker creates the user and its job seeker profile. If the
// profile cannot be created the user is deleted again.
func (s *Service) RegisterJobSeeker(ctx context.Context, r JobSeekerRegistration) (*domain.JobSeekerAccount, error) {
	r.NewUser = normalizeUser(r.NewUser)
	fields := map[string]string{}
	if strings.TrimSpace(r.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	if err := domain.NewValidationError(userFields(r.NewUser, fields)); err != nil {
		return nil, err
	}
	if r.FirstName == "" {
		r.FirstName = r.FullName
	}
	u, err := s.createUser(ctx, r.NewUser)
	if err != nil {
		return nil, err
	}
	js, err := s.store.CreateJobSeeker(ctx, domain.JobSeeker{
		UserID:   u.ID,
		FullName: strings.TrimSpace(r.FullName),
		Phone:    strings.TrimSpace(r.Phone),
		Skills:   []string{},
	})
	if err != nil {
		s.rollbackUser(ctx, u.ID)
		return nil, fmt.Errorf("create job seeker profile: %w", err)
	}
	return &domain.JobSeekerAccount{User: *u, Profile: *js}, nil
}

// RegisterEmployer creates the user and its employer profile, deleting the
// user again if the profile step fails.
func (s *Service) RegisterEmployer(ctx context.Context, r EmployerRegistration) (*domain.EmployerAccount, error) {
	r.NewUser = normalizeUser(r.NewUser)
	fields := map[string]string{}
	if strings.TrimSpace(r.CompanyName) == "" {
		fields["company_name"] = "company name is required"
	}
	if strings.TrimSpace(r.ContactPerson) == "" {
		fields["contact_person"] = "contact person is required"
	}
	if strings.TrimSpace(r.CompanyAddress) == "" {
		fields["company_address"] = "company address is required"
	}
	if err := domain.NewValidationError(userFields(r.NewUser, fields)); err != nil {
		return nil, err
	}
	if r.FirstName == "" {
		r.FirstName = r.ContactPerson
	}
	u, err := s.createUser(ctx, r.NewUser)
	if err != nil {
		return nil, err
	}
	e, err := s.store.CreateEmployer(ctx, domain.Employer{
		UserID:         u.ID,
		CompanyName:    strings.TrimSpace(r.CompanyName),
		ContactPerson:  strings.TrimSpace(r.ContactPerson),
		Phone:          strings.TrimSpace(r.Phone),
		CompanyAddress: strings.TrimSpace(r.CompanyAddress),
	})
	if err != nil {
		s.rollbackUser(ctx, u.ID)
		return nil, fmt.Errorf("create employer profile: %w", err)
	}
	return &domain.EmployerAccount{User: *u, Profile: *e}, nil
}

// Authenticate checks credentials and resolves the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.resolve(ctx, u)
}

// Login opens a session for account and returns its token.
func (s *Service) Login(ctx context.Context, account domain.Account) (string, error) {
	token := uuid.NewString()
	if err := s.sessions.Save(ctx, token, account.AccountUser().ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// CurrentAccount resolves a session token. It returns a nil Account and no
// error for anonymous callers.
func (s *Service) CurrentAccount(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return nil, nil
	}
	userID, err := s.sessions.Load(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	account, err := s.resolve(ctx, u)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return account, err
}

// AccountByUserID resolves an account without a session; used by the gRPC
// surface where the Gateway forwards the user id.
func (s *Service) AccountByUserID(ctx context.Context, userID string) (domain.Account, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u)
}

func (s *Service) UpdateJobSeekerProfile(ctx context.Context, current domain.JobSeeker, p JobSeekerProfile) (*domain.JobSeeker, error) {
	if strings.TrimSpace(p.FullName) == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"full_name": "full name is required"}}
	}
	current.FullName = strings.TrimSpace(p.FullName)
	current.Phone = strings.TrimSpace(p.Phone)
	current.Location = strings.TrimSpace(p.Location)
	current.Skills = cleanSkills(p.Skills)
	current.Experience = p.Experience
	current.Education = p.Education
	current.Bio = p.Bio
	return s.store.UpdateJobSeeker(ctx, current)
}

func (s *Service) UpdateEmployerProfile(ctx context.Context, current domain.Employer, p EmployerProfile) (*domain.Employer, error) {
	fields := map[string]string{}
	if strings.TrimSpace(p.CompanyName) == "" {
		fields["company_name"] = "company name is required"
	}
	if strings.TrimSpace(p.ContactPerson) == "" {
		fields["contact_person"] = "contact person is required"
	}
	if strings.TrimSpace(p.CompanyAddress) == "" {
		fields["company_address"] = "company address is required"
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}
	current.CompanyName = strings.TrimSpace(p.CompanyName)
	current.ContactPerson = strings.TrimSpace(p.ContactPerson)
	current.Phone = strings.TrimSpace(p.Phone)
	current.CompanyAddress = strings.TrimSpace(p.CompanyAddress)
	return s.store.UpdateEmployer(ctx, current)
}

// AttachResume records the stored resume path on the job seeker profile.
func (s *Service) AttachResume(ctx context.Context, current domain.JobSeeker, path string) (*domain.JobSeeker, error) {
	current.ResumePath = path
	return s.store.UpdateJobSeeker(ctx, current)
}

func (s *Service) resolve(ctx context.Context, u *domain.User) (domain.Account, error) {
	js, err := s.store.GetJobSeekerByUser(ctx, u.ID)
	if err == nil {
		return domain.JobSeekerAccount{User: *u, Profile: *js}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	e, err := s.store.GetEmployerByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return domain.EmployerAccount{User: *u, Profile: *e}, nil
}

// rollbackUser deletes a half-registered user even when the request context
// is already cancelled.
func (s *Service) rollbackUser(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		slog.Error("registration rollback failed", "userId", userID, "err", err)
	}
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" && !strings.Contains(s, ",") {
			out = append(out, s)
		}
	}
	return out
}
