package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"jobmate/board-service/internal/domain"
)

const userColumns = `id, username, email, first_name, password_hash, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	created, err := scanUser(s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, first_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.PasswordHash,
	))
	if err != nil {
		return nil, mapError(err, "createUser", domain.ErrDuplicateUser)
	}
	return created, nil
}

// DeleteUser removes the user; profiles, jobs and applications follow by
// ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "deleteUser", nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "getUserByID", nil)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, mapError(err, "getUserByUsername", nil)
	}
	return u, nil
}

// ─── Job seekers ─────────────────────────────────────────────────────────────

const seekerColumns = `id, user_id, full_name, phone, location, skills, experience, education, bio, resume_path, created_at`

func scanSeeker(row pgx.Row) (*domain.JobSeeker, error) {
	var (
		js     domain.JobSeeker
		skills string
	)
	if err := row.Scan(&js.ID, &js.UserID, &js.FullName, &js.Phone, &js.Location, &skills,
		&js.Experience, &js.Education, &js.Bio, &js.ResumePath, &js.CreatedAt); err != nil {
		return nil, err
	}
	js.Skills = domain.ParseSkills(skills)
	return &js, nil
}

func (s *Store) CreateJobSeeker(ctx context.Context, js domain.JobSeeker) (*domain.JobSeeker, error) {
	created, err := scanSeeker(s.pool.QueryRow(ctx,
		`INSERT INTO job_seekers (user_id, full_name, phone, location, skills, experience, education, bio, resume_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+seekerColumns,
		js.UserID, js.FullName, js.Phone, js.Location, domain.JoinSkills(js.Skills),
		js.Experience, js.Education, js.Bio, js.ResumePath,
	))
	if err != nil {
		return nil, mapError(err, "createJobSeeker", domain.ErrDuplicateUser)
	}
	return created, nil
}

func (s *Store) GetJobSeekerByUser(ctx context.Context, userID string) (*domain.JobSeeker, error) {
	js, err := scanSeeker(s.pool.QueryRow(ctx, `SELECT `+seekerColumns+` FROM job_seekers WHERE user_id = $1`, userID))
	if err != nil {
		return nil, mapError(err, "getJobSeekerByUser", nil)
	}
	return js, nil
}

func (s *Store) UpdateJobSeeker(ctx context.Context, js domain.JobSeeker) (*domain.JobSeeker, error) {
	updated, err := scanSeeker(s.pool.QueryRow(ctx,
		`UPDATE job_seekers
		 SET full_name = $1, phone = $2, location = $3, skills = $4,
		     experience = $5, education = $6, bio = $7, resume_path = $8
		 WHERE id = $9
		 RETURNING `+seekerColumns,
		js.FullName, js.Phone, js.Location, domain.JoinSkills(js.Skills),
		js.Experience, js.Education, js.Bio, js.ResumePath, js.ID,
	))
	if err != nil {
		return nil, mapError(err, "updateJobSeeker", nil)
	}
	return updated, nil
}

// ─── Employers ───────────────────────────────────────────────────────────────

const employerColumns = `id, user_id, company_name, contact_person, phone, company_address, is_verified, created_at`

func scanEmployer(row pgx.Row) (*domain.Employer, error) {
	var e domain.Employer
	if err := row.Scan(&e.ID, &e.UserID, &e.CompanyName, &e.ContactPerson, &e.Phone,
		&e.CompanyAddress, &e.IsVerified, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEmployer(ctx context.Context, e domain.Employer) (*domain.Employer, error) {
	created, err := scanEmployer(s.pool.QueryRow(ctx,
		`INSERT INTO employers (user_id, company_name, contact_person, phone, company_address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+employerColumns,
		e.UserID, e.CompanyName, e.ContactPerson, e.Phone, e.CompanyAddress,
	))
	if err != nil {
		return nil, mapError(err, "createEmployer", domain.ErrDuplicateUser)
	}
	return created, nil
}

func (s *Store) GetEmployerByUser(ctx context.Context, userID string) (*domain.Employer, error) {
	e, err := scanEmployer(s.pool.QueryRow(ctx, `SELECT `+employerColumns+` FROM employers WHERE user_id = $1`, userID))
	if err != nil {
		return nil, mapError(err, "getEmployerByUser", nil)
	}
	return e, nil
}

// UpdateEmployer never touches is_verified; verification is an admin action.
func (s *Store) UpdateEmployer(ctx context.Context, e domain.Employer) (*domain.Employer, error) {
	updated, err := scanEmployer(s.pool.QueryRow(ctx,
		`UPDATE employers
		 SET company_name = $1, contact_person = $2, phone = $3, company_address = $4
		 WHERE id = $5
		 RETURNING `+employerColumns,
		e.CompanyName, e.ContactPerson, e.Phone, e.CompanyAddress, e.ID,
	))
	if err != nil {
		return nil, mapError(err, "updateEmployer", nil)
	}
	return updated, nil
}

func (s *Store) ListEmployerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM employers ORDER BY id`)
	if err != nil {
		return nil, mapError(err, "listEmployerIDs", nil)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err, "listEmployerIDs scan", nil)
	}
	return ids, nil
}
