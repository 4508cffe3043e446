package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"jobmate/board-service/internal/domain"
)

const applicationColumns = `id, job_seeker_id, job_id, status, cover_letter, applied_date, updated_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(&a.ID, &a.JobSeekerID, &a.JobID, &a.Status, &a.CoverLetter, &a.AppliedDate, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication relies on UNIQUE (job_seeker_id, job_id): a conflicting
// insert returns no row, which is reported as a duplicate.
func (s *Store) CreateApplication(ctx context.Context, app domain.Application) (*domain.Application, error) {
	created, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_seeker_id, job_id, status, cover_letter)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_seeker_id, job_id) DO NOTHING
		 RETURNING `+applicationColumns,
		app.JobSeekerID, app.JobID, string(app.Status), app.CoverLetter,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDuplicateApplication
	}
	if err != nil {
		return nil, mapError(err, "createApplication", domain.ErrDuplicateApplication)
	}
	return created, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "getApplication", nil)
	}
	return a, nil
}

// UpdateApplicationStatus is last-writer-wins.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status domain.Status) (*domain.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+applicationColumns,
		string(status), id,
	))
	if err != nil {
		return nil, mapError(err, "updateApplicationStatus", nil)
	}
	return a, nil
}

func (s *Store) ApplicationExists(ctx context.Context, seekerID, jobID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_seeker_id = $1 AND job_id = $2)`,
		seekerID, jobID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "applicationExists", nil)
	}
	return exists, nil
}

func (s *Store) CountApplications(ctx context.Context, scope domain.Scope) (map[domain.Status]int, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.JobID != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT status, COUNT(*) FROM applications WHERE job_id = $1 GROUP BY status`,
			scope.JobID)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT a.status, COUNT(*)
			 FROM applications a
			 JOIN jobs j ON j.id = a.job_id
			 WHERE j.employer_id = $1
			 GROUP BY a.status`,
			scope.EmployerID)
	}
	if err != nil {
		return nil, mapError(err, "countApplications query", nil)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var (
			status domain.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapError(err, "countApplications scan", nil)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "countApplications rows", nil)
	}
	return counts, nil
}

const detailSelect = `
	SELECT a.id, a.job_seeker_id, a.job_id, a.status, a.cover_letter, a.applied_date, a.updated_at,
	       j.title, e.company_name, s.full_name
	FROM applications a
	JOIN jobs j        ON j.id = a.job_id
	JOIN employers e   ON e.id = j.employer_id
	JOIN job_seekers s ON s.id = a.job_seeker_id`

func (s *Store) ListApplicationsBySeeker(ctx context.Context, seekerID string) ([]domain.ApplicationDetail, error) {
	rows, err := s.pool.Query(ctx, detailSelect+` WHERE a.job_seeker_id = $1 ORDER BY a.applied_date DESC`, seekerID)
	if err != nil {
		return nil, mapError(err, "listApplicationsBySeeker", nil)
	}
	return collectDetails(rows)
}

func (s *Store) ListApplicationsByEmployer(ctx context.Context, employerID, jobID string) ([]domain.ApplicationDetail, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if jobID != "" {
		rows, err = s.pool.Query(ctx,
			detailSelect+` WHERE j.employer_id = $1 AND a.job_id = $2 ORDER BY a.applied_date DESC`,
			employerID, jobID)
	} else {
		rows, err = s.pool.Query(ctx,
			detailSelect+` WHERE j.employer_id = $1 ORDER BY a.applied_date DESC`,
			employerID)
	}
	if err != nil {
		return nil, mapError(err, "listApplicationsByEmployer", nil)
	}
	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]domain.ApplicationDetail, error) {
	defer rows.Close()
	items := make([]domain.ApplicationDetail, 0)
	for rows.Next() {
		var d domain.ApplicationDetail
		if err := rows.Scan(
			&d.ID, &d.JobSeekerID, &d.JobID, &d.Status, &d.CoverLetter, &d.AppliedDate, &d.UpdatedAt,
			&d.JobTitle, &d.CompanyName, &d.JobSeekerName,
		); err != nil {
			return nil, mapError(err, "scan application", nil)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "application rows", nil)
	}
	return items, nil
}
