package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"jobmate/board-service/internal/domain"
)

const jobSelect = `
	SELECT j.id, j.employer_id, e.company_name, j.title, j.department, j.location,
	       j.job_type, j.experience_level, j.salary, j.description, j.requirements,
	       j.is_active, j.created_at
	FROM jobs j
	JOIN employers e ON e.id = j.employer_id`

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	if err := row.Scan(&j.ID, &j.EmployerID, &j.CompanyName, &j.Title, &j.Department, &j.Location,
		&j.JobType, &j.ExperienceLevel, &j.Salary, &j.Description, &j.Requirements,
		&j.IsActive, &j.CreatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) CreateJob(ctx context.Context, job domain.Job) (*domain.Job, error) {
	created, err := scanJob(s.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO jobs (employer_id, title, department, location, job_type, experience_level,
		                     salary, description, requirements, is_active)
		   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		   RETURNING *
		 )
		 SELECT ins.id, ins.employer_id, e.company_name, ins.title, ins.department, ins.location,
		        ins.job_type, ins.experience_level, ins.salary, ins.description, ins.requirements,
		        ins.is_active, ins.created_at
		 FROM ins JOIN employers e ON e.id = ins.employer_id`,
		job.EmployerID, job.Title, job.Department, job.Location, string(job.JobType),
		string(job.ExperienceLevel), job.Salary, job.Description, job.Requirements, job.IsActive,
	))
	if err != nil {
		return nil, mapError(err, "createJob", nil)
	}
	return created, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "getJob", nil)
	}
	return j, nil
}

func (s *Store) UpdateJob(ctx context.Context, job domain.Job) (*domain.Job, error) {
	updated, err := scanJob(s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE jobs
		   SET title = $1, department = $2, location = $3, job_type = $4, experience_level = $5,
		       salary = $6, description = $7, requirements = $8
		   WHERE id = $9
		   RETURNING *
		 )
		 SELECT upd.id, upd.employer_id, e.company_name, upd.title, upd.department, upd.location,
		        upd.job_type, upd.experience_level, upd.salary, upd.description, upd.requirements,
		        upd.is_active, upd.created_at
		 FROM upd JOIN employers e ON e.id = upd.employer_id`,
		job.Title, job.Department, job.Location, string(job.JobType), string(job.ExperienceLevel),
		job.Salary, job.Description, job.Requirements, job.ID,
	))
	if err != nil {
		return nil, mapError(err, "updateJob", nil)
	}
	return updated, nil
}

// ToggleJobActive flips is_active in one statement.
func (s *Store) ToggleJobActive(ctx context.Context, id string) (*domain.Job, error) {
	updated, err := scanJob(s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE jobs SET is_active = NOT is_active WHERE id = $1 RETURNING *
		 )
		 SELECT upd.id, upd.employer_id, e.company_name, upd.title, upd.department, upd.location,
		        upd.job_type, upd.experience_level, upd.salary, upd.description, upd.requirements,
		        upd.is_active, upd.created_at
		 FROM upd JOIN employers e ON e.id = upd.employer_id`,
		id,
	))
	if err != nil {
		return nil, mapError(err, "toggleJobActive", nil)
	}
	return updated, nil
}

// ScanJobs streams rows to fn, newest first, closing the cursor as soon as
// fn returns false.
func (s *Store) ScanJobs(ctx context.Context, q domain.JobQuery, fn func(domain.Job) bool) error {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ActiveOnly {
		where = append(where, "j.is_active")
	}
	if q.EmployerID != "" {
		where = append(where, "j.employer_id = "+arg(q.EmployerID))
	}
	if q.JobType != "" {
		where = append(where, "j.job_type = "+arg(string(q.JobType)))
	}
	if q.ExperienceLevel != "" {
		where = append(where, "j.experience_level = "+arg(string(q.ExperienceLevel)))
	}
	if q.Location != "" {
		where = append(where, "j.location ILIKE "+arg(likePattern(q.Location)))
	}
	if q.Text != "" {
		p := arg(likePattern(q.Text))
		where = append(where, fmt.Sprintf("(j.title ILIKE %[1]s OR j.description ILIKE %[1]s OR e.company_name ILIKE %[1]s)", p))
	}

	sql := jobSelect
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY j.created_at DESC, j.id"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return mapError(err, "scanJobs query", nil)
	}
	defer rows.Close()

	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return fmt.Errorf("scanJobs scan: %w", err)
		}
		if !fn(*j) {
			return nil
		}
	}
	return mapError(rows.Err(), "scanJobs rows", nil)
}

func (s *Store) SiteStats(ctx context.Context) (domain.SiteStats, error) {
	var st domain.SiteStats
	err := s.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM jobs WHERE is_active),
		        (SELECT COUNT(*) FROM employers),
		        (SELECT COUNT(*) FROM job_seekers)`,
	).Scan(&st.ActiveJobs, &st.Companies, &st.Candidates)
	if err != nil {
		return st, mapError(err, "siteStats", nil)
	}
	return st, nil
}
