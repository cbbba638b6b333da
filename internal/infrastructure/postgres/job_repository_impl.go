package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	"github.com/nasihat/dashboard-api/internal/domain/repository"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, company, title, website, location, salary, job_type, tags, description, posted_at, created_at, updated_at`

func scanJob(row pgx.Row) (*entity.Job, error) {
	j := &entity.Job{}
	if err := row.Scan(&j.ID, &j.Company, &j.Title, &j.Website, &j.Location,
		&j.Salary, &j.JobType, &j.Tags, &j.Description, &j.PostedAt,
		&j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*entity.Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1
	`, id))
}

// List returns listings matching the filter, newest first.
func (r *JobRepository) List(ctx context.Context, f repository.JobFilter) ([]entity.Job, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE ($1 = '' OR job_type = $1)
		  AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR company ILIKE $3)
		  AND ($4 = '' OR $4 = ANY(tags))
		  AND ($5 = '' OR title ILIKE '%' || $5 || '%' OR company ILIKE '%' || $5 || '%')
		ORDER BY posted_at DESC
		LIMIT $6
	`, f.JobType, f.Location, f.Company, f.Tag, f.Query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]entity.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Create(ctx context.Context, j *entity.Job) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO jobs (company, title, website, location, salary, job_type, tags, description, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, j.Company, j.Title, j.Website, j.Location, j.Salary, j.JobType, j.Tags, j.Description, j.PostedAt)
	return row.Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

var _ repository.JobRepository = (*JobRepository)(nil)
