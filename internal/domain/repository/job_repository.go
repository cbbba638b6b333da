package repository

import (
	"context"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
)

// JobFilter narrows a listing query. Zero values mean "no constraint".
type JobFilter struct {
	JobType  string
	Location string
	Company  string
	Tag      string
	Query    string // matches title or company
	Limit    int
}

// JobRepository defines read/write access to job listings.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Job, error)
	List(ctx context.Context, f JobFilter) ([]entity.Job, error)
	Create(ctx context.Context, j *entity.Job) error
}
