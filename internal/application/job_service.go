package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	repo "github.com/nasihat/dashboard-api/internal/domain/repository"
)

// JobService serves the dashboard job listings: filtered listing from
// Postgres and free-text search via Elasticsearch when configured, falling
// back to a SQL ILIKE match otherwise.
type JobService struct {
	Repo       repo.JobRepository
	Logger     *logrus.Logger
	ES         *elasticsearch.Client
	ESJobIndex string
}

func NewJobService(repo repo.JobRepository, logger *logrus.Logger, es *elasticsearch.Client, esJobIndex string) *JobService {
	return &JobService{Repo: repo, Logger: logger, ES: es, ESJobIndex: esJobIndex}
}

func (s *JobService) List(ctx context.Context, f repo.JobFilter) ([]entity.Job, error) {
	jobs, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*entity.Job, error) {
	j, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	return j, nil
}

// Search performs a multi_match query over title, company, and description.
func (s *JobService) Search(ctx context.Context, q string, size int) ([]entity.Job, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES == nil || s.ESJobIndex == "" {
		return s.List(ctx, repo.JobFilter{Query: q, Limit: size})
	}

	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "company^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESJobIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to sql")
		}
		return s.List(ctx, repo.JobFilter{Query: q, Limit: size})
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string `json:"_id"`
				Source struct {
					Company     string   `json:"company"`
					Title       string   `json:"title"`
					Location    string   `json:"location"`
					Salary      string   `json:"salary"`
					JobType     string   `json:"job_type"`
					Tags        []string `json:"tags"`
					Description string   `json:"description"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	out := make([]entity.Job, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.Job{
			ID:          h.ID,
			Company:     h.Source.Company,
			Title:       h.Source.Title,
			Location:    h.Source.Location,
			Salary:      h.Source.Salary,
			JobType:     h.Source.JobType,
			Tags:        h.Source.Tags,
			Description: h.Source.Description,
		})
	}
	return out, nil
}

// Index writes one listing into the search index; best effort.
func (s *JobService) Index(ctx context.Context, j *entity.Job) error {
	if s.ES == nil || s.ESJobIndex == "" {
		return nil
	}
	doc := map[string]any{
		"company":     j.Company,
		"title":       j.Title,
		"location":    j.Location,
		"salary":      j.Salary,
		"job_type":    j.JobType,
		"tags":        j.Tags,
		"description": j.Description,
		"posted_at":   j.PostedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESJobIndex, DocumentID: j.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("job_id", j.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("job_id", j.ID).Warn("es index response error")
	}
	return nil
}
