package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/internal/application"
	repo "github.com/nasihat/dashboard-api/internal/domain/repository"
	"github.com/nasihat/dashboard-api/pkg/response"
)

type JobHandler struct {
	Svc    *application.JobService
	Logger *logrus.Logger
}

func NewJobHandler(svc *application.JobService, logger *logrus.Logger) *JobHandler {
	return &JobHandler{Svc: svc, Logger: logger}
}

// List GET /api/jobs?type=&location=&company=&tag=&q=&limit=
func (h *JobHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	f := repo.JobFilter{
		JobType:  c.Query("type"),
		Location: c.Query("location"),
		Company:  c.Query("company"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
		Limit:    limit,
	}
	jobs, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		h.Logger.WithError(err).Error("job listing failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list jobs", nil)
		return
	}
	response.Success(c, http.StatusOK, jobs, "jobs", gin.H{"count": len(jobs)})
}

// Search GET /api/jobs/search?q=&size=
func (h *JobHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	jobs, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("job search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, jobs, "search results", gin.H{"count": len(jobs)})
}

// Get GET /api/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	j, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.WithError(err).Error("job lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load job", nil)
		return
	}
	if j == nil {
		response.Error[any](c, http.StatusNotFound, "job not found", nil)
		return
	}
	response.Success(c, http.StatusOK, j, "job", nil)
}
