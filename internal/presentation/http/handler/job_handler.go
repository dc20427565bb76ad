package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
	"github.com/sangkips/billdesk/pkg/apperror"
)

// JobHandler starts backups and reports background job state.
type JobHandler struct {
	jobs   *service.JobTracker
	backup *service.BackupService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *service.JobTracker, backup *service.BackupService) *JobHandler {
	return &JobHandler{jobs: jobs, backup: backup}
}

// StartBackup writes a backup archive in the background.
func (h *JobHandler) StartBackup(c *gin.Context) {
	job, started := h.jobs.StartExclusive("backup", func(ctx context.Context) (any, error) {
		return h.backup.Create(ctx)
	})
	if !started {
		response.Error(c, apperror.NewConflictError("A backup is already running (job "+job.ID+")"))
		return
	}
	response.Accepted(c, "Backup started", job)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, ok := h.jobs.Get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Job not found")
		return
	}
	response.OK(c, "Job retrieved", job)
}
