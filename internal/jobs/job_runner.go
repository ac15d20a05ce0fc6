package jobs

import (
	"github.com/tobiasgatti02/Tolio-sub002/internal/config"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
	"github.com/tobiasgatti02/Tolio-sub002/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	dealRepo repository.DealRepository
	email    service.EmailService
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(dealRepo repository.DealRepository, email service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		dealRepo: dealRepo,
		email:    email,
		config:   cfg,
	}
}

// Config returns the loaded application configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendOverdueReminders()
}
