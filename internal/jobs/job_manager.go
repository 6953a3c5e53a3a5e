package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	stateExpirationJob    *StateExpirationJob
	expirationReminderJob *ExpirationReminderJob
}

// NewJobManager creates a new job manager owning the lifecycle of both
// deadline jobs.
func NewJobManager(
	stateExpirationJob *StateExpirationJob,
	expirationReminderJob *ExpirationReminderJob,
) *JobManager {
	return &JobManager{
		stateExpirationJob:    stateExpirationJob,
		expirationReminderJob: expirationReminderJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.stateExpirationJob.Start(); err != nil {
		return fmt.Errorf("failed to start state expiration job: %w", err)
	}

	if err := jm.expirationReminderJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.stateExpirationJob.Stop()
		return fmt.Errorf("failed to start expiration reminder job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.expirationReminderJob.Stop()
	jm.stateExpirationJob.Stop()
}
