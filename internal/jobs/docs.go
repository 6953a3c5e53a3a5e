// Package jobs provides scheduled background tasks for the order lifecycle.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to enforce the time bounds of the pending, submitted and approved states.
//
// # Available Jobs
//
// 1. StateExpirationJob - Runs every minute to escalate orders whose state
// deadline has passed: pending orders are abandoned, submitted orders are
// lapsed on the seller, overdue approved orders are reported to operators.
//
// 2. ExpirationReminderJob - Runs every minute to emit a reminder event for
// orders approaching their deadline.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(expirationJob, reminderJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed escalation of one order never blocks the others; each failure is
// logged and the sweep continues. Concurrent lifecycle transitions are safe:
// the escalation goes through the same per-order lock as every other
// transition and loses cleanly when a user acted first.
package jobs
