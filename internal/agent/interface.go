package agent

import "context"

// Agent is a background job the scheduler can run on a cron schedule or on demand.
type Agent interface {
	// GetName is the unique name used for logging and manual runs.
	GetName() string

	// GetSchedule returns a cron spec such as "0 18 * * *", or "" for on-demand only.
	GetSchedule() string

	Execute(ctx context.Context) error
}
