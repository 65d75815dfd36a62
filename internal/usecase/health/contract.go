package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// VisionChecker checks vision provider availability.
type VisionChecker interface {
	HealthCheck(ctx context.Context) error
}

// QueueDepther reports the pending job backlog.
type QueueDepther interface {
	Depth(ctx context.Context) (int64, error)
}
