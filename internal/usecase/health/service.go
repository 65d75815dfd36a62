// Package health aggregates component liveness checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	QueueDepth int64
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	vision VisionChecker
	queue  QueueDepther
}

// New creates a Service. vision and queue can be nil.
func New(db DBPinger, vision VisionChecker, queue QueueDepther) *Service {
	return &Service{db: db, vision: vision, queue: queue}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.vision != nil {
		if err := s.vision.HealthCheck(ctx); err != nil {
			checks["vision"] = CheckError
		} else {
			checks["vision"] = CheckOK
		}
	}

	var depth int64
	if s.queue != nil {
		if n, err := s.queue.Depth(ctx); err != nil {
			checks["queue"] = CheckError
		} else {
			checks["queue"] = CheckOK
			depth = n
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, QueueDepth: depth}
}
