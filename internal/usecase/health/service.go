package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that search works with reduced capability
	// (no cache or no free-text search).
	Degraded Status = "degraded"
	// Unhealthy indicates the place database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase    = "database"
	ComponentCache       = "cache"
	ComponentRecommender = "recommender"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db          Pinger
	cache       Pinger
	recommender RecommenderChecker
}

// New creates a Service. cache and recommender can be nil.
func New(db, cache Pinger, recommender RecommenderChecker) *Service {
	return &Service{db: db, cache: cache, recommender: recommender}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks[ComponentDatabase] = run(ctx, ComponentDatabase, s.db.Ping)
	if s.cache != nil {
		checks[ComponentCache] = run(ctx, ComponentCache, s.cache.Ping)
	}
	if s.recommender != nil {
		checks[ComponentRecommender] = run(ctx, ComponentRecommender, s.recommender.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func run(ctx context.Context, name string, check func(context.Context) error) CheckResult {
	if err := check(ctx); err != nil {
		logger.FromContext(ctx).Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
