package health

import "context"

// Pinger checks availability of a storage backend (database, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecommenderChecker checks recommendation service availability.
type RecommenderChecker interface {
	HealthCheck(ctx context.Context) error
}
