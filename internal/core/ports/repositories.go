package ports

import (
	"context"
	"time"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// FeedFilter is the store-level selection a feed request compiles down to.
// Zero values mean "no constraint" except for LastSeenAfter, MinDaysSeen
// and Limit, which are always set by the query builder.
type FeedFilter struct {
	Log4j          bool   // require the log4j flag
	Cowrie         bool   // require the cowrie flag
	HoneypotName   string // require an active membership by name, case-insensitive
	Scanner        bool
	PayloadRequest bool

	LastSeenAfter time.Time
	MinDaysSeen   int

	IncludeReputation []string
	ExcludeReputation []string

	OrderBy    string // raw store column
	Descending bool
	Limit      int
}

// IOCRepository is the externally-owned record store.
type IOCRepository interface {
	// FindFeed returns the filtered, ordered, size-limited records with
	// honeypot memberships prefetched.
	FindFeed(ctx context.Context, filter FeedFilter) ([]domain.IOC, error)
	// SaveBatch upserts extracted records, merging attack counters and
	// observation days into existing rows.
	SaveBatch(ctx context.Context, iocs []domain.IOC) error
}

// HoneypotRegistry lists and registers honeypot sensor sources.
// Registrations change over the system's lifetime, so callers must not
// cache results across requests.
type HoneypotRegistry interface {
	ListActive(ctx context.Context) ([]domain.Honeypot, error)
	Register(ctx context.Context, name string) error
}

// StatisticsSink records one entry per served feed request. Writes are
// append-only and fire-and-forget: a failure must never abort the read path.
type StatisticsSink interface {
	RecordRequest(ctx context.Context, source string) error
}

// AttackExtractor pulls aggregated attack observations from a honeypot
// sensor. Implemented by the ingestion adapters.
type AttackExtractor interface {
	Extract(ctx context.Context) ([]domain.IOC, error)
	Name() string
}
