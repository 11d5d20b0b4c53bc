package feeds

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/regulartim/GreedyBear/internal/core/domain"
	"github.com/regulartim/GreedyBear/internal/core/ports"
)

// MaxFeedSize caps the number of items a single feed request may return.
const MaxFeedSize = 5000

// Formats a feed can be rendered in.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTXT  = "txt"
)

// OrderingFeedType is derived at render time, not stored, so the store-level
// ordering falls back to the default and the renderer re-sorts.
const OrderingFeedType = "feed_type"

// orderableFields whitelists the fields a feed may be ordered by.
var orderableFields = []string{
	"name",
	"first_seen",
	"last_seen",
	"attack_count",
	"interaction_count",
	"login_attempts",
	"number_of_days_seen",
	OrderingFeedType,
}

var validAttackTypes = []string{
	domain.AttackTypeAll,
	domain.AttackTypeScanner,
	domain.AttackTypePayloadRequest,
}

// FeedConfig is the fully typed configuration of a feed request, produced
// by ParseConfig from raw FeedParams. It only exists in validated form.
type FeedConfig struct {
	FeedType          string
	AttackType        string
	MaxAge            int
	MinDaysSeen       int
	IncludeReputation []string
	ExcludeReputation []string
	FeedSize          int
	OrderField        string
	OrderDescending   bool
	Verbose           bool
	Paginate          bool
	Format            string
}

// ParseConfig validates the raw parameters against the dynamic feed type
// set and returns a typed FeedConfig. On failure it returns a
// *ValidationError enumerating every violated field.
func ParseConfig(p *FeedParams, validTypes []string) (*FeedConfig, error) {
	verr := newValidationError()
	cfg := &FeedConfig{
		FeedType:          p.FeedType,
		AttackType:        p.AttackType,
		IncludeReputation: p.IncludeReputation,
		ExcludeReputation: p.ExcludeReputation,
	}

	if !slices.Contains(validTypes, p.FeedType) {
		verr.add("feed_type", "%q is not a valid feed type", p.FeedType)
	}
	if !slices.Contains(validAttackTypes, p.AttackType) {
		verr.add("attack_type", "%q is not a valid attack type", p.AttackType)
	}

	cfg.MaxAge = parseBoundedInt(verr, "max_age", p.MaxAge, 0, -1)
	cfg.MinDaysSeen = parseBoundedInt(verr, "min_days_seen", p.MinDaysSeen, 0, -1)
	cfg.FeedSize = parseBoundedInt(verr, "feed_size", p.FeedSize, 1, MaxFeedSize)

	field, descending := splitOrdering(p.Ordering)
	if !slices.Contains(orderableFields, field) {
		verr.add("ordering", "%q is not an orderable field", p.Ordering)
	}
	cfg.OrderField = field
	cfg.OrderDescending = descending

	cfg.Verbose = parseBool(verr, "verbose", p.Verbose)
	cfg.Paginate = parseBool(verr, "paginate", p.Paginate)

	switch p.Format {
	case FormatJSON, FormatCSV, FormatTXT:
		cfg.Format = p.Format
	default:
		verr.add("format", "%q is not one of json, csv, txt", p.Format)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Filter compiles the configuration into the store-level selection.
func (c *FeedConfig) Filter(now time.Time) ports.FeedFilter {
	filter := ports.FeedFilter{
		LastSeenAfter:     now.AddDate(0, 0, -c.MaxAge),
		MinDaysSeen:       c.MinDaysSeen,
		IncludeReputation: c.IncludeReputation,
		ExcludeReputation: c.ExcludeReputation,
		OrderBy:           c.OrderField,
		Descending:        c.OrderDescending,
		Limit:             c.FeedSize,
	}

	switch c.FeedType {
	case domain.FeedTypeAll:
	case domain.FeedTypeLog4j:
		filter.Log4j = true
	case domain.FeedTypeCowrie:
		filter.Cowrie = true
	default:
		filter.HoneypotName = c.FeedType
	}

	switch c.AttackType {
	case domain.AttackTypeScanner:
		filter.Scanner = true
	case domain.AttackTypePayloadRequest:
		filter.PayloadRequest = true
	}

	// feed_type is derived per record, so the store cannot order by it.
	// The renderer applies the secondary sort over the fetched page.
	if c.OrderField == OrderingFeedType {
		filter.OrderBy = "last_seen"
		filter.Descending = true
	}

	return filter
}

func splitOrdering(ordering string) (field string, descending bool) {
	if rest, ok := strings.CutPrefix(ordering, "-"); ok {
		return rest, true
	}
	return ordering, false
}

// parseBoundedInt parses value as an integer within [min, max]; max < 0
// means unbounded above. Violations are recorded on verr.
func parseBoundedInt(verr *ValidationError, field, value string, min, max int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		verr.add(field, "%q is not an integer", value)
		return 0
	}
	if n < min {
		verr.add(field, "must be at least %d", min)
	}
	if max >= 0 && n > max {
		verr.add(field, "must be at most %d", max)
	}
	return n
}

func parseBool(verr *ValidationError, field, value string) bool {
	switch value {
	case "true":
		return true
	case "false":
		return false
	default:
		verr.add(field, "%q is not one of true, false", value)
		return false
	}
}
