// Package feeds turns raw feed request parameters into validated queries
// and renders the resulting IOC records into JSON, CSV or plain text.
package feeds

import (
	"net/url"
	"strings"
)

// Defaults applied by NewFeedParams when a parameter is absent.
const (
	DefaultFeedType    = "all"
	DefaultAttackType  = "all"
	DefaultMaxAge      = "3"
	DefaultMinDaysSeen = "1"
	DefaultFeedSize    = "5000"
	DefaultOrdering    = "-last_seen"
	DefaultFormat      = "json"
)

// FeedParams holds the raw, normalized request parameters of a feed
// request. Values stay strings until ParseConfig turns them into a typed
// FeedConfig; normalization only fills defaults, lower-cases enum
// parameters and splits list parameters.
type FeedParams struct {
	FeedType          string
	AttackType        string
	MaxAge            string
	MinDaysSeen       string
	IncludeReputation []string
	ExcludeReputation []string
	FeedSize          string
	Ordering          string
	Verbose           string
	Paginate          string
	Format            string
}

// NewFeedParams normalizes raw query parameters into a FeedParams with
// documented defaults. The ordering parameter keeps a historical alias:
// any literal "value" substring is rewritten to "name".
func NewFeedParams(query url.Values) *FeedParams {
	return &FeedParams{
		FeedType:          strings.ToLower(get(query, "feed_type", DefaultFeedType)),
		AttackType:        strings.ToLower(get(query, "attack_type", DefaultAttackType)),
		MaxAge:            get(query, "max_age", DefaultMaxAge),
		MinDaysSeen:       get(query, "min_days_seen", DefaultMinDaysSeen),
		IncludeReputation: splitList(query, "include_reputation"),
		ExcludeReputation: splitList(query, "exclude_reputation"),
		FeedSize:          get(query, "feed_size", DefaultFeedSize),
		Ordering:          strings.ReplaceAll(strings.ToLower(get(query, "ordering", DefaultOrdering)), "value", "name"),
		Verbose:           strings.ToLower(get(query, "verbose", "false")),
		Paginate:          strings.ToLower(get(query, "paginate", "false")),
		Format:            strings.ToLower(get(query, "format", DefaultFormat)),
	}
}

// SetLegacyAge translates the deprecated single-parameter age selector onto
// the max_age / min_days_seen scheme. The ordering is only reset while it
// still carries the feed_type-oriented default, so an explicit ordering
// survives the translation. Unknown tokens are left for upstream rejection.
func (p *FeedParams) SetLegacyAge(age string) {
	switch age {
	case "recent":
		p.MaxAge = "3"
		p.MinDaysSeen = "1"
		if strings.Contains(p.Ordering, "feed_type") {
			p.Ordering = "-last_seen"
		}
	case "persistent":
		p.MaxAge = "14"
		p.MinDaysSeen = "10"
		if strings.Contains(p.Ordering, "feed_type") {
			p.Ordering = "-attack_count"
		}
	}
}

func get(query url.Values, key, fallback string) string {
	if !query.Has(key) {
		return fallback
	}
	return query.Get(key)
}

// splitList parses a ;-separated list parameter. An absent key yields nil,
// never a one-element slice containing the empty string.
func splitList(query url.Values, key string) []string {
	if !query.Has(key) {
		return nil
	}
	return strings.Split(query.Get(key), ";")
}
