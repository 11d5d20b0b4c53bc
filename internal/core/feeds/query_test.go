package feeds

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testValidTypes = []string{"log4j", "cowrie", "all", "heralding"}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(NewFeedParams(url.Values{}), testValidTypes)
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.FeedType)
	assert.Equal(t, "all", cfg.AttackType)
	assert.Equal(t, 3, cfg.MaxAge)
	assert.Equal(t, 1, cfg.MinDaysSeen)
	assert.Equal(t, 5000, cfg.FeedSize)
	assert.Equal(t, "last_seen", cfg.OrderField)
	assert.True(t, cfg.OrderDescending)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "json", cfg.Format)
}

func TestParseConfigLegacyAgeEquivalence(t *testing.T) {
	legacy := NewFeedParams(url.Values{})
	legacy.SetLegacyAge("recent")
	explicit := NewFeedParams(url.Values{"max_age": {"3"}, "min_days_seen": {"1"}})

	legacyCfg, err := ParseConfig(legacy, testValidTypes)
	require.NoError(t, err)
	explicitCfg, err := ParseConfig(explicit, testValidTypes)
	require.NoError(t, err)

	assert.Equal(t, explicitCfg, legacyCfg)
}

func TestParseConfigInvalidFeedType(t *testing.T) {
	p := NewFeedParams(url.Values{"feed_type": {"nonexistent-honeypot"}})
	_, err := ParseConfig(p, testValidTypes)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "feed_type")
}

func TestParseConfigAggregatesAllViolations(t *testing.T) {
	p := NewFeedParams(url.Values{
		"feed_type":   {"bogus"},
		"attack_type": {"ddos"},
		"max_age":     {"many"},
		"feed_size":   {"0"},
		"ordering":    {"shoe_size"},
		"verbose":     {"yes"},
		"format":      {"xml"},
	})
	_, err := ParseConfig(p, testValidTypes)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"feed_type", "attack_type", "max_age", "feed_size", "ordering", "verbose", "format"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestParseConfigFeedSizeBounds(t *testing.T) {
	tests := []struct {
		size  string
		valid bool
	}{
		{"1", true},
		{"5000", true},
		{"0", false},
		{"5001", false},
		{"-3", false},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			p := NewFeedParams(url.Values{"feed_size": {tt.size}})
			_, err := ParseConfig(p, testValidTypes)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, "feed_size")
			}
		})
	}
}

func TestParseConfigOrdering(t *testing.T) {
	p := NewFeedParams(url.Values{"ordering": {"-attack_count"}})
	cfg, err := ParseConfig(p, testValidTypes)
	require.NoError(t, err)

	assert.Equal(t, "attack_count", cfg.OrderField)
	assert.True(t, cfg.OrderDescending)
}

func TestFilterFeedAndAttackTypes(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params url.Values
		check  func(t *testing.T, cfg *FeedConfig)
	}{
		{
			name:   "all applies no type filter",
			params: url.Values{},
			check: func(t *testing.T, cfg *FeedConfig) {
				f := cfg.Filter(now)
				assert.False(t, f.Log4j)
				assert.False(t, f.Cowrie)
				assert.Empty(t, f.HoneypotName)
			},
		},
		{
			name:   "builtin feed type sets flag",
			params: url.Values{"feed_type": {"log4j"}},
			check: func(t *testing.T, cfg *FeedConfig) {
				f := cfg.Filter(now)
				assert.True(t, f.Log4j)
				assert.Empty(t, f.HoneypotName)
			},
		},
		{
			name:   "registered honeypot matches by name",
			params: url.Values{"feed_type": {"heralding"}},
			check: func(t *testing.T, cfg *FeedConfig) {
				f := cfg.Filter(now)
				assert.Equal(t, "heralding", f.HoneypotName)
			},
		},
		{
			name:   "attack type flag",
			params: url.Values{"attack_type": {"payload_request"}},
			check: func(t *testing.T, cfg *FeedConfig) {
				f := cfg.Filter(now)
				assert.True(t, f.PayloadRequest)
				assert.False(t, f.Scanner)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig(NewFeedParams(tt.params), testValidTypes)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestFilterAgeWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	p := NewFeedParams(url.Values{"max_age": {"14"}, "min_days_seen": {"10"}})
	cfg, err := ParseConfig(p, testValidTypes)
	require.NoError(t, err)

	f := cfg.Filter(now)
	assert.Equal(t, now.AddDate(0, 0, -14), f.LastSeenAfter)
	assert.Equal(t, 10, f.MinDaysSeen)
}

func TestFilterFeedTypeOrderingIsDeferred(t *testing.T) {
	p := NewFeedParams(url.Values{"ordering": {"feed_type"}})
	cfg, err := ParseConfig(p, testValidTypes)
	require.NoError(t, err)

	f := cfg.Filter(time.Now())
	// The store cannot sort by the derived field; it falls back to the
	// default ordering and the renderer re-sorts.
	assert.Equal(t, "last_seen", f.OrderBy)
	assert.True(t, f.Descending)
	assert.Equal(t, OrderingFeedType, cfg.OrderField)
	assert.False(t, cfg.OrderDescending)
}

func TestFilterReputation(t *testing.T) {
	p := NewFeedParams(url.Values{
		"include_reputation": {"known attacker"},
		"exclude_reputation": {"tor exit node;mass scanner"},
	})
	cfg, err := ParseConfig(p, testValidTypes)
	require.NoError(t, err)

	f := cfg.Filter(time.Now())
	assert.Equal(t, []string{"known attacker"}, f.IncludeReputation)
	assert.Equal(t, []string{"tor exit node", "mass scanner"}, f.ExcludeReputation)
}
