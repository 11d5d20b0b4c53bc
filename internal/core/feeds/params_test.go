package feeds

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFeedParamsDefaults(t *testing.T) {
	p := NewFeedParams(url.Values{})

	assert.Equal(t, "all", p.FeedType)
	assert.Equal(t, "all", p.AttackType)
	assert.Equal(t, "3", p.MaxAge)
	assert.Equal(t, "1", p.MinDaysSeen)
	assert.Empty(t, p.IncludeReputation)
	assert.Empty(t, p.ExcludeReputation)
	assert.Equal(t, "5000", p.FeedSize)
	assert.Equal(t, "-last_seen", p.Ordering)
	assert.Equal(t, "false", p.Verbose)
	assert.Equal(t, "false", p.Paginate)
	assert.Equal(t, "json", p.Format)
}

func TestNewFeedParamsNormalization(t *testing.T) {
	p := NewFeedParams(url.Values{
		"feed_type":   {"Cowrie"},
		"attack_type": {"SCANNER"},
		"format":      {"TXT"},
		"verbose":     {"TRUE"},
	})

	assert.Equal(t, "cowrie", p.FeedType)
	assert.Equal(t, "scanner", p.AttackType)
	assert.Equal(t, "txt", p.Format)
	assert.Equal(t, "true", p.Verbose)
}

func TestNewFeedParamsOrderingAlias(t *testing.T) {
	// "value" is a historical alias for the "name" field.
	p := NewFeedParams(url.Values{"ordering": {"-Value"}})
	assert.Equal(t, "-name", p.Ordering)
}

func TestNewFeedParamsReputationLists(t *testing.T) {
	p := NewFeedParams(url.Values{
		"include_reputation": {"known attacker;mass scanner"},
	})
	assert.Equal(t, []string{"known attacker", "mass scanner"}, p.IncludeReputation)
	assert.Nil(t, p.ExcludeReputation)
}

func TestSetLegacyAge(t *testing.T) {
	tests := []struct {
		name         string
		age          string
		ordering     string
		wantMaxAge   string
		wantMinDays  string
		wantOrdering string
	}{
		{
			name:         "recent resets feed_type ordering",
			age:          "recent",
			ordering:     "feed_type",
			wantMaxAge:   "3",
			wantMinDays:  "1",
			wantOrdering: "-last_seen",
		},
		{
			name:         "recent keeps explicit ordering",
			age:          "recent",
			ordering:     "-attack_count",
			wantMaxAge:   "3",
			wantMinDays:  "1",
			wantOrdering: "-attack_count",
		},
		{
			name:         "persistent resets feed_type ordering",
			age:          "persistent",
			ordering:     "-feed_type",
			wantMaxAge:   "14",
			wantMinDays:  "10",
			wantOrdering: "-attack_count",
		},
		{
			name:         "persistent keeps explicit ordering",
			age:          "persistent",
			ordering:     "name",
			wantMaxAge:   "14",
			wantMinDays:  "10",
			wantOrdering: "name",
		},
		{
			name:         "unknown token is a no-op",
			age:          "ancient",
			ordering:     "feed_type",
			wantMaxAge:   "3",
			wantMinDays:  "1",
			wantOrdering: "feed_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFeedParams(url.Values{"ordering": {tt.ordering}})
			p.SetLegacyAge(tt.age)

			assert.Equal(t, tt.wantMaxAge, p.MaxAge)
			assert.Equal(t, tt.wantMinDays, p.MinDaysSeen)
			assert.Equal(t, tt.wantOrdering, p.Ordering)
		})
	}
}
