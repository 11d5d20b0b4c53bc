package feeds

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

func mustConfig(t *testing.T, params url.Values) *FeedConfig {
	t.Helper()
	cfg, err := ParseConfig(NewFeedParams(params), testValidTypes)
	require.NoError(t, err)
	return cfg
}

func sampleIOC() domain.IOC {
	asn := int32(13335)
	return domain.IOC{
		Name:             "1.2.3.4",
		Scanner:          true,
		FirstSeen:        time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC),
		LastSeen:         time.Date(2026, 8, 31, 17, 45, 0, 0, time.UTC),
		DaysSeen:         []time.Time{time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
		NumberOfDaysSeen: 2,
		AttackCount:      17,
		InteractionCount: 5,
		LoginAttempts:    3,
		DestinationPorts: []int32{22, 2222},
		IPReputation:     "known attacker",
		ASN:              &asn,
		Cowrie:           true,
	}
}

func TestRenderItemsFieldMapping(t *testing.T) {
	cfg := mustConfig(t, url.Values{})
	items, err := RenderItems([]domain.IOC{sampleIOC()}, cfg, testValidTypes, false)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "1.2.3.4", item.Value)
	assert.True(t, item.Scanner)
	assert.False(t, item.PayloadRequest)
	assert.Equal(t, "2026-08-28", item.FirstSeen)
	assert.Equal(t, "2026-08-31", item.LastSeen)
	assert.Equal(t, 17, item.AttackCount)
	assert.Equal(t, 5, item.InteractionCount)
	assert.Equal(t, "cowrie", item.FeedType)
	assert.Equal(t, "known attacker", item.IPReputation)
	require.NotNil(t, item.ASN)
	assert.Equal(t, int32(13335), *item.ASN)
	assert.Equal(t, 2, item.DestinationPortCount)
	assert.Equal(t, 3, item.LoginAttempts)

	// verbose-only fields stay empty
	assert.Nil(t, item.DaysSeen)
	assert.Nil(t, item.DestinationPorts)
	assert.Nil(t, item.Honeypots)
}

func TestRenderItemsJSONRoundTrip(t *testing.T) {
	cfg := mustConfig(t, url.Values{})
	items, err := RenderItems([]domain.IOC{sampleIOC()}, cfg, testValidTypes, false)
	require.NoError(t, err)

	payload, err := json.Marshal(FeedResponse{License: FeedsLicense, IOCs: items})
	require.NoError(t, err)

	var decoded FeedResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, FeedsLicense, decoded.License)
	assert.Equal(t, items, decoded.IOCs)
}

func TestRenderItemsVerbose(t *testing.T) {
	ioc := sampleIOC()
	ioc.Honeypots = []domain.Membership{{Name: "Heralding", Active: true}}

	cfg := mustConfig(t, url.Values{"verbose": {"true"}})
	items, err := RenderItems([]domain.IOC{ioc}, cfg, testValidTypes, false)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, []string{"2026-08-28", "2026-08-31"}, item.DaysSeen)
	assert.Equal(t, []int32{22, 2222}, item.DestinationPorts)
	// resolved builtin label is appended to the membership list
	assert.Equal(t, []string{"heralding", "cowrie"}, item.Honeypots)
}

func TestRenderItemsValidationFailClosed(t *testing.T) {
	broken := sampleIOC()
	broken.Name = "" // violates the value schema

	cfg := mustConfig(t, url.Values{})
	_, err := RenderItems([]domain.IOC{sampleIOC(), broken}, cfg, testValidTypes, false)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "value")
}

func TestRenderItemsSkipValidation(t *testing.T) {
	broken := sampleIOC()
	broken.Name = ""

	cfg := mustConfig(t, url.Values{})
	items, err := RenderItems([]domain.IOC{broken}, cfg, testValidTypes, true)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRenderItemsVerboseSkipsValidation(t *testing.T) {
	broken := sampleIOC()
	broken.Name = ""

	cfg := mustConfig(t, url.Values{"verbose": {"true"}})
	items, err := RenderItems([]domain.IOC{broken}, cfg, testValidTypes, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRenderItemsFeedTypeSort(t *testing.T) {
	log4j := sampleIOC()
	log4j.Name = "9.9.9.9"
	log4j.Cowrie = false
	log4j.Log4j = true

	heralding := sampleIOC()
	heralding.Name = "8.8.8.8"
	heralding.Cowrie = false
	heralding.Honeypots = []domain.Membership{{Name: "Heralding", Active: true}}

	cowrie := sampleIOC()

	iocs := []domain.IOC{log4j, heralding, cowrie}

	cfg := mustConfig(t, url.Values{"ordering": {"feed_type"}})
	items, err := RenderItems(iocs, cfg, testValidTypes, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"cowrie", "heralding", "log4j"}, feedTypes(items))

	cfg = mustConfig(t, url.Values{"ordering": {"-feed_type"}})
	items, err = RenderItems(iocs, cfg, testValidTypes, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"log4j", "heralding", "cowrie"}, feedTypes(items))
}

func feedTypes(items []FeedItem) []string {
	types := make([]string, len(items))
	for i, item := range items {
		types[i] = item.FeedType
	}
	return types
}

func TestValueLines(t *testing.T) {
	first := sampleIOC()
	second := sampleIOC()
	second.Name = "5.6.7.8"

	var lines []string
	for line := range ValueLines([]domain.IOC{first, second}) {
		lines = append(lines, line)
	}

	require.Len(t, lines, 3)
	assert.Equal(t, LicenseLine(), lines[0])
	assert.Equal(t, []string{"1.2.3.4", "5.6.7.8"}, lines[1:])
}

func TestItemValidatorUnknownFeedType(t *testing.T) {
	validator, err := NewItemValidator(testValidTypes)
	require.NoError(t, err)

	item := FeedItem{
		Value:        "1.2.3.4",
		FirstSeen:    "2026-08-28",
		LastSeen:     "2026-08-31",
		FeedType:     "not-registered",
		IPReputation: "",
	}
	err = validator.Validate(item)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "feed_type")
}

func TestItemValidatorBadDate(t *testing.T) {
	validator, err := NewItemValidator(testValidTypes)
	require.NoError(t, err)

	item := FeedItem{
		Value:     "1.2.3.4",
		FirstSeen: "28/08/2026",
		LastSeen:  "2026-08-31",
		FeedType:  "cowrie",
	}
	err = validator.Validate(item)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "first_seen")
}
