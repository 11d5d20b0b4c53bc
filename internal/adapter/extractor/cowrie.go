package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// CowrieExtractor pulls SSH/telnet attack events from a cowrie honeypot
// sensor and aggregates them into IOC records.
type CowrieExtractor struct {
	client  *SensorClient
	baseURL string
	window  time.Duration
}

func NewCowrieExtractor(client *SensorClient, baseURL string, window time.Duration) *CowrieExtractor {
	return &CowrieExtractor{client: client, baseURL: baseURL, window: window}
}

func (e *CowrieExtractor) Name() string {
	return "cowrie"
}

// Extract fetches the events of the last extraction window. Every source
// IP talking to cowrie counts as a scanner; login and command events
// additionally count as interactions.
func (e *CowrieExtractor) Extract(ctx context.Context) ([]domain.IOC, error) {
	events, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}

	agg := newAggregator()
	for _, ev := range events {
		ioc := agg.observe(ev)
		if ioc == nil {
			continue
		}
		ioc.Cowrie = true
		ioc.Scanner = true
		if strings.HasPrefix(ev.EventID, "cowrie.login.") {
			ioc.LoginAttempts++
		}
		if interactionEvent(ev.EventID) {
			ioc.InteractionCount++
		}
	}
	return agg.result(), nil
}

func (e *CowrieExtractor) fetch(ctx context.Context) ([]sensorEvent, error) {
	since := time.Now().UTC().Add(-e.window)
	endpoint := fmt.Sprintf("%s/api/events?honeypot=cowrie&since=%s",
		e.baseURL, url.QueryEscape(since.Format(time.RFC3339)))

	var events []sensorEvent
	if err := e.client.GetJSON(ctx, endpoint, &events); err != nil {
		return nil, fmt.Errorf("fetching cowrie events: %w", err)
	}
	return events, nil
}

// interactionEvent reports whether the attacker got past the TCP handshake.
func interactionEvent(eventID string) bool {
	switch {
	case strings.HasPrefix(eventID, "cowrie.login."),
		strings.HasPrefix(eventID, "cowrie.command."),
		strings.HasPrefix(eventID, "cowrie.session.file_"):
		return true
	}
	return false
}
