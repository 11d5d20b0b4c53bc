package extractor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// Log4potExtractor pulls log4shell scan and exploitation events from a
// log4pot honeypot sensor.
type Log4potExtractor struct {
	client  *SensorClient
	baseURL string
	window  time.Duration
}

func NewLog4potExtractor(client *SensorClient, baseURL string, window time.Duration) *Log4potExtractor {
	return &Log4potExtractor{client: client, baseURL: baseURL, window: window}
}

func (e *Log4potExtractor) Name() string {
	return "log4pot"
}

// Extract fetches the events of the last extraction window. Plain probes
// mark the source as a scanner; "exploit" and "payload" events carry a
// crafted request body and mark it as a payload requester.
func (e *Log4potExtractor) Extract(ctx context.Context) ([]domain.IOC, error) {
	since := time.Now().UTC().Add(-e.window)
	endpoint := fmt.Sprintf("%s/api/events?honeypot=log4pot&since=%s",
		e.baseURL, url.QueryEscape(since.Format(time.RFC3339)))

	var events []sensorEvent
	if err := e.client.GetJSON(ctx, endpoint, &events); err != nil {
		return nil, fmt.Errorf("fetching log4pot events: %w", err)
	}

	agg := newAggregator()
	for _, ev := range events {
		ioc := agg.observe(ev)
		if ioc == nil {
			continue
		}
		ioc.Log4j = true
		switch ev.EventID {
		case "exploit", "payload":
			ioc.PayloadRequest = true
			ioc.InteractionCount++
		default:
			ioc.Scanner = true
		}
	}
	return agg.result(), nil
}
