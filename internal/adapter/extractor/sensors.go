package extractor

import (
	"context"
	"fmt"

	"github.com/regulartim/GreedyBear/internal/core/ports"
)

// SensorsExtractor syncs the honeypot registry with the sensors the
// deployment currently runs, so newly deployed general honeypots become
// valid feed types without a release.
type SensorsExtractor struct {
	client   *SensorClient
	baseURL  string
	registry ports.HoneypotRegistry
}

func NewSensorsExtractor(client *SensorClient, baseURL string, registry ports.HoneypotRegistry) *SensorsExtractor {
	return &SensorsExtractor{client: client, baseURL: baseURL, registry: registry}
}

type sensorInfo struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Run registers every active sensor honeypot reported by the deployment.
// Built-in honeypots are managed by their own extractors and skipped here.
func (e *SensorsExtractor) Run(ctx context.Context) error {
	var sensors []sensorInfo
	if err := e.client.GetJSON(ctx, e.baseURL+"/api/sensors", &sensors); err != nil {
		return fmt.Errorf("fetching sensor list: %w", err)
	}

	for _, sensor := range sensors {
		if !sensor.Active || sensor.Name == "" {
			continue
		}
		if sensor.Name == "cowrie" || sensor.Name == "log4pot" {
			continue
		}
		if err := e.registry.Register(ctx, sensor.Name); err != nil {
			return fmt.Errorf("registering honeypot %q: %w", sensor.Name, err)
		}
	}
	return nil
}
