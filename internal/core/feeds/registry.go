package feeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/regulartim/GreedyBear/internal/core/domain"
	"github.com/regulartim/GreedyBear/internal/core/ports"
)

// ValidFeedTypes returns the union of the built-in labels and the
// lower-cased names of all currently-active registered honeypots. The set
// is recomputed on every call: registrations change while the service runs,
// and a cached set would validate against stale state.
func ValidFeedTypes(ctx context.Context, registry ports.HoneypotRegistry) ([]string, error) {
	honeypots, err := registry.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active honeypots: %w", err)
	}

	types := []string{domain.FeedTypeLog4j, domain.FeedTypeCowrie, domain.FeedTypeAll}
	for _, hp := range honeypots {
		types = append(types, strings.ToLower(hp.Name))
	}
	return types, nil
}
