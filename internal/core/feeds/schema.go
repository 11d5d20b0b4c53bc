package feeds

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// ItemValidator checks rendered feed items against a JSON schema built for
// the current set of valid feed types. It is compiled once per request
// because the feed type enum is dynamic.
type ItemValidator struct {
	schema *gojsonschema.Schema
}

// NewItemValidator compiles the rendered-item schema. validTypes is the
// dynamic feed type set of the current request; the derived fallback label
// is always admitted.
func NewItemValidator(validTypes []string) (*ItemValidator, error) {
	labels := make([]any, 0, len(validTypes)+1)
	for _, t := range validTypes {
		labels = append(labels, t)
	}
	labels = append(labels, domain.FeedTypeUnknown)

	count := map[string]any{"type": "integer", "minimum": 0}
	date := map[string]any{"type": "string", "pattern": datePattern}

	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value":                  map[string]any{"type": "string", "minLength": 1},
			"scanner":                map[string]any{"type": "boolean"},
			"payload_request":        map[string]any{"type": "boolean"},
			"first_seen":             date,
			"last_seen":              date,
			"attack_count":           count,
			"interaction_count":      count,
			"feed_type":              map[string]any{"enum": labels},
			"ip_reputation":          map[string]any{"type": "string"},
			"asn":                    map[string]any{"type": []string{"integer", "null"}},
			"destination_port_count": count,
			"login_attempts":         count,
		},
		"required": []string{
			"value", "scanner", "payload_request", "first_seen", "last_seen",
			"attack_count", "interaction_count", "feed_type", "ip_reputation",
			"asn", "destination_port_count", "login_attempts",
		},
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compiling feed item schema: %w", err)
	}
	return &ItemValidator{schema: schema}, nil
}

// Validate checks a single rendered item. On failure it returns a
// *ValidationError carrying every violated field.
func (v *ItemValidator) Validate(item FeedItem) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(item))
	if err != nil {
		return fmt.Errorf("validating feed item %q: %w", item.Value, err)
	}
	if result.Valid() {
		return nil
	}

	verr := newValidationError()
	for _, desc := range result.Errors() {
		verr.add(desc.Field(), "%s", desc.Description())
	}
	return verr
}
