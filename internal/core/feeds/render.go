package feeds

import (
	"iter"
	"sort"
	"strings"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// FeedsLicense protects all generated feeds.
const FeedsLicense = "https://github.com/honeynet/GreedyBear/blob/main/FEEDS_LICENSE.md"

// LicenseLine is the first line of every txt/csv feed and the license field
// of every JSON feed.
func LicenseLine() string {
	return "# These feeds are generated by The Honeynet Project once every 10 minutes" +
		" and are protected by the following license: " + FeedsLicense
}

// FeedItem is one rendered IOC of a JSON feed. The verbose-only fields are
// omitted unless verbose mode fills them.
type FeedItem struct {
	Value                string   `json:"value"`
	Scanner              bool     `json:"scanner"`
	PayloadRequest       bool     `json:"payload_request"`
	FirstSeen            string   `json:"first_seen"`
	LastSeen             string   `json:"last_seen"`
	AttackCount          int      `json:"attack_count"`
	InteractionCount     int      `json:"interaction_count"`
	FeedType             string   `json:"feed_type"`
	IPReputation         string   `json:"ip_reputation"`
	ASN                  *int32   `json:"asn"`
	DestinationPortCount int      `json:"destination_port_count"`
	LoginAttempts        int      `json:"login_attempts"`
	DaysSeen             []string `json:"days_seen,omitempty"`
	DestinationPorts     []int32  `json:"destination_ports,omitempty"`
	Honeypots            []string `json:"honeypots,omitempty"`
}

// FeedResponse is the JSON feed payload.
type FeedResponse struct {
	License string     `json:"license"`
	IOCs    []FeedItem `json:"iocs"`
}

const dateLayout = "2006-01-02"

// RenderItems classifies and renders the fetched records into feed items.
// Unless verbose mode or skipValidation is set, each item is independently
// schema-validated and the first invalid item aborts the whole response.
// When the requested ordering is the derived feed_type field, a stable
// secondary sort over the resolved labels replaces the store ordering.
func RenderItems(iocs []domain.IOC, cfg *FeedConfig, validTypes []string, skipValidation bool) ([]FeedItem, error) {
	chain := domain.ClassifierChain(cfg.FeedType)

	var validator *ItemValidator
	if !skipValidation && !cfg.Verbose {
		var err error
		if validator, err = NewItemValidator(validTypes); err != nil {
			return nil, err
		}
	}

	items := make([]FeedItem, 0, len(iocs))
	for _, ioc := range iocs {
		item := renderItem(ioc, domain.ResolveFeedType(ioc, chain), cfg.Verbose)
		if validator != nil {
			if err := validator.Validate(item); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}

	if cfg.OrderField == OrderingFeedType {
		sort.SliceStable(items, func(i, j int) bool {
			if cfg.OrderDescending {
				return items[i].FeedType > items[j].FeedType
			}
			return items[i].FeedType < items[j].FeedType
		})
	}

	return items, nil
}

func renderItem(ioc domain.IOC, feedType string, verbose bool) FeedItem {
	item := FeedItem{
		Value:                ioc.Name,
		Scanner:              ioc.Scanner,
		PayloadRequest:       ioc.PayloadRequest,
		FirstSeen:            ioc.FirstSeen.Format(dateLayout),
		LastSeen:             ioc.LastSeen.Format(dateLayout),
		AttackCount:          ioc.AttackCount,
		InteractionCount:     ioc.InteractionCount,
		FeedType:             feedType,
		IPReputation:         ioc.IPReputation,
		ASN:                  ioc.ASN,
		DestinationPortCount: len(ioc.DestinationPorts),
		LoginAttempts:        ioc.LoginAttempts,
	}

	if verbose {
		item.DaysSeen = make([]string, 0, len(ioc.DaysSeen))
		for _, day := range ioc.DaysSeen {
			item.DaysSeen = append(item.DaysSeen, day.Format(dateLayout))
		}
		item.DestinationPorts = ioc.DestinationPorts
		item.Honeypots = make([]string, 0, len(ioc.Honeypots)+1)
		for _, hp := range ioc.Honeypots {
			item.Honeypots = append(item.Honeypots, strings.ToLower(hp.Name))
		}
		if feedType == domain.FeedTypeLog4j || feedType == domain.FeedTypeCowrie {
			item.Honeypots = append(item.Honeypots, feedType)
		}
	}

	return item
}

// ValueLines yields the license line followed by one bare IOC value per
// line. The txt and csv paths render from this sequence and skip both the
// feed type classification and the per-item schema validation.
func ValueLines(iocs []domain.IOC) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(LicenseLine()) {
			return
		}
		for _, ioc := range iocs {
			if !yield(ioc.Name) {
				return
			}
		}
	}
}
