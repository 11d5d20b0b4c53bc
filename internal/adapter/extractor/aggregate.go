package extractor

import (
	"net"
	"slices"
	"sort"
	"time"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// sensorEvent is one raw observation reported by a honeypot sensor.
type sensorEvent struct {
	SrcIP     string    `json:"src_ip"`
	Timestamp time.Time `json:"timestamp"`
	DestPort  int32     `json:"dst_port"`
	EventID   string    `json:"eventid"`
}

// aggregator folds raw sensor events into one IOC record per source IP.
// Events with values that do not parse as IP addresses are dropped: sensors
// occasionally log hostnames or garbage in the source field.
type aggregator struct {
	byIP map[string]*domain.IOC
	days map[string]map[string]time.Time
}

func newAggregator() *aggregator {
	return &aggregator{
		byIP: make(map[string]*domain.IOC),
		days: make(map[string]map[string]time.Time),
	}
}

// observe merges one event into the record of its source IP and returns the
// record, or nil when the source is not a valid IP.
func (a *aggregator) observe(ev sensorEvent) *domain.IOC {
	if net.ParseIP(ev.SrcIP) == nil {
		return nil
	}

	ioc, ok := a.byIP[ev.SrcIP]
	if !ok {
		ioc = &domain.IOC{
			Name:      ev.SrcIP,
			FirstSeen: ev.Timestamp,
			LastSeen:  ev.Timestamp,
		}
		a.byIP[ev.SrcIP] = ioc
		a.days[ev.SrcIP] = make(map[string]time.Time)
	}

	if ev.Timestamp.Before(ioc.FirstSeen) {
		ioc.FirstSeen = ev.Timestamp
	}
	if ev.Timestamp.After(ioc.LastSeen) {
		ioc.LastSeen = ev.Timestamp
	}

	day := ev.Timestamp.UTC().Truncate(24 * time.Hour)
	a.days[ev.SrcIP][day.Format(time.DateOnly)] = day

	if ev.DestPort > 0 && !slices.Contains(ioc.DestinationPorts, ev.DestPort) {
		ioc.DestinationPorts = append(ioc.DestinationPorts, ev.DestPort)
	}

	ioc.AttackCount++
	return ioc
}

// result returns the aggregated records sorted by IOC value, with the
// per-record day sets folded into DaysSeen and NumberOfDaysSeen.
func (a *aggregator) result() []domain.IOC {
	iocs := make([]domain.IOC, 0, len(a.byIP))
	for ip, ioc := range a.byIP {
		days := make([]time.Time, 0, len(a.days[ip]))
		for _, day := range a.days[ip] {
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		ioc.DaysSeen = days
		ioc.NumberOfDaysSeen = len(days)
		slices.Sort(ioc.DestinationPorts)
		iocs = append(iocs, *ioc)
	}
	sort.Slice(iocs, func(i, j int) bool { return iocs[i].Name < iocs[j].Name })
	return iocs
}
