package domain

import "time"

// Built-in feed type labels. Every other label comes from the honeypot
// registry at runtime.
const (
	FeedTypeLog4j   = "log4j"
	FeedTypeCowrie  = "cowrie"
	FeedTypeAll     = "all"
	FeedTypeUnknown = "unknown"
)

// Attack type flags an IOC can carry.
const (
	AttackTypeAll            = "all"
	AttackTypeScanner        = "scanner"
	AttackTypePayloadRequest = "payload_request"
)

// Honeypot is a registered sensor source producing IOC observations.
// Names are unique case-insensitively; deactivated honeypots stay in the
// registry but drop out of every feed.
type Honeypot struct {
	ID     int64
	Name   string
	Active bool
}

// Membership links an IOC to a registered honeypot that observed it.
type Membership struct {
	Name   string
	Active bool
}

// IOC is one aggregated indicator of compromise, identified by its value
// (an IP address). Records are produced by the extraction jobs and are
// read-only to the feed path.
type IOC struct {
	ID               int64
	Name             string // the IOC value, e.g. "1.2.3.4"
	Scanner          bool
	PayloadRequest   bool
	FirstSeen        time.Time
	LastSeen         time.Time
	DaysSeen         []time.Time // distinct days on which the IOC was observed
	NumberOfDaysSeen int
	AttackCount      int
	InteractionCount int
	LoginAttempts    int
	DestinationPorts []int32
	IPReputation     string
	ASN              *int32
	Log4j            bool
	Cowrie           bool
	Honeypots        []Membership
}
