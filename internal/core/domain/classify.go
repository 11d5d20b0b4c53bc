package domain

import "strings"

// Classifier resolves a feed type label for an IOC. It returns the empty
// string when it does not match, letting the next classifier in the chain
// take over.
type Classifier func(ioc IOC) string

// RequestedTypeClassifier short-circuits classification when the caller
// asked for a specific registered-honeypot feed: every record in such a
// feed carries the requested label.
func RequestedTypeClassifier(requested string) Classifier {
	return func(IOC) string {
		switch requested {
		case FeedTypeAll, FeedTypeLog4j, FeedTypeCowrie:
			return ""
		default:
			return requested
		}
	}
}

// Log4jClassifier matches records flagged by the log4pot honeypot.
func Log4jClassifier(ioc IOC) string {
	if ioc.Log4j {
		return FeedTypeLog4j
	}
	return ""
}

// CowrieClassifier matches records flagged by the cowrie honeypot.
func CowrieClassifier(ioc IOC) string {
	if ioc.Cowrie {
		return FeedTypeCowrie
	}
	return ""
}

// MembershipClassifier labels a record after its first registered-honeypot
// membership.
func MembershipClassifier(ioc IOC) string {
	if len(ioc.Honeypots) == 0 {
		return ""
	}
	return strings.ToLower(ioc.Honeypots[0].Name)
}

// ClassifierChain returns the ordered classification chain for a request.
// Precedence: requested specific type, log4j flag, cowrie flag, first
// registered-honeypot membership.
func ClassifierChain(requested string) []Classifier {
	return []Classifier{
		RequestedTypeClassifier(requested),
		Log4jClassifier,
		CowrieClassifier,
		MembershipClassifier,
	}
}

// ResolveFeedType runs the chain and returns the first matching label.
// A record matching no classifier is an upstream data defect; it is labeled
// "unknown" instead of failing the whole response.
func ResolveFeedType(ioc IOC, chain []Classifier) string {
	for _, classify := range chain {
		if label := classify(ioc); label != "" {
			return label
		}
	}
	return FeedTypeUnknown
}
