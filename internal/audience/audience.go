// Package audience classifies incoming User-Agent strings so the router can
// decide between serving share-card metadata and redirecting to the SPA.
package audience

import "regexp"

// Audience is the kind of requester behind a User-Agent string.
type Audience int

const (
	// Human is any interactive browser, and the fail-open default for
	// unknown or absent User-Agent values.
	Human Audience = iota
	// Crawler is a social-platform link unfurler fetching preview metadata.
	Crawler
)

// crawlerPattern lists the link-preview bots worth serving static metadata
// to. Ordinary search engine bots are not included: they get the SPA shell
// like everyone else.
var crawlerPattern = regexp.MustCompile(`(?i)facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegrambot|discordbot|slackbot`)

// Classify inspects a raw User-Agent header value. It is a pure function:
// no I/O, no state.
func Classify(userAgent string) Audience {
	if userAgent == "" {
		return Human
	}
	if crawlerPattern.MatchString(userAgent) {
		return Crawler
	}
	return Human
}

func (a Audience) String() string {
	if a == Crawler {
		return "crawler"
	}
	return "human"
}
