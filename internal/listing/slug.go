package listing

import (
	"regexp"
	"strings"
)

// Status tokens used as the leading slug segment. Unrecognized or missing
// statuses fall back to StatusForSale.
const (
	StatusForSale        = "dijual"
	StatusForRent        = "disewakan"
	StatusForSaleAndRent = "dijual-dan-disewakan"
)

// codePattern matches listing codes like H15, K2.60 or AB3.1: letters, digits,
// optional decimal suffix.
var codePattern = regexp.MustCompile(`^[A-Za-z]+\d+(\.\d+)?$`)

// punctuation removed from titles before keyword extraction.
var titlePunct = regexp.MustCompile(`[^\w\s-]`)

// segmentJunk removes anything that cannot appear in a slug segment.
var segmentJunk = regexp.MustCompile(`[^a-z0-9\s-]`)

var multiDash = regexp.MustCompile(`-+`)

// stopWords excluded from title keywords.
var stopWords = map[string]struct{}{
	"dan": {}, "atau": {}, "dengan": {}, "yang": {}, "di": {},
	"ke": {}, "dari": {}, "untuk": {}, "oleh": {}, "pada": {}, "dalam": {},
}

// provincePrefixes stripped from province names before slugging.
var provincePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^DI\.\s*`),
	regexp.MustCompile(`(?i)^DAERAH\s+ISTIMEWA\s+`),
}

// provinceFragments are lowercase tokens that identify Indonesian province
// names inside a slug. Used only by ParseSlug's positional heuristic.
var provinceFragments = map[string]struct{}{
	"aceh": {}, "bali": {}, "banten": {}, "bengkulu": {}, "gorontalo": {},
	"jakarta": {}, "jambi": {}, "jawa": {}, "kalimantan": {}, "lampung": {},
	"maluku": {}, "nusa": {}, "papua": {}, "riau": {}, "sulawesi": {},
	"sumatera": {}, "yogyakarta": {},
}

// Slug builds the SEO path segment for a listing:
// {status}-{type}-{province}-{regency}-{title keywords}-{code}.
// Empty fields drop out; the code keeps its original case. The result is
// best-effort and never fails.
func Slug(l Listing) string {
	parts := []string{
		normalizeStatus(l.Status),
		orDefault(l.PropertyType, "properti"),
		cleanProvince(l.Province),
		strings.ToLower(l.Regency),
		titleKeywords(l.Title),
	}

	cleaned := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		if s := cleanSegment(p); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if code := strings.TrimSpace(l.Code); code != "" {
		cleaned = append(cleaned, code)
	}
	return strings.Join(cleaned, "-")
}

// Key is the lossy result of parsing a slug. Only Code is reliable enough to
// act on; the remaining fields are positional guesses and callers should
// re-fetch the record by code instead of trusting them.
type Key struct {
	Code         string
	Status       string
	PropertyType string
	Province     string
	Regency      string
	Title        string
}

// ParseSlug extracts a best-effort lookup key from a path segment. It scans
// from the end for a code-shaped token; if none matches, the last segment is
// taken as the code verbatim. Slug is not bijective with ParseSlug: hyphens
// inside titles or regency names cannot be split back unambiguously.
func ParseSlug(slug string) (Key, bool) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return Key{}, false
	}
	parts := strings.Split(slug, "-")

	codeIdx := -1
	var key Key
	for i := len(parts) - 1; i >= 0; i-- {
		if codePattern.MatchString(parts[i]) {
			key.Code = strings.ToUpper(parts[i])
			codeIdx = i
			break
		}
	}
	if codeIdx < 0 {
		codeIdx = len(parts) - 1
		key.Code = parts[codeIdx]
	}

	rest := parts[:codeIdx]
	if len(rest) > 0 {
		key.Status = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		key.PropertyType = rest[0]
		rest = rest[1:]
	}

	// Province/regency: prefer a known province fragment, otherwise assume
	// the first two remaining segments are positional.
	provIdx := -1
	for i, p := range rest {
		if _, ok := provinceFragments[p]; ok {
			provIdx = i
			break
		}
	}
	switch {
	case provIdx >= 0:
		key.Province = rest[provIdx]
		rest = append(rest[:provIdx], rest[provIdx+1:]...)
		if len(rest) > 0 {
			key.Regency = rest[0]
			rest = rest[1:]
		}
	case len(rest) >= 2:
		key.Province = rest[0]
		key.Regency = rest[1]
		rest = rest[2:]
	case len(rest) == 1:
		key.Province = rest[0]
		rest = nil
	}

	key.Title = strings.Join(rest, " ")
	return key, true
}

// CodeShaped reports whether s looks like a listing code on its own.
func CodeShaped(s string) bool {
	return codePattern.MatchString(s)
}

func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusForRent:
		return StatusForRent
	case StatusForSaleAndRent, "dijual dan disewakan":
		return StatusForSaleAndRent
	default:
		return StatusForSale
	}
}

func cleanProvince(province string) string {
	for _, re := range provincePrefixes {
		province = re.ReplaceAllString(province, "")
	}
	return strings.ToLower(strings.TrimSpace(province))
}

// titleKeywords keeps at most three meaningful words from a title.
func titleKeywords(title string) string {
	if title == "" {
		return ""
	}
	clean := titlePunct.ReplaceAllString(strings.ToLower(title), "")
	words := strings.Fields(clean)
	kept := make([]string, 0, 3)
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
		if len(kept) == 3 {
			break
		}
	}
	return strings.Join(kept, "-")
}

func cleanSegment(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = segmentJunk.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
