// Package sharecard renders the static HTML documents served to social
// crawlers: an Open Graph / Twitter Card preview with a client-side redirect
// for any human that lands on the share URL.
package sharecard

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/salambumi/property-edge/internal/listing"
)

const descriptionLimit = 80

var idPrinter = message.NewPrinter(language.Indonesian)

// Renderer produces share cards for a single site.
type Renderer struct {
	// SiteName fills og:site_name and page titles.
	SiteName string
	// PlaceholderImage is used when a listing carries no images.
	PlaceholderImage string

	tmpl *template.Template
}

// New creates a Renderer.
func New(siteName, placeholderImage string) *Renderer {
	return &Renderer{
		SiteName:         siteName,
		PlaceholderImage: placeholderImage,
		tmpl:             template.Must(template.New("sharecard").Parse(cardTemplate)),
	}
}

type cardData struct {
	SiteName    string
	Title       string
	Description string
	Image       string
	ShareURL    string
	DetailURL   string
}

// Render returns the share-card document for a listing. shareURL is the
// canonical /p/ link embedded in the meta tags; detailURL is where humans get
// redirected. The listing must already be resolved; Render has no failure
// modes of its own beyond template execution.
func (r *Renderer) Render(l listing.Listing, shareURL, detailURL string) (string, error) {
	data := cardData{
		SiteName:    r.SiteName,
		Title:       Title(l),
		Description: Description(l),
		Image:       l.MainImage(r.PlaceholderImage),
		ShareURL:    shareURL,
		DetailURL:   detailURL,
	}
	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render share card: %w", err)
	}
	return b.String(), nil
}

// Title returns the listing title, or a synthesized one from the property
// type and regency when the title is empty.
func Title(l listing.Listing) string {
	if l.Title != "" {
		return l.Title
	}
	t := strings.ReplaceAll(l.PropertyType, "_", " ")
	if t == "" {
		t = "Properti"
	} else {
		t = strings.ToUpper(t[:1]) + t[1:]
	}
	return fmt.Sprintf("%s di %s", t, l.Regency)
}

// Description returns the listing description truncated to 80 characters,
// or a synthesized line with location and price when it is empty.
func Description(l listing.Listing) string {
	if l.Description != "" {
		return truncate(l.Description, descriptionLimit)
	}
	status := l.Status
	if status == "" {
		status = listing.StatusForSale
	}
	return fmt.Sprintf("Properti %s di %s, %s. %s", status, l.Regency, l.Province, FormatPrice(l.Price))
}

// FormatPrice renders a price the way the site does everywhere it shows
// share previews. Both billions and millions compress to the "M" label; that
// matches the established preview format and stays for compatibility.
func FormatPrice(price float64) string {
	switch {
	case price <= 0:
		return "Harga belum ditentukan"
	case price >= 1_000_000_000:
		return fmt.Sprintf("Rp %.1fM", price/1_000_000_000)
	case price >= 1_000_000:
		return fmt.Sprintf("Rp %.1fM", price/1_000_000)
	default:
		return idPrinter.Sprintf("Rp %d", int64(price))
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

const cardTemplate = `<!DOCTYPE html>
<html lang="id">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}} - {{.SiteName}}</title>

	<!-- Open Graph / Facebook -->
	<meta property="og:type" content="website">
	<meta property="og:url" content="{{.ShareURL}}">
	<meta property="og:title" content="{{.Title}}">
	<meta property="og:description" content="{{.Description}}">
	<meta property="og:image" content="{{.Image}}">
	<meta property="og:image:width" content="1200">
	<meta property="og:image:height" content="630">
	<meta property="og:site_name" content="{{.SiteName}}">

	<!-- Twitter -->
	<meta name="twitter:card" content="summary_large_image">
	<meta name="twitter:url" content="{{.ShareURL}}">
	<meta name="twitter:title" content="{{.Title}}">
	<meta name="twitter:description" content="{{.Description}}">
	<meta name="twitter:image" content="{{.Image}}">

	<!-- Auto redirect after 1 second -->
	<meta http-equiv="refresh" content="1; url={{.DetailURL}}">
</head>
<body>
	<div class="container">
		<img src="{{.Image}}" alt="{{.Title}}">
		<h1>{{.Title}}</h1>
		<p>{{.Description}}</p>
		<p>Mengalihkan ke halaman detail...</p>
		<p>Jika tidak dialihkan otomatis, <a href="{{.DetailURL}}">klik di sini</a></p>
	</div>
</body>
</html>
`
