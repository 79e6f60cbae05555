package sharecard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salambumi/property-edge/internal/listing"
)

const placeholder = "https://images.example.com/placeholder.jpg"

func newTestRenderer() *Renderer {
	return New("Salam Bumi Property", placeholder)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		price float64
		want  string
	}{
		{0, "Harga belum ditentukan"},
		{1_500_000_000, "Rp 1.5M"},
		{2_000_000_000, "Rp 2.0M"},
		{750_000_000, "Rp 750.0M"},
		{1_000_000, "Rp 1.0M"},
		{500_000, "Rp 500.000"},
		{999, "Rp 999"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatPrice(tc.price), "price %v", tc.price)
	}
}

func TestTitle_SynthesizedWhenEmpty(t *testing.T) {
	t.Parallel()

	l := listing.Listing{PropertyType: "ruang_usaha", Regency: "Sleman"}
	require.Equal(t, "Ruang usaha di Sleman", Title(l))

	l.Title = "Kost Eksklusif"
	require.Equal(t, "Kost Eksklusif", Title(l))
}

func TestDescription_TruncatesLongText(t *testing.T) {
	t.Parallel()

	l := listing.Listing{Description: strings.Repeat("a", 100)}
	got := Description(l)
	require.Len(t, got, 80)
	require.True(t, strings.HasSuffix(got, "..."))

	l.Description = strings.Repeat("b", 80)
	require.Equal(t, l.Description, Description(l))
}

func TestDescription_SynthesizedWithPrice(t *testing.T) {
	t.Parallel()

	l := listing.Listing{
		Status:   "dijual",
		Province: "Yogyakarta",
		Regency:  "Sleman",
		Price:    1_500_000_000,
	}
	require.Equal(t, "Properti dijual di Sleman, Yogyakarta. Rp 1.5M", Description(l))
}

func TestRender_MetaTags(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	l := listing.Listing{
		Code:     "K2.60",
		Title:    "Rumah Mewah",
		ImageURL: "https://cdn.example.com/k260.jpg",
	}
	html, err := r.Render(l, "https://salambumi.xyz/p/K2.60", "https://salambumi.xyz/properti/42")
	require.NoError(t, err)

	require.Contains(t, html, `<meta property="og:type" content="website">`)
	require.Contains(t, html, `<meta property="og:url" content="https://salambumi.xyz/p/K2.60">`)
	require.Contains(t, html, `<meta property="og:title" content="Rumah Mewah">`)
	require.Contains(t, html, `<meta property="og:image" content="https://cdn.example.com/k260.jpg">`)
	require.Contains(t, html, `<meta property="og:image:width" content="1200">`)
	require.Contains(t, html, `<meta property="og:image:height" content="630">`)
	require.Contains(t, html, `<meta property="og:site_name" content="Salam Bumi Property">`)
	require.Contains(t, html, `<meta name="twitter:card" content="summary_large_image">`)
	require.Contains(t, html, `url=https://salambumi.xyz/properti/42`)
	require.Contains(t, html, `klik di sini`)
}

func TestRender_PlaceholderWhenNoImages(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	l := listing.Listing{Code: "H15", Title: "Tanah Kosong"}
	html, err := r.Render(l, "https://salambumi.xyz/p/H15", "https://salambumi.xyz/properti/7")
	require.NoError(t, err)
	require.Contains(t, html, placeholder)
}

func TestRender_EscapesUserText(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	l := listing.Listing{Code: "A1", Title: `<script>alert("x")</script>`}
	html, err := r.Render(l, "https://salambumi.xyz/p/A1", "https://salambumi.xyz/properti/1")
	require.NoError(t, err)
	require.NotContains(t, html, `<script>alert`)
}

func TestSPAShell(t *testing.T) {
	t.Parallel()

	html, err := SPAShell("https://salambumi.xyz", "Salam Bumi Property")
	require.NoError(t, err)
	require.Contains(t, html, "window.location.href")
	require.Contains(t, html, "salambumi.xyz")
	require.Contains(t, html, "Mengalihkan ke aplikasi")
}
