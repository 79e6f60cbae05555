// Package listing defines the property record consumed by the edge gateway
// and the slug codec used for SEO-friendly URLs.
package listing

// Listing is a read-only view of a property record as stored in Supabase.
// The gateway never creates or mutates listings; it only resolves them.
type Listing struct {
	ID           int64   `json:"id"`
	Code         string  `json:"kode_listing"`
	Title        string  `json:"judul_properti"`
	PropertyType string  `json:"jenis_properti"`
	Status       string  `json:"status"`
	Province     string  `json:"provinsi"`
	Regency      string  `json:"kabupaten"`
	Description  string  `json:"deskripsi"`
	Price        float64 `json:"harga_properti"`
	ImageURL     string  `json:"image_url"`
	ImageURL1    string  `json:"image_url1"`
	ImageURL2    string  `json:"image_url2"`
	ImageURL3    string  `json:"image_url3"`
	ImageURL4    string  `json:"image_url4"`
}

// Images returns the non-empty image URLs in display order.
func (l Listing) Images() []string {
	all := []string{l.ImageURL, l.ImageURL1, l.ImageURL2, l.ImageURL3, l.ImageURL4}
	out := make([]string, 0, len(all))
	for _, u := range all {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// MainImage returns the first available image, or fallback when the listing
// has no images at all.
func (l Listing) MainImage(fallback string) string {
	for _, u := range l.Images() {
		return u
	}
	return fallback
}
