// Package store defines the backing-store contract for listings and leads.
// The store is external (Supabase); this subsystem is a read path for
// listings and an append-only path for leads.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/salambumi/property-edge/internal/listing"
)

// ErrNotFound means the query matched no record. Callers map this to a 404
// or a silent fallthrough; it is not a transport failure.
var ErrNotFound = errors.New("store: not found")

// ErrLookupFailed means the store was unreachable or answered non-2xx.
// Callers map this to a 500. Distinguish it from ErrNotFound.
var ErrLookupFailed = errors.New("store: lookup failed")

// Lead is a captured contact intent from the public site.
type Lead struct {
	UserIntent string    `json:"user_intent"`
	WhatsApp   string    `json:"whatsapp"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	PageURL    string    `json:"page_url,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Provider is the full backing-store surface the gateway consumes.
type Provider interface {
	// FetchByCode resolves a listing by its exact code. Returns ErrNotFound
	// when the code matches nothing and ErrLookupFailed on store errors.
	FetchByCode(ctx context.Context, code string) (listing.Listing, error)
	// CreateLead appends a lead record.
	CreateLead(ctx context.Context, lead Lead) error
	// ListLeads returns the most recent leads, newest first.
	ListLeads(ctx context.Context, limit int) ([]Lead, error)
}
