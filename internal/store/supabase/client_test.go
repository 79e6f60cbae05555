package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salambumi/property-edge/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestFetchByCode_Found(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/properties", r.URL.Path)
		require.Equal(t, "eq.K2.60", r.URL.Query().Get("kode_listing"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "test-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":             42,
			"kode_listing":   "K2.60",
			"judul_properti": "Rumah Mewah",
			"kabupaten":      "Sleman",
		}})
	})

	l, err := c.FetchByCode(context.Background(), "K2.60")
	require.NoError(t, err)
	require.Equal(t, "K2.60", l.Code)
	require.Equal(t, int64(42), l.ID)
	require.Equal(t, "Sleman", l.Regency)
}

func TestFetchByCode_EmptyArrayIsNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})

	_, err := c.FetchByCode(context.Background(), "ZZ99")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NotErrorIs(t, err, store.ErrLookupFailed)
}

func TestFetchByCode_ServerErrorIsLookupFailed(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchByCode(context.Background(), "K2.60")
	require.ErrorIs(t, err, store.ErrLookupFailed)
	require.NotErrorIs(t, err, store.ErrNotFound)
}

func TestFetchByCode_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL, APIKey: "k"})

	_, err := c.FetchByCode(context.Background(), "K2.60")
	require.ErrorIs(t, err, store.ErrLookupFailed)
}

func TestFetchByCode_DeadlineIsLookupFailed(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c.cfg.Timeout = 50 * time.Millisecond

	_, err := c.FetchByCode(context.Background(), "K2.60")
	require.ErrorIs(t, err, store.ErrLookupFailed)
}

func TestCreateLead(t *testing.T) {
	t.Parallel()

	var got Lead
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/v1/lead_captures", r.URL.Path)
		require.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	lead := Lead{UserIntent: "tanya harga", WhatsApp: "+628123456789", SessionID: "s-1"}
	require.NoError(t, c.CreateLead(context.Background(), lead))
	require.Equal(t, "tanya harga", got.UserIntent)
	require.Equal(t, "+628123456789", got.WhatsApp)
}

func TestCreateLead_InsertError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	})

	err := c.CreateLead(context.Background(), Lead{UserIntent: "x", WhatsApp: "y"})
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrLookupFailed))
}

func TestListLeads(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/lead_captures", r.URL.Path)
		require.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"user_intent":"beli rumah","whatsapp":"0812"}]`))
	})

	leads, err := c.ListLeads(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, "beli rumah", leads[0].UserIntent)
}
