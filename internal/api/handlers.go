package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salambumi/property-edge/internal/audience"
	"github.com/salambumi/property-edge/internal/listing"
	"github.com/salambumi/property-edge/internal/metrics"
	"github.com/salambumi/property-edge/internal/sharecard"
	"github.com/salambumi/property-edge/internal/store"
)

// handlePropertyShare serves /p/{code}: crawlers get the share card, humans
// get bounced straight to the detail page.
func (s *Server) handlePropertyShare(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Kode listing required")
		return
	}

	l, err := s.store.FetchByCode(r.Context(), code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.LookupOutcome("not_found")
		writeError(w, http.StatusNotFound, "Property not found")
		return
	case err != nil:
		metrics.LookupOutcome("failed")
		s.logger.Error("listing lookup failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	metrics.LookupOutcome("found")

	who := audience.Classify(r.UserAgent())
	metrics.ShareCardDecision("share", who.String())
	if who == audience.Crawler {
		s.serveShareCard(w, l)
		return
	}
	http.Redirect(w, r, s.detailURL(l), http.StatusFound)
}

// handleFallthrough is chi's NotFound handler: the generic slug path. A path
// that decodes to a known listing behaves like a share link; anything else
// gets the SPA shell so client-side routing can take over. Lookup errors fall
// through silently because the path may be a legitimate client-only route.
func (s *Server) handleFallthrough(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.serveSPA(w)
		return
	}
	slug := strings.Trim(r.URL.Path, "/")
	if slug == "" || strings.HasPrefix(r.URL.Path, "/admin") || strings.HasPrefix(r.URL.Path, "/api") {
		s.serveSPA(w)
		return
	}

	key, ok := listing.ParseSlug(slug)
	if !ok {
		s.serveSPA(w)
		return
	}

	l, err := s.store.FetchByCode(r.Context(), key.Code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LookupOutcome("not_found")
		} else {
			metrics.LookupOutcome("failed")
			s.logger.Warn("slug lookup failed", zap.String("slug", slug), zap.Error(err))
		}
		s.serveSPA(w)
		return
	}
	metrics.LookupOutcome("found")

	who := audience.Classify(r.UserAgent())
	metrics.ShareCardDecision("slug", who.String())
	if who == audience.Crawler {
		s.serveShareCard(w, l)
		return
	}
	// Preserve the original path for the SPA as a hash fragment.
	http.Redirect(w, r, s.cfg.Site.BaseURL+"/#"+slug, http.StatusFound)
}

func (s *Server) serveShareCard(w http.ResponseWriter, l listing.Listing) {
	html, err := s.renderer.Render(l, s.shareURL(l), s.detailURL(l))
	if err != nil {
		s.logger.Error("share card render failed", zap.String("code", l.Code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	securityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Error("share card write failed", zap.Error(err))
	}
}

func (s *Server) serveSPA(w http.ResponseWriter) {
	html, err := sharecard.SPAShell(s.cfg.Site.BaseURL, s.cfg.Site.Name)
	if err != nil {
		s.logger.Error("spa shell render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	securityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Error("spa shell write failed", zap.Error(err))
	}
}

func (s *Server) shareURL(l listing.Listing) string {
	return fmt.Sprintf("%s/p/%s", s.cfg.Site.BaseURL, l.Code)
}

func (s *Server) detailURL(l listing.Listing) string {
	return fmt.Sprintf("%s/properti/%d", s.cfg.Site.BaseURL, l.ID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", s.cfg.Site.BaseURL)
}

func (s *Server) handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9()\s.-]{6,18}[0-9]$`)

type leadRequest struct {
	UserIntent string `json:"user_intent"`
	WhatsApp   string `json:"whatsapp"`
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	PageURL    string `json:"page_url"`
	Referrer   string `json:"referrer"`
	SessionID  string `json:"session_id"`
}

// handleLeadCapture validates and stores a contact intent.
func (s *Server) handleLeadCapture(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.UserIntent = strings.TrimSpace(req.UserIntent)
	req.WhatsApp = strings.TrimSpace(req.WhatsApp)
	if req.UserIntent == "" || req.WhatsApp == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: user_intent and whatsapp")
		return
	}
	if len(req.UserIntent) > 500 {
		writeError(w, http.StatusBadRequest, "user_intent too long")
		return
	}
	if !phonePattern.MatchString(req.WhatsApp) {
		writeError(w, http.StatusBadRequest, "invalid whatsapp number")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "session_" + uuid.NewString()
	}
	if req.IPAddress == "" {
		req.IPAddress = clientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	now := s.clock.Now()
	lead := store.Lead{
		UserIntent: req.UserIntent,
		WhatsApp:   req.WhatsApp,
		IPAddress:  truncateField(req.IPAddress, 45),
		UserAgent:  truncateField(req.UserAgent, 500),
		PageURL:    truncateField(req.PageURL, 500),
		Referrer:   truncateField(req.Referrer, 500),
		SessionID:  truncateField(req.SessionID, 100),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateLead(r.Context(), lead); err != nil {
		s.logger.Error("lead insert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save lead data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Lead captured successfully",
		"session_id": lead.SessionID,
	})
}

// handleListLeads is admin-only.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Auth.AdminAPIKey == "" || r.Header.Get("X-API-Key") != s.cfg.Auth.AdminAPIKey {
		writeError(w, http.StatusForbidden, "unauthorized")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	leads, err := s.store.ListLeads(r.Context(), limit)
	if err != nil {
		s.logger.Error("lead list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch leads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

type describeRequest struct {
	Title        string  `json:"judul_properti"`
	PropertyType string  `json:"jenis_properti"`
	Regency      string  `json:"kabupaten"`
	Province     string  `json:"provinsi"`
	Price        float64 `json:"harga_properti"`
}

// handleGenerateDescription proxies a minimal prompt to the AI backend. The
// 30s deadline lives in the client.
func (s *Server) handleGenerateDescription(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "description generation not configured")
		return
	}
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.PropertyType == "" || req.Regency == "" {
		writeError(w, http.StatusBadRequest, "jenis_properti and kabupaten are required")
		return
	}

	prompt := fmt.Sprintf(
		"Tulis deskripsi singkat dan menarik untuk properti berikut. Judul: %s. Jenis: %s. Lokasi: %s, %s. Harga: %s.",
		req.Title, req.PropertyType, req.Regency, req.Province, sharecard.FormatPrice(req.Price),
	)
	text, err := s.generator.Generate(r.Context(), prompt)
	if err != nil {
		s.logger.Error("description generation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to generate description")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}

func truncateField(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
