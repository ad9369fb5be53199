package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"frogol/internal/domain"
	"frogol/internal/metrics"
	"frogol/internal/service"
)

// Service interfaces define what the handlers need from the service layer.
// Using interfaces instead of concrete types allows for easy mocking in tests.

type FrogolService interface {
	CreateFrogol(ctx context.Context, userID, rawSlug, displayName string) (*domain.Frogol, error)
	GetFrogol(ctx context.Context, id string) (*domain.Frogol, error)
	ListFrogols(ctx context.Context, userID string) ([]domain.FrogolSummary, error)
	GetProfile(ctx context.Context, slug string) (*domain.PublicProfile, error)
	UpdateFrogol(ctx context.Context, id, displayName, theme string, avatarURL, bio *string) (*domain.Frogol, error)
	DeleteFrogol(ctx context.Context, id string) error

	AddLink(ctx context.Context, frogolID, rawURL, label string) (*domain.Link, error)
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	ListLinks(ctx context.Context, frogolID string) ([]*domain.Link, error)
	UpdateLink(ctx context.Context, id, rawURL, label string) (*domain.Link, error)
	SetLinkActive(ctx context.Context, id string, active bool) error
	DeleteLink(ctx context.Context, id string) error
	ReorderLinks(ctx context.Context, orderedIDs []string) error

	RecordClick(ctx context.Context, linkID string, ipAddress, userAgent *string) error
	GetClickStats(ctx context.Context, frogolID string) (*domain.ClickStats, error)
	ClicksPerLink(ctx context.Context, frogolID string) (map[string]int64, error)
	GetUserAnalytics(ctx context.Context, userID string) (*domain.UserAnalytics, error)
}

type LeadService interface {
	CaptureLead(ctx context.Context, frogolID, email string, source, message *string) (*domain.Lead, error)
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	ListLeads(ctx context.Context, frogolID string) ([]*domain.Lead, error)
	UpdateLead(ctx context.Context, id, email string, source *string, score *int64, message *string) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

type AvatarService interface {
	UploadAvatar(ctx context.Context, frogolID string, up service.Upload) (*domain.Frogol, error)
	UploadAvatars(ctx context.Context, frogolID string, uploads []service.Upload) (*domain.Frogol, error)
	Latest(ctx context.Context, frogolID string) (*domain.AvatarImage, error)
	DeleteAvatars(ctx context.Context, frogolID string) error
}

// Handler holds dependencies for HTTP handlers
// This is DEPENDENCY INJECTION - we pass dependencies through the constructor
// instead of using global variables or creating them inside handlers
type Handler struct {
	frogols FrogolService
	leads   LeadService
	auth    AuthService
	avatars AvatarService
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(frogols FrogolService, leads LeadService, auth AuthService, avatars AvatarService, logger *slog.Logger) *Handler {
	return &Handler{
		frogols: frogols,
		leads:   leads,
		auth:    auth,
		avatars: avatars,
		logger:  logger,
	}
}

// Request/Response DTOs (Data Transfer Objects)
// These are separate from domain models so the API contract stays stable
// even if domain models change.

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  UserInfo `json:"user"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CreateFrogolRequest struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name,omitempty"`
}

type UpdateFrogolRequest struct {
	DisplayName string  `json:"display_name"`
	Theme       string  `json:"theme"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

type FrogolResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Theme       *string   `json:"theme,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFrogolResponse(f *domain.Frogol) FrogolResponse {
	return FrogolResponse{
		ID:          f.ID,
		Slug:        f.Slug,
		DisplayName: f.Title(),
		Theme:       f.Theme,
		AvatarURL:   f.AvatarURL,
		Bio:         f.Bio,
		CreatedAt:   f.CreatedAt,
	}
}

type FrogolSummaryResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	TotalLinks  int64     `json:"total_links"`
	TotalLeads  int64     `json:"total_leads"`
	TotalClicks int64     `json:"total_clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSummaryResponse(s domain.FrogolSummary) FrogolSummaryResponse {
	return FrogolSummaryResponse{
		ID:          s.ID,
		Slug:        s.Slug,
		DisplayName: s.DisplayName,
		TotalLinks:  s.TotalLinks,
		TotalLeads:  s.TotalLeads,
		TotalClicks: s.TotalClicks,
		CreatedAt:   s.CreatedAt,
	}
}

type CreateLinkRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

type UpdateLinkRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

type ToggleLinkRequest struct {
	Active bool `json:"active"`
}

type ReorderLinksRequest struct {
	LinkIDs []string `json:"link_ids"`
}

type LinkResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Label     string `json:"label"`
	SortOrder int64  `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
	Kind      string `json:"kind"`
}

func toLinkResponse(l *domain.Link) LinkResponse {
	return LinkResponse{
		ID:        l.ID,
		URL:       l.URL,
		Label:     l.Label,
		SortOrder: l.SortOrder,
		IsActive:  l.IsActive,
		Kind:      l.Kind,
	}
}

type ProfileResponse struct {
	Frogol FrogolResponse `json:"frogol"`
	Links  []LinkResponse `json:"links"`
}

type CaptureLeadRequest struct {
	Email   string  `json:"email"`
	Source  *string `json:"source,omitempty"`
	Message *string `json:"message,omitempty"`
}

type UpdateLeadRequest struct {
	Email   string  `json:"email"`
	Source  *string `json:"source,omitempty"`
	Score   *int64  `json:"score,omitempty"`
	Message *string `json:"message,omitempty"`
}

type LeadResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    *string   `json:"source,omitempty"`
	Score     *int64    `json:"score,omitempty"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toLeadResponse(l *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID,
		Email:     l.Email,
		Source:    l.Source,
		Score:     l.Score,
		Message:   l.Message,
		CreatedAt: l.CreatedAt,
	}
}

type StatsResponse struct {
	TotalClicks   int64            `json:"total_clicks"`
	UniqueClicks  int64            `json:"unique_clicks"`
	ClicksPerLink map[string]int64 `json:"clicks_per_link"`
}

type AnalyticsResponse struct {
	TotalFrogols int64                   `json:"total_frogols"`
	TotalLinks   int64                   `json:"total_links"`
	TotalLeads   int64                   `json:"total_leads"`
	TotalClicks  int64                   `json:"total_clicks"`
	TopFrogols   []FrogolSummaryResponse `json:"top_frogols"`
}

// sessionCookie is the cookie the browser UI uses; API clients send the same
// token as a bearer header instead.
const sessionCookie = "session"

// ==================== AUTH HANDLERS ====================

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err, "Failed to register")
		return
	}

	// Log the fresh account straight in so registration is one round trip
	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err, "Failed to log in after registration")
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusCreated, AuthResponse{
		Token: token,
		User:  UserInfo{ID: user.ID, Email: user.Email},
	}, "Account created")
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err, "Failed to log in")
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusOK, AuthResponse{
		Token: token,
		User:  UserInfo{ID: user.ID, Email: user.Email},
	}, "")
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.respondServiceError(w, err, "Failed to log out")
			return
		}
	}

	// Expire the cookie regardless of whether a token was presented
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondSuccess(w, http.StatusOK, nil, "Logged out")
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ==================== PAGE HANDLERS ====================

// CreateFrogol handles POST /api/v1/frogols
func (h *Handler) CreateFrogol(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req CreateFrogolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	frogol, err := h.frogols.CreateFrogol(r.Context(), user.ID, req.Slug, req.DisplayName)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create frogol")
		return
	}

	respondSuccess(w, http.StatusCreated, toFrogolResponse(frogol), "Frogol created")
}

// ListFrogols handles GET /api/v1/frogols
func (h *Handler) ListFrogols(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	summaries, err := h.frogols.ListFrogols(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list frogols")
		return
	}

	out := make([]FrogolSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryResponse(s))
	}

	respondSuccess(w, http.StatusOK, out, "")
}

// GetFrogol handles GET /api/v1/frogols/{id}
func (h *Handler) GetFrogol(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	respondSuccess(w, http.StatusOK, toFrogolResponse(frogol), "")
}

// UpdateFrogol handles PUT /api/v1/frogols/{id}
func (h *Handler) UpdateFrogol(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	var req UpdateFrogolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	updated, err := h.frogols.UpdateFrogol(r.Context(), frogol.ID, req.DisplayName, req.Theme, req.AvatarURL, req.Bio)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update frogol")
		return
	}

	respondSuccess(w, http.StatusOK, toFrogolResponse(updated), "Frogol updated")
}

// DeleteFrogol handles DELETE /api/v1/frogols/{id}
func (h *Handler) DeleteFrogol(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	// Avatar files live outside the database, so the store cascade can't
	// reach them - clean them up explicitly before the rows go.
	if err := h.avatars.DeleteAvatars(r.Context(), frogol.ID); err != nil {
		h.logger.Warn("Failed to clean up avatar files", "frogol_id", frogol.ID, "error", err)
	}

	if err := h.frogols.DeleteFrogol(r.Context(), frogol.ID); err != nil {
		h.respondServiceError(w, err, "Failed to delete frogol")
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Frogol deleted")
}

// ==================== LINK HANDLERS ====================

// CreateLink handles POST /api/v1/frogols/{id}/links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	link, err := h.frogols.AddLink(r.Context(), frogol.ID, req.URL, req.Label)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create link")
		return
	}

	respondSuccess(w, http.StatusCreated, toLinkResponse(link), "Link created")
}

// ListLinks handles GET /api/v1/frogols/{id}/links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	links, err := h.frogols.ListLinks(r.Context(), frogol.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list links")
		return
	}

	out := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, toLinkResponse(l))
	}

	respondSuccess(w, http.StatusOK, out, "")
}

// UpdateLink handles PUT /api/v1/links/{id}
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	updated, err := h.frogols.UpdateLink(r.Context(), link.ID, req.URL, req.Label)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update link")
		return
	}

	respondSuccess(w, http.StatusOK, toLinkResponse(updated), "Link updated")
}

// ToggleLink handles POST /api/v1/links/{id}/toggle
func (h *Handler) ToggleLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}

	var req ToggleLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	if err := h.frogols.SetLinkActive(r.Context(), link.ID, req.Active); err != nil {
		h.respondServiceError(w, err, "Failed to toggle link")
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Link updated")
}

// DeleteLink handles DELETE /api/v1/links/{id}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}

	if err := h.frogols.DeleteLink(r.Context(), link.ID); err != nil {
		h.respondServiceError(w, err, "Failed to delete link")
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Link deleted")
}

// ReorderLinks handles POST /api/v1/links/reorder
func (h *Handler) ReorderLinks(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req ReorderLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	// An empty request reorders nothing
	if len(req.LinkIDs) == 0 {
		respondSuccess(w, http.StatusOK, nil, "Nothing to reorder")
		return
	}

	// The first id determines the page being reordered; the caller must
	// own that page.
	link, err := h.frogols.GetLink(r.Context(), req.LinkIDs[0])
	if err != nil {
		h.respondServiceError(w, err, "Failed to resolve link")
		return
	}
	frogol, err := h.frogols.GetFrogol(r.Context(), link.FrogolID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to resolve frogol")
		return
	}
	if frogol.UserID != user.ID {
		respondError(w, http.StatusForbidden, "Not your frogol")
		return
	}

	if err := h.frogols.ReorderLinks(r.Context(), req.LinkIDs); err != nil {
		h.respondServiceError(w, err, "Failed to reorder links")
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Links reordered")
}

// ==================== LEAD HANDLERS ====================

// ListLeads handles GET /api/v1/frogols/{id}/leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	leads, err := h.leads.ListLeads(r.Context(), frogol.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list leads")
		return
	}

	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}

	respondSuccess(w, http.StatusOK, out, "")
}

// UpdateLead handles PUT /api/v1/leads/{id}
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := h.ownedLead(w, r)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	updated, err := h.leads.UpdateLead(r.Context(), lead.ID, req.Email, req.Source, req.Score, req.Message)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update lead")
		return
	}

	respondSuccess(w, http.StatusOK, toLeadResponse(updated), "Lead updated")
}

// DeleteLead handles DELETE /api/v1/leads/{id}
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := h.ownedLead(w, r)
	if !ok {
		return
	}

	if err := h.leads.DeleteLead(r.Context(), lead.ID); err != nil {
		h.respondServiceError(w, err, "Failed to delete lead")
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Lead deleted")
}

// ==================== ANALYTICS HANDLERS ====================

// FrogolStats handles GET /api/v1/frogols/{id}/stats
func (h *Handler) FrogolStats(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	stats, err := h.frogols.GetClickStats(r.Context(), frogol.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get stats")
		return
	}

	perLink, err := h.frogols.ClicksPerLink(r.Context(), frogol.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get per-link clicks")
		return
	}

	respondSuccess(w, http.StatusOK, StatsResponse{
		TotalClicks:   stats.TotalClicks,
		UniqueClicks:  stats.UniqueClicks,
		ClicksPerLink: perLink,
	}, "")
}

// UserAnalytics handles GET /api/v1/analytics
func (h *Handler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	analytics, err := h.frogols.GetUserAnalytics(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get analytics")
		return
	}

	top := make([]FrogolSummaryResponse, 0, len(analytics.TopFrogols))
	for _, s := range analytics.TopFrogols {
		top = append(top, toSummaryResponse(s))
	}

	respondSuccess(w, http.StatusOK, AnalyticsResponse{
		TotalFrogols: analytics.TotalFrogols,
		TotalLinks:   analytics.TotalLinks,
		TotalLeads:   analytics.TotalLeads,
		TotalClicks:  analytics.TotalClicks,
		TopFrogols:   top,
	}, "")
}

// ==================== AVATAR HANDLERS ====================

// maxAvatarForm bounds the whole multipart body, with headroom over the
// per-file limit the service enforces.
const maxAvatarForm = 32 << 20

// UploadAvatar handles POST /api/v1/frogols/{id}/avatar
// Accepts multipart form data with one or more files under the "avatar" field.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarForm); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["avatar"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No avatar file in form")
		return
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		uploads = append(uploads, up)
	}

	var (
		updated *domain.Frogol
		err     error
	)
	if len(uploads) == 1 {
		updated, err = h.avatars.UploadAvatar(r.Context(), frogol.ID, uploads[0])
	} else {
		updated, err = h.avatars.UploadAvatars(r.Context(), frogol.ID, uploads)
	}
	if err != nil {
		h.respondServiceError(w, err, "Failed to upload avatar")
		return
	}

	respondSuccess(w, http.StatusOK, toFrogolResponse(updated), "Avatar uploaded")
}

// AvatarInfo describes the page's current avatar image.
type AvatarInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GetAvatar handles GET /api/v1/frogols/{id}/avatar
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	frogol, ok := h.ownedFrogol(w, r)
	if !ok {
		return
	}

	img, err := h.avatars.Latest(r.Context(), frogol.ID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load avatar")
		return
	}
	if img == nil {
		respondError(w, http.StatusNotFound, "No avatar uploaded")
		return
	}

	respondSuccess(w, http.StatusOK, AvatarInfo{
		ID:         img.ID,
		Filename:   img.Filename,
		URL:        service.AvatarURL(img.Filename),
		UploadedAt: img.CreatedAt,
	}, "")
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, err
	}

	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ==================== PUBLIC HANDLERS ====================

// PublicProfile handles GET /api/v1/public/{slug}
func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	profile, err := h.frogols.GetProfile(r.Context(), slug)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load profile")
		return
	}

	links := make([]LinkResponse, 0, len(profile.Links))
	for _, l := range profile.Links {
		links = append(links, toLinkResponse(l))
	}

	respondSuccess(w, http.StatusOK, ProfileResponse{
		Frogol: toFrogolResponse(profile.Frogol),
		Links:  links,
	}, "")
}

// CaptureLead handles POST /api/v1/public/{slug}/leads
// This is a public endpoint - visitors submit their email from the page.
func (h *Handler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	profile, err := h.frogols.GetProfile(r.Context(), slug)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load profile")
		return
	}

	var req CaptureLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	lead, err := h.leads.CaptureLead(r.Context(), profile.Frogol.ID, req.Email, req.Source, req.Message)
	if err != nil {
		h.respondServiceError(w, err, "Failed to capture lead")
		return
	}

	respondSuccess(w, http.StatusCreated, toLeadResponse(lead), "Thanks for subscribing")
}

// RedirectLink handles GET /l/{id} - the public click-through path.
// The click is recorded asynchronously so analytics never slow the visitor
// down; the redirect goes out immediately.
func (h *Handler) RedirectLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	link, err := h.frogols.GetLink(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Link not found")
		return
	}
	if !link.IsActive {
		respondError(w, http.StatusNotFound, "Link not found")
		return
	}

	var ipAddress, userAgent *string
	if ip := extractIP(r); ip != "" {
		ipAddress = &ip
	}
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	go func() {
		// The request context dies when the redirect is written; give the
		// recording its own deadline instead.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.frogols.RecordClick(ctx, link.ID, ipAddress, userAgent); err != nil {
			h.logger.Error("Failed to record click", "link_id", link.ID, "error", err)
		}
	}()

	metrics.RecordRedirect()

	// 302, not 301: the owner can repoint or deactivate the link at any time
	http.Redirect(w, r, link.URL, http.StatusFound)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ==================== OWNERSHIP HELPERS ====================

// ownedFrogol loads the page from the {id} path segment and verifies the
// authenticated user owns it. Writes the error response itself on failure.
func (h *Handler) ownedFrogol(w http.ResponseWriter, r *http.Request) (*domain.Frogol, bool) {
	user := UserFromContext(r.Context())

	frogol, err := h.frogols.GetFrogol(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "Failed to load frogol")
		return nil, false
	}
	if frogol.UserID != user.ID {
		respondError(w, http.StatusForbidden, "Not your frogol")
		return nil, false
	}

	return frogol, true
}

// ownedLink loads the link from the {id} path segment and verifies the
// authenticated user owns its page.
func (h *Handler) ownedLink(w http.ResponseWriter, r *http.Request) (*domain.Link, bool) {
	user := UserFromContext(r.Context())

	link, err := h.frogols.GetLink(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "Failed to load link")
		return nil, false
	}

	frogol, err := h.frogols.GetFrogol(r.Context(), link.FrogolID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load frogol")
		return nil, false
	}
	if frogol.UserID != user.ID {
		respondError(w, http.StatusForbidden, "Not your frogol")
		return nil, false
	}

	return link, true
}

// ownedLead loads the lead from the {id} path segment and verifies the
// authenticated user owns its page.
func (h *Handler) ownedLead(w http.ResponseWriter, r *http.Request) (*domain.Lead, bool) {
	user := UserFromContext(r.Context())

	lead, err := h.leads.GetLead(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "Failed to load lead")
		return nil, false
	}

	frogol, err := h.frogols.GetFrogol(r.Context(), lead.FrogolID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load frogol")
		return nil, false
	}
	if frogol.UserID != user.ID {
		respondError(w, http.StatusForbidden, "Not your frogol")
		return nil, false
	}

	return lead, true
}
