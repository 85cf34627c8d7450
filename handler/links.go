package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"shortearn/cache"
	"shortearn/config"
	"shortearn/middleware"
	"shortearn/model"
	"shortearn/shortener"
	"shortearn/store"

	"github.com/rs/zerolog/log"
)

// LinkHandler handles link creation and the authenticated link listing.
type LinkHandler struct {
	allocator *shortener.Allocator
	resolver  *shortener.Resolver
	store     *store.Store
	cache     *cache.Cache
	config    config.Config
	baseURL   string
}

func NewLinkHandler(allocator *shortener.Allocator, resolver *shortener.Resolver, st *store.Store, cacheClient *cache.Cache, cfg config.Config, baseURL string) *LinkHandler {
	return &LinkHandler{
		allocator: allocator,
		resolver:  resolver,
		store:     st,
		cache:     cacheClient,
		config:    cfg,
		baseURL:   baseURL,
	}
}

// CreateShortLink handles POST /api/shorten
// @Summary Create a short link
// @Description Derives a code from the last path segment of the URL and claims it in the global namespace. A taken code is a conflict; no alternative code is generated.
// @Tags Links
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object true "Link request"
// @Success 201 {object} ShortenResponse "Link created"
// @Failure 400 {object} ShortenResponse "Invalid URL or underivable code"
// @Failure 409 {object} ShortenResponse "Short code already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/shorten [post]
func (lh *LinkHandler) CreateShortLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(lh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	var input struct {
		OriginalURL string `json:"originalUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	record, err := lh.allocator.Allocate(ctx, strings.TrimSpace(input.OriginalURL), emailKey)
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		SendJSONSuccess(w, http.StatusBadRequest, ShortenResponse{
			Success: false,
			Message: "Please enter a valid http/https URL.",
		})
		return
	case errors.Is(err, shortener.ErrCannotDeriveCode):
		SendJSONSuccess(w, http.StatusBadRequest, ShortenResponse{
			Success: false,
			Message: "Could not extract file ID.",
		})
		return
	case errors.Is(err, shortener.ErrCodeAlreadyExists):
		SendJSONSuccess(w, http.StatusConflict, ShortenResponse{
			Success: false,
			Message: "This short code already exists. Try a different link.",
		})
		return
	case err != nil:
		log.Error().Err(err).Str("email_key", emailKey).Msg("Allocation failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Something went wrong. Please try again.")
		return
	}

	SendJSONSuccess(w, http.StatusCreated, ShortenResponse{
		Success:  true,
		Message:  "Link shortened successfully!",
		ShortURL: record.ShortURL,
		FileID:   record.FileID,
		QRURL:    lh.baseURL + "/qr/" + record.FileID,
	})
}

// LinkListResponse is the authenticated link listing with its aggregates.
type LinkListResponse struct {
	Links      []model.LinkRecord `json:"links"`
	TotalLinks int64              `json:"totalLinks"`
	TotalViews int64              `json:"totalViews"`
}

// ListLinks handles GET /api/links
// @Summary List the caller's short links
// @Description Returns web links newest first with total link and view counts. An optional q parameter filters by code or URL substring.
// @Tags Links
// @Security BearerAuth
// @Produce json
// @Success 200 {object} LinkListResponse "Link listing"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/links [get]
func (lh *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(lh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	entries, err := lh.store.Client().HGetAll(ctx, model.WebLinksKey(emailKey)).Result()
	if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to load links")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load links")
		return
	}

	query := strings.ToLower(r.URL.Query().Get("q"))

	links := make([]model.LinkRecord, 0, len(entries))
	var totalViews int64
	for _, raw := range entries {
		var link model.LinkRecord
		if err := json.Unmarshal([]byte(raw), &link); err != nil {
			continue
		}
		totalViews += link.Views
		if query != "" && !matchesQuery(link, query) {
			continue
		}
		links = append(links, link)
	}

	// Newest first, same ordering the link table has always shown.
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt > links[j].CreatedAt
	})

	totalLinks, err := lh.store.TotalLinks(ctx, emailKey)
	if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to read link counter")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load links")
		return
	}

	SendJSONSuccess(w, http.StatusOK, LinkListResponse{
		Links:      links,
		TotalLinks: totalLinks,
		TotalViews: totalViews,
	})
}

func matchesQuery(link model.LinkRecord, query string) bool {
	return strings.Contains(strings.ToLower(link.ShortURL), query) ||
		strings.Contains(strings.ToLower(link.OriginalURL), query) ||
		strings.Contains(strings.ToLower(link.FileID), query)
}
