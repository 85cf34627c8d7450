package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shortearn/shortener"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Redirect handles GET /a/{code}
// @Summary Redirect to the original URL
// @Description Looks up the global record for the code, counts the view and redirects.
// @Tags Links
// @Produce json
// @Param code path string true "Short code"
// @Success 302 "Redirect to the original URL"
// @Failure 404 {object} ErrorResponse "Short link not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /a/{code} [get]
func (lh *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(lh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	code := vars["code"]

	record, cacheHit := lh.cache.GetLink(code)
	if !cacheHit {
		var err error
		record, err = lh.resolver.Resolve(ctx, code)
		if errors.Is(err, shortener.ErrLinkNotFound) {
			log.Warn().Str("code", code).Msg("Short link not found")
			SendJSONError(w, http.StatusNotFound, err, "")
			return
		} else if err != nil {
			log.Error().Err(err).Str("code", code).Msg("Failed to resolve short link")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to resolve link")
			return
		}
		if lh.config.Cache.Enabled {
			lh.cache.SetLink(code, *record)
		}
	}

	// Count the view even on a cache hit; the counter lives in the store,
	// not in the cached copy.
	if err := lh.resolver.RecordView(ctx, code); err != nil {
		if errors.Is(err, shortener.ErrLinkNotFound) {
			// Deleted between cache fill and now.
			lh.cache.Delete(code)
			SendJSONError(w, http.StatusNotFound, err, "")
			return
		}
		log.Error().Err(err).Str("code", code).Msg("Failed to record view")
	}

	log.Info().
		Str("code", code).
		Str("original_url", record.OriginalURL).
		Bool("cache_hit", cacheHit).
		Msg("Redirecting")

	http.Redirect(w, r, record.OriginalURL, http.StatusFound)
}
