package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shortearn/shortener"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// GenerateQR handles GET /qr/{code} - generates a QR code image for a short link
// @Summary QR code for a short link
// @Tags Links
// @Produce image/png
// @Param code path string true "Short code"
// @Param size query int false "Image size in pixels (128-1024)" default(256)
// @Param level query string false "Error correction level: low, medium, high, highest" default(medium)
// @Success 200 "PNG image"
// @Failure 400 {object} ErrorResponse "Invalid parameter"
// @Failure 404 {object} ErrorResponse "Short link not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /qr/{code} [get]
func (lh *LinkHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(lh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	code := vars["code"]

	record, err := lh.resolver.Resolve(ctx, code)
	if errors.Is(err, shortener.ErrLinkNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Short link does not exist")
		return
	} else if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to look up link for QR")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to verify link")
		return
	}

	size := 256
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	level := qrcode.Medium
	switch r.URL.Query().Get("level") {
	case "", "medium":
	case "low":
		level = qrcode.Low
	case "high":
		level = qrcode.High
	case "highest":
		level = qrcode.Highest
	default:
		SendJSONError(w, http.StatusBadRequest, errors.New("invalid level parameter"), "Level must be: low, medium, high, or highest")
		return
	}

	png, err := qrcode.Encode(record.ShortURL, level, size)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
