package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shortearn/config"
	"shortearn/middleware"
	"shortearn/model"
	"shortearn/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ProfileHandler serves the profile view and its two mutations.
type ProfileHandler struct {
	store  *store.Store
	config config.Config
}

func NewProfileHandler(st *store.Store, cfg config.Config) *ProfileHandler {
	return &ProfileHandler{store: st, config: cfg}
}

// GetProfile handles GET /api/profile
// @Summary Profile view
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.Profile "Profile"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /api/profile [get]
func (ph *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(ph.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	profile, err := ph.store.GetProfile(ctx, emailKey)
	if errors.Is(err, store.ErrNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Profile not found")
		return
	} else if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to load profile")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load profile")
		return
	}

	SendJSONSuccess(w, http.StatusOK, profile)
}

// UpdateName handles PUT /api/profile/name
// @Summary Change display name
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body model.UpdateNameRequest true "New name"
// @Success 200 {object} map[string]string "Name updated"
// @Failure 400 {object} ErrorResponse "Invalid name"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/profile/name [put]
func (ph *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(ph.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	var req model.UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("invalid name"), "Please enter a valid name.")
		return
	}

	if err := ph.store.UpdateProfileName(ctx, emailKey, req.Name); err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to update name")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to update name. Please try again.")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"message": "Name updated successfully!",
	})
}

// UpdatePassword handles PUT /api/profile/password
// @Summary Change password
// @Description Re-authenticates with the current password, then replaces the credential and the stored digest copy.
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body model.UpdatePasswordRequest true "Password change"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} ErrorResponse "Validation failure"
// @Failure 401 {object} ErrorResponse "Wrong current password"
// @Router /api/profile/password [put]
func (ph *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(ph.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	var req model.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing fields"), "Please fill all password fields.")
		return
	}
	if len(req.NewPassword) < ph.config.Auth.MinPasswordLength {
		SendJSONError(w, http.StatusBadRequest, errors.New("weak password"),
			fmt.Sprintf("Password must be at least %d characters.", ph.config.Auth.MinPasswordLength))
		return
	}

	credential, err := ph.store.GetCredential(ctx, emailKey)
	if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to read credential")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to update password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(req.CurrentPassword)); err != nil {
		SendJSONError(w, http.StatusUnauthorized, errors.New("wrong password"), "Current password is incorrect.")
		return
	}

	newCredential, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to update password.")
		return
	}

	if err := ph.store.SetCredential(ctx, emailKey, string(newCredential)); err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to store credential")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to update password.")
		return
	}
	if err := ph.store.UpdatePasswordDigest(ctx, emailKey, req.NewPassword); err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to update password digest copy")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to update password.")
		return
	}

	log.Info().Str("email_key", emailKey).Msg("Password changed")

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully!",
	})
}
