package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shortearn/auth"
	"shortearn/config"
	"shortearn/model"
	"shortearn/store"
	"shortearn/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles signup, login and token refresh.
type AuthHandler struct {
	store      *store.Store
	jwtManager *auth.JWTManager
	config     config.Config
	baseURL    string
}

func NewAuthHandler(st *store.Store, jwtManager *auth.JWTManager, cfg config.Config, baseURL string) *AuthHandler {
	return &AuthHandler{
		store:      st,
		jwtManager: jwtManager,
		config:     cfg,
		baseURL:    baseURL,
	}
}

// Signup handles POST /api/auth/signup
// @Summary Register a new user
// @Description Creates the credential and seeds the full user record (zeroed dashboard, withdrawal balances, shortener placeholders)
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.SignupRequest true "Registration data"
// @Success 201 {object} model.LoginResponse "Account created"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/auth/signup [post]
func (ah *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		SendJSONError(w, http.StatusBadRequest, errors.New("invalid email"), "Please provide a valid email address")
		return
	}
	if req.Name == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing name"), "Please provide your name")
		return
	}
	if len(req.Password) < ah.config.Auth.MinPasswordLength {
		SendJSONError(w, http.StatusBadRequest, errors.New("weak password"),
			fmt.Sprintf("Password must be at least %d characters", ah.config.Auth.MinPasswordLength))
		return
	}

	emailKey := utils.SafeEmailKey(req.Email)

	exists, err := ah.store.UserExists(ctx, emailKey)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check account existence")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process signup")
		return
	}
	if exists {
		SendJSONError(w, http.StatusConflict, errors.New("email exists"), "An account with this email already exists. Please login.")
		return
	}

	credential, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process signup")
		return
	}

	if err := ah.store.SeedUser(ctx, emailKey, req.Name, req.Email, req.Password, string(credential), ah.baseURL); err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to seed user record")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process signup")
		return
	}

	accessToken, refreshToken, err := ah.issueTokens(emailKey, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate tokens")
		SendJSONError(w, http.StatusInternalServerError, err, "Signup succeeded but login failed, please login")
		return
	}

	profile, err := ah.store.GetProfile(ctx, emailKey)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read profile after signup")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process signup")
		return
	}

	log.Info().Str("email", req.Email).Str("email_key", emailKey).Msg("User signed up")

	SendJSONSuccess(w, http.StatusCreated, model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      *profile,
	})
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Verifies the credential, updates lastLogin and the stored password digest, returns tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.LoginResponse "Login successful with tokens"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (ah *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	emailKey := utils.SafeEmailKey(req.Email)

	credential, err := ah.store.GetCredential(ctx, emailKey)
	if errors.Is(err, store.ErrNotFound) {
		SendJSONError(w, http.StatusUnauthorized, errors.New("invalid credentials"), "Invalid email or password")
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to read credential")
		SendJSONError(w, http.StatusInternalServerError, err, "Login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(req.Password)); err != nil {
		SendJSONError(w, http.StatusUnauthorized, errors.New("invalid credentials"), "Invalid email or password")
		return
	}

	profile, err := ah.store.TouchLogin(ctx, emailKey, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update login time")
		SendJSONError(w, http.StatusInternalServerError, err, "Login failed")
		return
	}

	accessToken, refreshToken, err := ah.issueTokens(emailKey, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate tokens")
		SendJSONError(w, http.StatusInternalServerError, err, "Login failed")
		return
	}

	log.Info().Str("email", req.Email).Str("email_key", emailKey).Msg("User logged in")

	SendJSONSuccess(w, http.StatusOK, model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      *profile,
	})
}

// RefreshToken handles POST /api/auth/refresh
// @Summary Refresh access token
// @Description Get a new access token using a refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} map[string]string "New access token"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid or expired refresh token"
// @Router /api/auth/refresh [post]
func (ah *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	claims, err := ah.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		SendJSONError(w, http.StatusUnauthorized, err, "Invalid or expired refresh token")
		return
	}

	accessToken, err := ah.jwtManager.GenerateAccessToken(claims.EmailKey, claims.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate access token")
		SendJSONError(w, http.StatusInternalServerError, err, "Token refresh failed")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"accessToken": accessToken,
	})
}

func (ah *AuthHandler) issueTokens(emailKey, email string) (string, string, error) {
	accessToken, err := ah.jwtManager.GenerateAccessToken(emailKey, email)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := ah.jwtManager.GenerateRefreshToken(emailKey, email)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
