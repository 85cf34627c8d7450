package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shortearn/ledger"
	"shortearn/middleware"
	"shortearn/store"

	"github.com/rs/zerolog/log"
)

// WithdrawRequest is the submission payload. Details are method-specific:
// upi for UPI, accountNumber/ifsc/name for bank, wallet for crypto. An
// optional whatsapp contact rides along with any method.
type WithdrawRequest struct {
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	UPI           string  `json:"upi"`
	AccountNumber string  `json:"accountNumber"`
	IFSC          string  `json:"ifsc"`
	BankName      string  `json:"bankName"`
	Wallet        string  `json:"wallet"`
	WhatsApp      string  `json:"whatsapp"`
}

// SubmitWithdrawal handles POST /api/withdraw
// @Summary Request a withdrawal
// @Description Appends one pending request and moves the amount out of the available balance in a single transaction.
// @Tags Ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal request"
// @Success 201 {object} map[string]string "Request accepted"
// @Failure 400 {object} ErrorResponse "Validation failure"
// @Failure 402 {object} ErrorResponse "Insufficient balance"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/withdraw [post]
func (dh *LedgerHandler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(dh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if req.Method == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing method"), "Please select a withdrawal method.")
		return
	}

	minAmount := dh.config.Withdraw.MinAmount
	if req.Amount < minAmount {
		SendJSONError(w, http.StatusBadRequest, errors.New("amount below minimum"),
			fmt.Sprintf("Minimum withdrawal amount is ₹%.0f.", minAmount))
		return
	}

	details, err := withdrawalDetails(req)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	pushID, request, err := dh.store.SubmitWithdrawal(ctx, emailKey, req.Method, req.Amount, details)
	if errors.Is(err, store.ErrInsufficientFunds) {
		SendJSONError(w, http.StatusPaymentRequired, err, "Insufficient balance.")
		return
	} else if errors.Is(err, store.ErrNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Withdrawal record not found")
		return
	} else if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Withdrawal submission failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Something went wrong. Please try again.")
		return
	}

	log.Info().
		Str("email_key", emailKey).
		Str("push_id", pushID).
		Str("method", request.Method).
		Float64("amount", request.Amount).
		Msg("Withdrawal requested")

	SendJSONSuccess(w, http.StatusCreated, map[string]string{
		"message": "Withdrawal request submitted successfully!",
		"id":      pushID,
	})
}

// withdrawalDetails validates and assembles the method-specific detail map.
func withdrawalDetails(req WithdrawRequest) (map[string]string, error) {
	details := map[string]string{}

	switch req.Method {
	case "upi":
		upi := strings.TrimSpace(req.UPI)
		if upi == "" {
			return nil, errors.New("please enter your UPI ID")
		}
		details["upi"] = upi
	case "bank":
		accountNumber := strings.TrimSpace(req.AccountNumber)
		ifsc := strings.TrimSpace(req.IFSC)
		if accountNumber == "" || ifsc == "" {
			return nil, errors.New("please enter account number and IFSC code")
		}
		details["accountNumber"] = accountNumber
		details["ifsc"] = ifsc
		details["name"] = strings.TrimSpace(req.BankName)
	case "crypto":
		wallet := strings.TrimSpace(req.Wallet)
		if wallet == "" {
			return nil, errors.New("please enter wallet address")
		}
		details["wallet"] = wallet
	default:
		return nil, errors.New("unknown withdrawal method")
	}

	if whatsapp := strings.TrimSpace(req.WhatsApp); whatsapp != "" {
		details["whatsapp"] = whatsapp
	}
	return details, nil
}

// GetWithdrawals handles GET /api/withdrawals
// @Summary Withdrawal view
// @Description Balance, cumulative withdrawn amount, full history and per-status counts.
// @Tags Ledger
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ledger.WithdrawalsView "Withdrawal view"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/withdrawals [get]
func (dh *LedgerHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(dh.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	emailKey := middleware.GetEmailKey(r)
	if emailKey == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Authentication required")
		return
	}

	withdrawals, err := dh.store.GetWithdrawals(ctx, emailKey)
	if errors.Is(err, store.ErrNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Withdrawal record not found")
		return
	} else if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to load withdrawals")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load withdrawals")
		return
	}

	history, err := dh.store.WithdrawalHistory(ctx, emailKey)
	if err != nil {
		log.Error().Err(err).Str("email_key", emailKey).Msg("Failed to load withdrawal history")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load withdrawals")
		return
	}

	SendJSONSuccess(w, http.StatusOK, ledger.BuildWithdrawalsView(withdrawals, history))
}
