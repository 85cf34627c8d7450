package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortearn/ledger"
	"shortearn/model"
	"shortearn/store"
)

func submitWithdrawal(t *testing.T, dh *LedgerHandler, emailKey string, body WithdrawRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/withdraw", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	dh.SubmitWithdrawal(w, authed(req, emailKey))
	return w
}

func setTestBalance(t *testing.T, st *store.Store, emailKey string, available float64) {
	t.Helper()
	raw, _ := json.Marshal(model.Withdrawals{TotalAvailable: available})
	err := st.Client().Set(context.Background(), model.WithdrawalsKey(emailKey), raw, 0).Err()
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
}

func TestSubmitWithdrawal(t *testing.T) {
	st, _ := setupTestStore(t)
	dh := NewLedgerHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")
	setTestBalance(t, st, emailKey, 100)

	w := submitWithdrawal(t, dh, emailKey, WithdrawRequest{
		Method: "UPI",
		Amount: 50,
		UPI:    "user@upi",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	balance, err := st.GetWithdrawals(context.Background(), emailKey)
	if err != nil {
		t.Fatalf("GetWithdrawals: %v", err)
	}
	if balance.TotalAvailable != 50 || balance.TotalWithdrawn != 50 {
		t.Errorf("balance = %+v", balance)
	}
}

func TestSubmitWithdrawal_BelowMinimum(t *testing.T) {
	st, _ := setupTestStore(t)
	dh := NewLedgerHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")
	setTestBalance(t, st, emailKey, 100)

	w := submitWithdrawal(t, dh, emailKey, WithdrawRequest{
		Method: "upi",
		Amount: 9,
		UPI:    "user@upi",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Nothing was written.
	balance, err := st.GetWithdrawals(context.Background(), emailKey)
	if err != nil {
		t.Fatalf("GetWithdrawals: %v", err)
	}
	if balance.TotalAvailable != 100 || balance.TotalWithdrawn != 0 {
		t.Errorf("balance changed: %+v", balance)
	}
}

func TestSubmitWithdrawal_InsufficientBalance(t *testing.T) {
	st, _ := setupTestStore(t)
	dh := NewLedgerHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")
	setTestBalance(t, st, emailKey, 30)

	w := submitWithdrawal(t, dh, emailKey, WithdrawRequest{
		Method: "upi",
		Amount: 40,
		UPI:    "user@upi",
	})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402, body %s", w.Code, w.Body.String())
	}

	balance, err := st.GetWithdrawals(context.Background(), emailKey)
	if err != nil {
		t.Fatalf("GetWithdrawals: %v", err)
	}
	if balance.TotalAvailable != 30 {
		t.Errorf("TotalAvailable = %v, want 30", balance.TotalAvailable)
	}
}

func TestSubmitWithdrawal_MethodDetails(t *testing.T) {
	tests := []struct {
		name     string
		req      WithdrawRequest
		wantCode int
	}{
		{"UPI without ID", WithdrawRequest{Method: "upi", Amount: 20}, http.StatusBadRequest},
		{"Bank without IFSC", WithdrawRequest{Method: "bank", Amount: 20, AccountNumber: "1234"}, http.StatusBadRequest},
		{"Crypto without wallet", WithdrawRequest{Method: "crypto", Amount: 20}, http.StatusBadRequest},
		{"Unknown method", WithdrawRequest{Method: "cheque", Amount: 20}, http.StatusBadRequest},
		{"Missing method", WithdrawRequest{Amount: 20}, http.StatusBadRequest},
		{"Valid bank", WithdrawRequest{Method: "bank", Amount: 20, AccountNumber: "1234", IFSC: "HDFC0001", BankName: "Test"}, http.StatusCreated},
		{"Valid crypto", WithdrawRequest{Method: "crypto", Amount: 20, Wallet: "0xabc"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := setupTestStore(t)
			dh := NewLedgerHandler(st, testConfig())
			const emailKey = "user@example_com"
			seedTestUser(t, st, emailKey, "user@example.com", "secret123")
			setTestBalance(t, st, emailKey, 100)

			w := submitWithdrawal(t, dh, emailKey, tt.req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestSubmitWithdrawal_Unauthenticated(t *testing.T) {
	st, _ := setupTestStore(t)
	dh := NewLedgerHandler(st, testConfig())

	raw, _ := json.Marshal(WithdrawRequest{Method: "upi", Amount: 20, UPI: "user@upi"})
	req := httptest.NewRequest(http.MethodPost, "/api/withdraw", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	dh.SubmitWithdrawal(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestGetWithdrawals(t *testing.T) {
	st, _ := setupTestStore(t)
	dh := NewLedgerHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")
	setTestBalance(t, st, emailKey, 60)

	req := httptest.NewRequest(http.MethodGet, "/api/withdrawals", nil)
	w := httptest.NewRecorder()
	dh.GetWithdrawals(w, authed(req, emailKey))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var view ledger.WithdrawalsView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.TotalAvailable != 60 {
		t.Errorf("TotalAvailable = %v, want 60", view.TotalAvailable)
	}
	// The seeded init request is the only entry and counts as pending.
	if view.PendingCount != 1 {
		t.Errorf("PendingCount = %d, want 1", view.PendingCount)
	}
	if _, ok := view.History["-initRequest"]; !ok {
		t.Error("history missing the seeded init request")
	}
}
