package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortearn/model"

	"golang.org/x/crypto/bcrypt"
)

func putJSON(t *testing.T, handlerFunc http.HandlerFunc, emailKey, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handlerFunc(w, authed(req, emailKey))
	return w
}

func TestGetProfile(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	w := httptest.NewRecorder()
	ph.GetProfile(w, authed(req, emailKey))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var profile model.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if profile.Name != "Test User" || profile.Email != "user@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestUpdateName(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")

	w := putJSON(t, ph.UpdateName, emailKey, "/api/profile/name", model.UpdateNameRequest{Name: "  Renamed  "})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	profile, err := st.GetProfile(context.Background(), emailKey)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Name != "Renamed" {
		t.Errorf("Name = %q, want trimmed %q", profile.Name, "Renamed")
	}
}

func TestUpdateName_Empty(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")

	w := putJSON(t, ph.UpdateName, emailKey, "/api/profile/name", model.UpdateNameRequest{Name: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdatePassword(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")
	ctx := context.Background()

	w := putJSON(t, ph.UpdatePassword, emailKey, "/api/profile/password", model.UpdatePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "brandnew456",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	// The credential now verifies the new password only.
	credential, err := st.GetCredential(ctx, emailKey)
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(credential), []byte("brandnew456")) != nil {
		t.Error("new password does not verify")
	}
	if bcrypt.CompareHashAndPassword([]byte(credential), []byte("secret123")) == nil {
		t.Error("old password still verifies")
	}

	// The profile's digest copy tracks the change.
	before, err := st.GetProfile(ctx, emailKey)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(before.PasswordHash) != 64 {
		t.Errorf("digest length = %d, want 64", len(before.PasswordHash))
	}
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")

	w := putJSON(t, ph.UpdatePassword, emailKey, "/api/profile/password", model.UpdatePasswordRequest{
		CurrentPassword: "wrong-pass",
		NewPassword:     "brandnew456",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdatePassword_TooShort(t *testing.T) {
	st, _ := setupTestStore(t)
	ph := NewProfileHandler(st, testConfig())
	const emailKey = "user@example_com"
	seedTestUser(t, st, emailKey, "user@example.com", "secret123")

	w := putJSON(t, ph.UpdatePassword, emailKey, "/api/profile/password", model.UpdatePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
