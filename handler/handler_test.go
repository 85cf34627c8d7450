package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shortearn/auth"
	"shortearn/config"
	"shortearn/middleware"
	"shortearn/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Redis: config.RedisConfig{OperationTimeout: 5},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret",
			AccessTTLMinutes:  15,
			RefreshTTLHours:   168,
			MinPasswordLength: 8,
		},
		Ledger: config.LedgerConfig{
			TableWindow: 120,
			ChartWindow: 10,
			PageSize:    15,
		},
		Withdraw: config.WithdrawConfig{MinAmount: 10},
	}
}

func setupTestStore(t *testing.T) (*store.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return store.New(rdb), mr
}

func testJWTManager(t *testing.T) *auth.JWTManager {
	t.Helper()
	m, err := auth.NewJWTManager("test-secret", 15*time.Minute, 168*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func seedTestUser(t *testing.T, st *store.Store, emailKey, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	err = st.SeedUser(context.Background(), emailKey, "Test User", email, password, string(hash), "http://localhost:8080")
	if err != nil {
		t.Fatalf("SeedUser: %v", err)
	}
}

// authed attaches the authenticated identity the way the auth middleware does.
func authed(r *http.Request, emailKey string) *http.Request {
	return r.WithContext(middleware.WithEmailKey(r.Context(), emailKey))
}
