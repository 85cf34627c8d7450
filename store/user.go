package store

import (
	"context"
	"encoding/json"
	"time"

	"shortearn/model"
	"shortearn/utils"

	"github.com/go-redis/redis/v8"
)

// UserExists reports whether a user record has been created for the key.
func (s *Store) UserExists(ctx context.Context, emailKey string) (bool, error) {
	n, err := s.rdb.Exists(ctx, model.ProfileKey(emailKey)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SeedUser writes the full signup-time record: profile, zeroed dashboard with
// placeholder daily stats, withdrawal balances with the init request, and the
// shortener placeholders. Credential is the bcrypt hash used for login.
func (s *Store) SeedUser(ctx context.Context, emailKey, name, email, password, credential, baseURL string) error {
	now := time.Now().UTC()
	nowISO := now.Format(time.RFC3339)

	profile := model.Profile{
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		CreatedAt:    nowISO,
		LastLogin:    nowISO,
	}

	dashboard := model.Dashboard{
		DailyStats: GenerateZeroStats(now, 10),
	}

	withdrawals := model.Withdrawals{}

	initRequest := model.WithdrawalRequest{
		Method:  "UPI",
		Amount:  0,
		Date:    nowISO,
		Status:  "pending",
		Details: map[string]string{"upi": "init@upi"},
	}

	initLink := model.LinkRecord{
		OriginalURL: "https://terabox.com/s/placeholder",
		ShortURL:    baseURL + "/a/initCode",
		FileID:      "placeholder",
		Views:       0,
		CreatedAt:   nowISO,
	}
	initTelegram := model.TelegramLinkRecord{
		LinkRecord: model.LinkRecord{
			OriginalURL: "https://terabox.com/s/initTelegram",
			ShortURL:    baseURL + "/a/initTelegram",
			FileID:      "initTelegram",
			Views:       0,
			CreatedAt:   nowISO,
		},
		TelegramID: "000000",
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	dashboardJSON, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	withdrawalsJSON, err := json.Marshal(withdrawals)
	if err != nil {
		return err
	}
	initRequestJSON, _ := json.Marshal(initRequest)
	initLinkJSON, _ := json.Marshal(initLink)
	initTelegramJSON, _ := json.Marshal(initTelegram)

	// One pipeline so a half-created user is not observable between calls.
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, model.ProfileKey(emailKey), profileJSON, 0)
		pipe.Set(ctx, model.CredentialKey(emailKey), credential, 0)
		pipe.Set(ctx, model.DashboardKey(emailKey), dashboardJSON, 0)
		pipe.Set(ctx, model.TotalLinksKey(emailKey), 0, 0)
		pipe.Set(ctx, model.WithdrawalsKey(emailKey), withdrawalsJSON, 0)
		pipe.HSet(ctx, model.WithdrawalHistoryKey(emailKey), "-initRequest", initRequestJSON)
		pipe.HSet(ctx, model.WebLinksKey(emailKey), "initCode", initLinkJSON)
		pipe.HSet(ctx, model.TelegramLinksKey(emailKey), "initTelegram", initTelegramJSON)
		return nil
	})
	return err
}

// GenerateZeroStats builds the signup-time placeholder window: one zeroed
// entry per day, ending today.
func GenerateZeroStats(now time.Time, days int) map[string]model.DailyStat {
	stats := make(map[string]model.DailyStat, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		stats[date] = model.DailyStat{}
	}
	return stats
}

// GetProfile reads users/{emailKey}/profile.
func (s *Store) GetProfile(ctx context.Context, emailKey string) (*model.Profile, error) {
	var p model.Profile
	if err := s.getJSON(ctx, model.ProfileKey(emailKey), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCredential reads the bcrypt hash for login verification.
func (s *Store) GetCredential(ctx context.Context, emailKey string) (string, error) {
	cred, err := s.rdb.Get(ctx, model.CredentialKey(emailKey)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return cred, err
}

// SetCredential replaces the bcrypt hash after a password change.
func (s *Store) SetCredential(ctx context.Context, emailKey, credential string) error {
	return s.rdb.Set(ctx, model.CredentialKey(emailKey), credential, 0).Err()
}

// TouchLogin updates lastLogin and refreshes the stored password digest copy,
// matching what every successful login has always written.
func (s *Store) TouchLogin(ctx context.Context, emailKey, password string) (*model.Profile, error) {
	profile, err := s.GetProfile(ctx, emailKey)
	if err != nil {
		return nil, err
	}
	profile.LastLogin = time.Now().UTC().Format(time.RFC3339)
	profile.PasswordHash = utils.HashPassword(password)
	if err := s.setJSON(ctx, model.ProfileKey(emailKey), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfileName changes only the display name.
func (s *Store) UpdateProfileName(ctx context.Context, emailKey, name string) error {
	profile, err := s.GetProfile(ctx, emailKey)
	if err != nil {
		return err
	}
	profile.Name = name
	return s.setJSON(ctx, model.ProfileKey(emailKey), profile)
}

// UpdatePasswordDigest rewrites the profile's SHA-256 copy after a password
// change. The bcrypt credential is updated separately.
func (s *Store) UpdatePasswordDigest(ctx context.Context, emailKey, password string) error {
	profile, err := s.GetProfile(ctx, emailKey)
	if err != nil {
		return err
	}
	profile.PasswordHash = utils.HashPassword(password)
	return s.setJSON(ctx, model.ProfileKey(emailKey), profile)
}
