package model

// Profile is the per-user profile record stored at users/{emailKey}/profile.
// PasswordHash is the application-level SHA-256 copy of the password, written
// alongside the real bcrypt credential. Nothing authenticates against it; it is
// kept because existing data carries it.
type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
	LastLogin    string `json:"lastLogin"`
}

// DailyStat is one date-keyed entry under dashboard.dailyStats. Entries are
// written by the earnings pipeline; this service only reads them and seeds
// zeroed placeholders at signup.
type DailyStat struct {
	Impressions int64   `json:"impressions"`
	Earnings    float64 `json:"earnings"`
	CPM         float64 `json:"cpm"`
}

// Dashboard is stored at users/{emailKey}/dashboard. The totalLinks counter
// lives under its own key so it can be incremented atomically.
type Dashboard struct {
	CurrentCPM       float64              `json:"currentCPM"`
	TotalAvailable   float64              `json:"totalavailable"`
	TodayImpressions int64                `json:"todayImpressions"`
	TodayEarnings    float64              `json:"todayEarnings"`
	TotalEarnings    float64              `json:"totalEarnings"`
	TotalImpressions int64                `json:"totalImpressions"`
	DailyStats       map[string]DailyStat `json:"dailyStats"`
}

// Withdrawals holds the balance fields at users/{emailKey}/withdrawals.
// History entries live in a separate hash keyed by push ID.
type Withdrawals struct {
	TotalWithdrawn float64 `json:"totalWithdrawn"`
	TotalAvailable float64 `json:"totalavailable"`
}

// WithdrawalRequest is one entry in the withdrawal history hash. Status is
// mutated out-of-band by the payout process; everything else is append-only.
type WithdrawalRequest struct {
	Method  string            `json:"method"`
	Amount  float64           `json:"amount"`
	Details map[string]string `json:"details"`
	Status  string            `json:"status"`
	Date    string            `json:"date"`
}

// Withdrawal status values. An unset status is treated as pending.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)
