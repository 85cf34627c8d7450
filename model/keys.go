package model

// Redis key layout. The paths mirror the hierarchical tree of the existing
// dataset exactly: users/{emailKey}/... plus the flat shortLinks/{code} table.

func ProfileKey(emailKey string) string     { return "users/" + emailKey + "/profile" }
func CredentialKey(emailKey string) string  { return "users/" + emailKey + "/credential" }
func DashboardKey(emailKey string) string   { return "users/" + emailKey + "/dashboard" }
func TotalLinksKey(emailKey string) string  { return "users/" + emailKey + "/dashboard/totalLinks" }
func WithdrawalsKey(emailKey string) string { return "users/" + emailKey + "/withdrawals" }

// Hash keys: field = push key / short code, value = JSON record.
func WithdrawalHistoryKey(emailKey string) string {
	return "users/" + emailKey + "/withdrawals/history"
}
func WebLinksKey(emailKey string) string      { return "users/" + emailKey + "/shortner/web" }
func TelegramLinksKey(emailKey string) string { return "users/" + emailKey + "/shortner/telegram" }

// GlobalLinkKey is the uniqueness namespace entry for a short code.
func GlobalLinkKey(code string) string { return "shortLinks/" + code }

// UserEventsChannel is the pub/sub channel writers publish to after mutating a
// user's dashboard or withdrawal state.
func UserEventsChannel(emailKey string) string { return "events:users:" + emailKey }
