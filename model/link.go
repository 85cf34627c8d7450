package model

// LinkRecord is one short link. The same core fields are stored twice: a
// global copy at shortLinks/{code} (uniqueness namespace, carries dailyViews
// and the owner key) and a per-user copy in the owner's shortner/web hash.
type LinkRecord struct {
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	FileID      string `json:"fileId"`
	Views       int64  `json:"views"`
	CreatedAt   string `json:"createdAt"`
}

// TelegramLinkRecord adds the bot session identifier carried by links created
// through the Telegram bot. No in-process flow writes these beyond the signup
// placeholder; the shape is kept for data compatibility.
type TelegramLinkRecord struct {
	LinkRecord
	TelegramID string `json:"telegramId"`
}

// GlobalLinkRecord is the shortLinks/{code} copy. Owner is the derived email
// key of the creating user so the resolver can update the per-user copy.
type GlobalLinkRecord struct {
	LinkRecord
	Owner      string           `json:"owner"`
	DailyViews map[string]int64 `json:"dailyViews"`
}
