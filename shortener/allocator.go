package shortener

import (
	"context"
	"encoding/json"
	"time"

	"shortearn/model"
	"shortearn/utils"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Allocator creates short links. Codes are derived from the last path segment
// of the submitted URL, not generated randomly, so two different URLs can
// legitimately contend for the same code. The global namespace entry is
// created with SETNX: existence check and write are one atomic operation, and
// a losing allocation leaves no partial state behind.
type Allocator struct {
	rdb     *redis.Client
	baseURL string
}

func NewAllocator(rdb *redis.Client, baseURL string) *Allocator {
	return &Allocator{rdb: rdb, baseURL: baseURL}
}

// Allocate derives a code from rawURL and claims it for ownerKey. On success
// both the global record and the owner's copy exist and the owner's link
// counter has been incremented.
func (a *Allocator) Allocate(ctx context.Context, rawURL, ownerKey string) (*model.LinkRecord, error) {
	if err := utils.ValidateURL(rawURL); err != nil {
		return nil, ErrInvalidURL
	}

	code := utils.ExtractFileID(rawURL)
	if code == "" {
		return nil, ErrCannotDeriveCode
	}

	now := time.Now().UTC()
	record := model.LinkRecord{
		OriginalURL: rawURL,
		ShortURL:    a.baseURL + "/a/" + code,
		FileID:      code,
		Views:       0,
		CreatedAt:   now.Format(time.RFC3339),
	}

	global := model.GlobalLinkRecord{
		LinkRecord: record,
		Owner:      ownerKey,
		DailyViews: map[string]int64{now.Format("2006-01-02"): 0},
	}
	globalJSON, err := json.Marshal(global)
	if err != nil {
		return nil, err
	}

	created, err := a.rdb.SetNX(ctx, model.GlobalLinkKey(code), globalJSON, 0).Result()
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrCodeAlreadyExists
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	// Owner copy and counter land together so totalLinks stays in step with
	// the link hash.
	_, err = a.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, model.WebLinksKey(ownerKey), code, recordJSON)
		pipe.Incr(ctx, model.TotalLinksKey(ownerKey))
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.rdb.Publish(ctx, model.UserEventsChannel(ownerKey), "shortener")

	log.Info().
		Str("code", code).
		Str("owner", ownerKey).
		Str("original_url", rawURL).
		Msg("Short link allocated")

	return &record, nil
}
