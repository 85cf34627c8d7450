package shortener

import (
	"context"
	"encoding/json"
	"time"

	"shortearn/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Resolver serves the /a/{code} redirect path: look up the global record,
// count the view, send the visitor to the original URL.
type Resolver struct {
	rdb *redis.Client
}

func NewResolver(rdb *redis.Client) *Resolver {
	return &Resolver{rdb: rdb}
}

// Resolve returns the global record for a code.
func (r *Resolver) Resolve(ctx context.Context, code string) (*model.GlobalLinkRecord, error) {
	data, err := r.rdb.Get(ctx, model.GlobalLinkKey(code)).Bytes()
	if err == redis.Nil {
		return nil, ErrLinkNotFound
	} else if err != nil {
		return nil, err
	}

	var record model.GlobalLinkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Attempts before a contended view count is given up on.
const recordViewRetries = 100

// RecordView bumps the view counters for one redirect: total views and
// today's bucket on the global record, plus the views field on the owner's
// copy. The global record is read and rewritten under WATCH and retried on
// interference, so concurrent redirects do not lose counts.
func (r *Resolver) RecordView(ctx context.Context, code string) error {
	for i := 0; i < recordViewRetries; i++ {
		err := r.recordView(ctx, code)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return redis.TxFailedErr
}

func (r *Resolver) recordView(ctx context.Context, code string) error {
	globalKey := model.GlobalLinkKey(code)
	today := time.Now().UTC().Format("2006-01-02")

	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, globalKey).Bytes()
		if err == redis.Nil {
			return ErrLinkNotFound
		} else if err != nil {
			return err
		}

		var record model.GlobalLinkRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}

		record.Views++
		if record.DailyViews == nil {
			record.DailyViews = map[string]int64{}
		}
		record.DailyViews[today]++

		globalJSON, err := json.Marshal(record)
		if err != nil {
			return err
		}

		// The owner's copy mirrors the total view count.
		var ownerJSON []byte
		if record.Owner != "" {
			raw, err := tx.HGet(ctx, model.WebLinksKey(record.Owner), code).Result()
			if err == nil {
				var ownerCopy model.LinkRecord
				if err := json.Unmarshal([]byte(raw), &ownerCopy); err == nil {
					ownerCopy.Views = record.Views
					ownerJSON, _ = json.Marshal(ownerCopy)
				}
			} else if err != redis.Nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, globalKey, globalJSON, 0)
			if ownerJSON != nil {
				pipe.HSet(ctx, model.WebLinksKey(record.Owner), code, ownerJSON)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if record.Owner != "" {
			if err := r.rdb.Publish(ctx, model.UserEventsChannel(record.Owner), "shortener").Err(); err != nil {
				log.Warn().Err(err).Str("code", code).Msg("Failed to publish view event")
			}
		}
		return nil
	}, globalKey)
}
