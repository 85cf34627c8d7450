package store

import (
	"context"

	"shortearn/model"

	"github.com/rs/zerolog/log"
)

// PublishUserEvent notifies ledger watchers that part of the user's record
// changed. Delivery is best effort; readers rebuild from the store anyway.
func (s *Store) PublishUserEvent(ctx context.Context, emailKey, part string) {
	if err := s.rdb.Publish(ctx, model.UserEventsChannel(emailKey), part).Err(); err != nil {
		log.Warn().Err(err).Str("email_key", emailKey).Str("part", part).Msg("Failed to publish user event")
	}
}
