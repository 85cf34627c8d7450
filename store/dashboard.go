package store

import (
	"context"

	"shortearn/model"

	"github.com/go-redis/redis/v8"
)

// GetDashboard reads users/{emailKey}/dashboard. The earnings pipeline writes
// this record; the service only reads and displays it.
func (s *Store) GetDashboard(ctx context.Context, emailKey string) (*model.Dashboard, error) {
	var d model.Dashboard
	if err := s.getJSON(ctx, model.DashboardKey(emailKey), &d); err != nil {
		return nil, err
	}
	if d.DailyStats == nil {
		d.DailyStats = map[string]model.DailyStat{}
	}
	return &d, nil
}

// TotalLinks reads the atomically-incremented link counter. A missing counter
// reads as zero.
func (s *Store) TotalLinks(ctx context.Context, emailKey string) (int64, error) {
	n, err := s.rdb.Get(ctx, model.TotalLinksKey(emailKey)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
