package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shortearn/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// GetWithdrawals reads the balance record at users/{emailKey}/withdrawals.
func (s *Store) GetWithdrawals(ctx context.Context, emailKey string) (*model.Withdrawals, error) {
	var w model.Withdrawals
	if err := s.getJSON(ctx, model.WithdrawalsKey(emailKey), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// WithdrawalHistory returns every request in the history hash keyed by its
// push ID.
func (s *Store) WithdrawalHistory(ctx context.Context, emailKey string) (map[string]model.WithdrawalRequest, error) {
	entries, err := s.rdb.HGetAll(ctx, model.WithdrawalHistoryKey(emailKey)).Result()
	if err != nil {
		return nil, err
	}
	history := make(map[string]model.WithdrawalRequest, len(entries))
	for id, raw := range entries {
		var req model.WithdrawalRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			continue
		}
		history[id] = req
	}
	return history, nil
}

// SubmitWithdrawal appends one pending request and moves the amount from
// totalavailable to totalWithdrawn. The balance check, the history append and
// both balance updates run as a single watched transaction, so a concurrent
// submission cannot double-spend the balance and a failure cannot leave the
// history and the balances disagreeing.
func (s *Store) SubmitWithdrawal(ctx context.Context, emailKey, method string, amount float64, details map[string]string) (string, *model.WithdrawalRequest, error) {
	pushID := uuid.New().String()
	request := model.WithdrawalRequest{
		Method:  method,
		Amount:  amount,
		Details: details,
		Status:  model.StatusPending,
		Date:    time.Now().UTC().Format("2006-01-02"),
	}
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return "", nil, err
	}

	balanceKey := model.WithdrawalsKey(emailKey)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, balanceKey).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		} else if err != nil {
			return err
		}

		var balance model.Withdrawals
		if err := json.Unmarshal(data, &balance); err != nil {
			return err
		}

		if amount > balance.TotalAvailable {
			return ErrInsufficientFunds
		}

		balance.TotalAvailable -= amount
		balance.TotalWithdrawn += amount
		balanceJSON, err := json.Marshal(balance)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, model.WithdrawalHistoryKey(emailKey), pushID, requestJSON)
			pipe.Set(ctx, balanceKey, balanceJSON, 0)
			return nil
		})
		return err
	}, balanceKey)
	if err != nil {
		return "", nil, err
	}

	s.PublishUserEvent(ctx, emailKey, "withdrawals")
	return pushID, &request, nil
}
