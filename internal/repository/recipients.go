package repository

import (
	"context"
	"fmt"

	"vendora/internal/model"
)

// RecordRecipient upserts the destination number of a committed purchase.
// Keyed on (user, number) so replayed events only bump the counter; the
// transaction id dedupe happens upstream in the worker.
func (s *Store) RecordRecipient(ctx context.Context, ev model.PurchaseEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recipients (user_id, phone_number, network, last_used_at, use_count)
		 VALUES ($1, $2, $3, $4, 1)
		 ON CONFLICT (user_id, phone_number)
		 DO UPDATE SET network = EXCLUDED.network, last_used_at = EXCLUDED.last_used_at,
		               use_count = recipients.use_count + 1`,
		ev.UserID, ev.PhoneNumber, ev.Network, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record recipient for %s: %w", ev.UserID, err)
	}
	return nil
}

// RecentRecipients lists the numbers a user topped up most recently.
func (s *Store) RecentRecipients(ctx context.Context, userID string, limit int) ([]model.Recipient, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, phone_number, network, last_used_at, use_count
		 FROM recipients WHERE user_id = $1 ORDER BY last_used_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent recipients for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.Recipient
	for rows.Next() {
		var r model.Recipient
		if err := rows.Scan(&r.UserID, &r.PhoneNumber, &r.Network, &r.LastUsedAt, &r.UseCount); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SeenEvent records a processed event id and reports whether it had already
// been seen. Gives the worker at-most-once effects under bus redelivery.
func (s *Store) SeenEvent(ctx context.Context, transactionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO processed_events (transaction_id) VALUES ($1) ON CONFLICT DO NOTHING`,
		transactionID,
	)
	if err != nil {
		return false, fmt.Errorf("mark event %s: %w", transactionID, err)
	}
	return tag.RowsAffected() == 0, nil
}
