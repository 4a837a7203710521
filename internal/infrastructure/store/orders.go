package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-order-hub/internal/domain"
)

const (
	orderCounter = "orderId"
	timeLayout   = time.RFC3339Nano

	orderColumns = `id, customer_name, number_of_crates, price, due_time, COALESCE(status, ''), created_at, updated_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                          domain.Order
		status                     string
		due, createdAt, updatedAt string
	)
	if err := row.Scan(&o.ID, &o.CustomerName, &o.NumberOfCrates, &o.Price, &due, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)

	var err error
	if o.DueTime, err = time.Parse(timeLayout, due); err != nil {
		return nil, fmt.Errorf("order %d: bad due_time %q: %w", o.ID, due, err)
	}
	if o.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("order %d: bad created_at %q: %w", o.ID, createdAt, err)
	}
	if o.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("order %d: bad updated_at %q: %w", o.ID, updatedAt, err)
	}
	return &o, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nextSequence bumps the named counter and returns its new value in a
// single statement, so concurrent creators never observe the same value.
func (s *Store) nextSequence(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO counters (name, seq) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`), name).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return seq, nil
}

// SyncSequence raises the order counter to at least the highest stored id.
// Rows written before the counter existed would otherwise collide.
func (s *Store) SyncSequence(ctx context.Context) error {
	query := fmt.Sprintf(
		`INSERT INTO counters (name, seq) SELECT CAST(? AS TEXT), COALESCE(MAX(id), 0) FROM orders WHERE true
		 ON CONFLICT (name) DO UPDATE SET seq = %s(counters.seq, excluded.seq)`,
		s.dialect.greatest)
	if _, err := s.db.ExecContext(ctx, s.rebind(query), orderCounter); err != nil {
		return fmt.Errorf("failed to sync sequence: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, o *domain.Order) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.nextSequence(ctx, tx, orderCounter)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO orders (id, customer_name, number_of_crates, price, due_time, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			id, o.CustomerName, o.NumberOfCrates, o.Price, formatTime(o.DueTime),
			string(o.Status), formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		o.ID = id
		return nil
	})
}

func (s *Store) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", id, err)
	}
	return o, nil
}

func (s *Store) Update(ctx context.Context, id int64, mutate func(o *domain.Order) error) (*domain.Order, error) {
	var updated *domain.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			s.rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`+s.dialect.lockClause), id)
		o, err := scanOrder(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
			}
			return fmt.Errorf("failed to fetch order %d: %w", id, err)
		}

		if err := mutate(o); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, s.rebind(
			`UPDATE orders SET customer_name = ?, number_of_crates = ?, price = ?, due_time = ?, status = ?, updated_at = ?
			 WHERE id = ?`),
			o.CustomerName, o.NumberOfCrates, o.Price, formatTime(o.DueTime),
			string(o.Status), formatTime(o.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("failed to update order %d: %w", id, err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM orders WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
	}
	return nil
}

func (s *Store) Statistics(ctx context.Context) (*domain.Statistics, error) {
	var stats domain.Statistics
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*),
		        COALESCE(SUM(price), 0),
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		 FROM orders`), string(domain.StatusPending)).
		Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &stats, nil
}

// BackfillStatus marks every order without a status as pending.
func (s *Store) BackfillStatus(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE orders SET status = ?, updated_at = ? WHERE status IS NULL OR status = ''`),
		string(domain.StatusPending), formatTime(s.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to backfill status: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
