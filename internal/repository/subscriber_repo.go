package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/newsletter/internal/database"
	"github.com/hitoshi/newsletter/internal/model"
)

const subscriberColumns = `id, name, email, account, password`

// SQLSubscriberRepo はdatabase/sqlを使用した購読者リポジトリ。
// PostgreSQLとSQLiteの両方で動作する。
type SQLSubscriberRepo struct {
	db *database.DB
}

// NewSQLSubscriberRepo はSQLSubscriberRepoを生成する。
func NewSQLSubscriberRepo(db *database.DB) *SQLSubscriberRepo {
	return &SQLSubscriberRepo{db: db}
}

// List は全購読者をID昇順で返す。
func (r *SQLSubscriberRepo) List(ctx context.Context) ([]*model.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := []*model.Subscriber{}
	for rows.Next() {
		s := &model.Subscriber{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Account, &s.Password); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscribers: %w", err)
	}

	return subscribers, nil
}

// FindByID は指定IDの購読者を取得する。見つからない場合はnilを返す。
func (r *SQLSubscriberRepo) FindByID(ctx context.Context, id int64) (*model.Subscriber, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *SQLSubscriberRepo) findByID(ctx context.Context, q rowQueryer, id int64) (*model.Subscriber, error) {
	s := &model.Subscriber{}
	err := q.QueryRowContext(ctx,
		r.db.Rebind(`SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`),
		id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Account, &s.Password)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriber by ID: %w", err)
	}

	return s, nil
}

// Create は購読者を作成し、採番されたIDを設定する。
func (r *SQLSubscriberRepo) Create(ctx context.Context, subscriber *model.Subscriber) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			r.db.Rebind(`INSERT INTO subscribers (name, email, account, password)
			 VALUES (?, ?, ?, ?)
			 RETURNING id`),
			subscriber.Name, subscriber.Email, subscriber.Account, subscriber.Password,
		).Scan(&id)
		if err != nil {
			return classifyWriteError(err, "failed to insert subscriber", "email", "account")
		}
		subscriber.ID = id
		return nil
	})
}

// Update はパッチで指定されたフィールドのみを更新し、更新後の購読者を返す。
// 空のパッチの場合は現在の値をそのまま返す。見つからない場合はnilを返す。
func (r *SQLSubscriberRepo) Update(ctx context.Context, id int64, patch model.SubscriberPatch) (*model.Subscriber, error) {
	var updated *model.Subscriber
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		sets, args := subscriberAssignments(patch)
		if len(sets) > 0 {
			args = append(args, id)
			result, err := tx.ExecContext(ctx,
				r.db.Rebind(`UPDATE subscribers SET `+strings.Join(sets, ", ")+` WHERE id = ?`),
				args...,
			)
			if err != nil {
				return classifyWriteError(err, "failed to update subscriber", "email", "account")
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if n == 0 {
				return nil
			}
		}

		s, err := r.findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は指定IDの購読者を削除する。見つからない場合はfalseを返す。
func (r *SQLSubscriberRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			r.db.Rebind(`DELETE FROM subscribers WHERE id = ?`),
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to delete subscriber: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// subscriberAssignments はパッチからSET句と引数を組み立てる。
// 値が指定されたフィールドのみを対象にする。
func subscriberAssignments(patch model.SubscriberPatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, o model.Optional[string]) {
		if v, ok := o.Get(); ok {
			sets = append(sets, column+" = ?")
			args = append(args, v)
		}
	}
	add("name", patch.Name)
	add("email", patch.Email)
	add("account", patch.Account)
	add("password", patch.Password)
	return sets, args
}

// compile-time interface check
var _ SubscriberRepository = (*SQLSubscriberRepo)(nil)
