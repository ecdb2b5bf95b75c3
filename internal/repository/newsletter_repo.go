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

const newsletterColumns = `id, topic, content, send_date, subscriber_id`

// SQLNewsletterRepo はdatabase/sqlを使用したニュースレターリポジトリ。
type SQLNewsletterRepo struct {
	db *database.DB
}

// NewSQLNewsletterRepo はSQLNewsletterRepoを生成する。
func NewSQLNewsletterRepo(db *database.DB) *SQLNewsletterRepo {
	return &SQLNewsletterRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNewsletter(row rowScanner) (*model.Newsletter, error) {
	n := &model.Newsletter{}
	var subscriberID sql.NullInt64
	if err := row.Scan(&n.ID, &n.Topic, &n.Content, &n.SendDate, &subscriberID); err != nil {
		return nil, err
	}
	if subscriberID.Valid {
		id := subscriberID.Int64
		n.SubscriberID = &id
	}
	return n, nil
}

// List は全ニュースレターをID昇順で返す。
func (r *SQLNewsletterRepo) List(ctx context.Context) ([]*model.Newsletter, error) {
	return r.list(ctx, `SELECT `+newsletterColumns+` FROM newsletters ORDER BY id`)
}

// ListBySubscriber は指定購読者を参照するニュースレターをID昇順で返す。
func (r *SQLNewsletterRepo) ListBySubscriber(ctx context.Context, subscriberID int64) ([]*model.Newsletter, error) {
	return r.list(ctx,
		r.db.Rebind(`SELECT `+newsletterColumns+` FROM newsletters WHERE subscriber_id = ? ORDER BY id`),
		subscriberID,
	)
}

func (r *SQLNewsletterRepo) list(ctx context.Context, query string, args ...any) ([]*model.Newsletter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list newsletters: %w", err)
	}
	defer rows.Close()

	newsletters := []*model.Newsletter{}
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan newsletter: %w", err)
		}
		newsletters = append(newsletters, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate newsletters: %w", err)
	}

	return newsletters, nil
}

// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
func (r *SQLNewsletterRepo) FindByID(ctx context.Context, id int64) (*model.Newsletter, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *SQLNewsletterRepo) findByID(ctx context.Context, q rowQueryer, id int64) (*model.Newsletter, error) {
	n, err := scanNewsletter(q.QueryRowContext(ctx,
		r.db.Rebind(`SELECT `+newsletterColumns+` FROM newsletters WHERE id = ?`),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find newsletter by ID: %w", err)
	}
	return n, nil
}

// Create はニュースレターを作成し、採番されたIDを設定する。
func (r *SQLNewsletterRepo) Create(ctx context.Context, newsletter *model.Newsletter) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			r.db.Rebind(`INSERT INTO newsletters (topic, content, send_date, subscriber_id)
			 VALUES (?, ?, ?, ?)
			 RETURNING id`),
			newsletter.Topic, newsletter.Content, newsletter.SendDate, nullableID(newsletter.SubscriberID),
		).Scan(&id)
		if err != nil {
			return classifyWriteError(err, "failed to insert newsletter")
		}
		newsletter.ID = id
		return nil
	})
}

// Update はパッチで指定されたフィールドのみを更新し、更新後のニュースレターを返す。
// subscriber_idにnullが指定された場合は参照を解除する。見つからない場合はnilを返す。
func (r *SQLNewsletterRepo) Update(ctx context.Context, id int64, patch model.NewsletterPatch) (*model.Newsletter, error) {
	var updated *model.Newsletter
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		sets, args := newsletterAssignments(patch)
		if len(sets) > 0 {
			args = append(args, id)
			result, err := tx.ExecContext(ctx,
				r.db.Rebind(`UPDATE newsletters SET `+strings.Join(sets, ", ")+` WHERE id = ?`),
				args...,
			)
			if err != nil {
				return classifyWriteError(err, "failed to update newsletter")
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if n == 0 {
				return nil
			}
		}

		n, err := r.findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は指定IDのニュースレターを削除する。見つからない場合はfalseを返す。
func (r *SQLNewsletterRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			r.db.Rebind(`DELETE FROM newsletters WHERE id = ?`),
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to delete newsletter: %w", err)
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

// newsletterAssignments はパッチからSET句と引数を組み立てる。
// subscriber_idのみnull指定をNULL代入として扱う。
func newsletterAssignments(patch model.NewsletterPatch) ([]string, []any) {
	var sets []string
	var args []any
	if v, ok := patch.Topic.Get(); ok {
		sets = append(sets, "topic = ?")
		args = append(args, v)
	}
	if v, ok := patch.Content.Get(); ok {
		sets = append(sets, "content = ?")
		args = append(args, v)
	}
	if v, ok := patch.SendDate.Get(); ok {
		sets = append(sets, "send_date = ?")
		args = append(args, v)
	}
	if patch.SubscriberID.Set {
		sets = append(sets, "subscriber_id = ?")
		if patch.SubscriberID.Null {
			args = append(args, nil)
		} else {
			args = append(args, patch.SubscriberID.Value)
		}
	}
	return sets, args
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// compile-time interface check
var _ NewsletterRepository = (*SQLNewsletterRepo)(nil)
