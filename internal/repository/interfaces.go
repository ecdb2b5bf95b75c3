// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/newsletter/internal/model"
)

// SubscriberRepository は購読者データの永続化インターフェース。
type SubscriberRepository interface {
	// List は全購読者をID昇順で返す。
	List(ctx context.Context) ([]*model.Subscriber, error)

	// FindByID は指定IDの購読者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Subscriber, error)

	// Create は購読者を作成し、採番されたIDをsubscriber.IDに設定する。
	// emailまたはaccountが重複する場合は*UniqueViolationErrorを返す。
	Create(ctx context.Context, subscriber *model.Subscriber) error

	// Update はパッチで指定されたフィールドのみを同一トランザクションで更新し、更新後の購読者を返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.SubscriberPatch) (*model.Subscriber, error)

	// Delete は指定IDの購読者を削除する。見つからない場合はfalseを返す。
	// 参照しているニュースレターのsubscriber_idはNULLになる。
	Delete(ctx context.Context, id int64) (bool, error)
}

// NewsletterRepository はニュースレターデータの永続化インターフェース。
type NewsletterRepository interface {
	// List は全ニュースレターをID昇順で返す。
	List(ctx context.Context) ([]*model.Newsletter, error)

	// ListBySubscriber は指定購読者を参照するニュースレターをID昇順で返す。
	ListBySubscriber(ctx context.Context, subscriberID int64) ([]*model.Newsletter, error)

	// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Newsletter, error)

	// Create はニュースレターを作成し、採番されたIDをnewsletter.IDに設定する。
	// subscriber_idが存在しない購読者を参照する場合は*ForeignKeyViolationErrorを返す。
	Create(ctx context.Context, newsletter *model.Newsletter) error

	// Update はパッチで指定されたフィールドのみを同一トランザクションで更新し、更新後のニュースレターを返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.NewsletterPatch) (*model.Newsletter, error)

	// Delete は指定IDのニュースレターを削除する。見つからない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}
