// Package subscriber は購読者管理のドメインロジックを提供する。
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/newsletter/internal/model"
	"github.com/hitoshi/newsletter/internal/repository"
)

// NewsletterLister は購読者に紐づくニュースレター一覧の取得インターフェース。
type NewsletterLister interface {
	ListBySubscriber(ctx context.Context, subscriberID int64) ([]*model.Newsletter, error)
}

// MutationRecorder はリソース変更のメトリクス記録インターフェース。
type MutationRecorder interface {
	RecordMutation(resource, operation string)
}

// CreateInput は購読者作成の入力値。すべて必須。
type CreateInput struct {
	Name     string
	Email    string
	Account  string
	Password string
}

// Service は購読者管理のサービス層。
// リクエスト間で状態を持たず、すべての操作はリポジトリを経由する。
type Service struct {
	repo        repository.SubscriberRepository
	newsletters NewsletterLister
	recorder    MutationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// newslettersとrecorderはnilでもよい。
func NewService(repo repository.SubscriberRepository, newsletters NewsletterLister, recorder MutationRecorder) *Service {
	return &Service{
		repo:        repo,
		newsletters: newsletters,
		recorder:    recorder,
	}
}

// List は全購読者を返す。
func (s *Service) List(ctx context.Context) ([]*model.Subscriber, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("購読者一覧の取得に失敗しました: %w", err)
	}
	return subs, nil
}

// Get は指定IDの購読者を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Subscriber, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("購読者の取得に失敗しました: %w", err)
	}
	if sub == nil {
		return nil, model.NewSubscriberNotFoundError(id)
	}
	return sub, nil
}

// Create は入力を検証して購読者を作成する。
// 検証はストレージへの書き込み前に行う。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Subscriber, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"account", in.Account},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, model.NewValidationError(r.field, "必須項目です")
		}
	}

	sub := &model.Subscriber{
		Name:     in.Name,
		Email:    in.Email,
		Account:  in.Account,
		Password: in.Password,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, mapWriteError(err, "購読者の作成に失敗しました")
	}

	slog.Info("購読者を作成しました", slog.Int64("subscriber_id", sub.ID))
	s.record("create")
	return sub, nil
}

// Update は指定されたフィールドのみを更新する。
// 空のパッチは何も変更せず現在の値を返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.SubscriberPatch) (*model.Subscriber, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	sub, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapWriteError(err, "購読者の更新に失敗しました")
	}
	if sub == nil {
		return nil, model.NewSubscriberNotFoundError(id)
	}

	s.record("update")
	return sub, nil
}

// Delete は指定IDの購読者を削除する。
// 参照していたニュースレターは残り、subscriber_idのみ解除される。
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("購読者の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSubscriberNotFoundError(id)
	}

	slog.Info("購読者を削除しました", slog.Int64("subscriber_id", id))
	s.record("delete")
	return nil
}

// ListNewsletters は購読者に紐づくニュースレター一覧を返す。
func (s *Service) ListNewsletters(ctx context.Context, id int64) ([]*model.Newsletter, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.newsletters == nil {
		return []*model.Newsletter{}, nil
	}

	list, err := s.newsletters.ListBySubscriber(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

func (s *Service) record(operation string) {
	if s.recorder != nil {
		s.recorder.RecordMutation("subscriber", operation)
	}
}

// validatePatch は指定されたフィールドが空文字やnullでないことを検証する。
// 未指定のフィールドは検証しない。
func validatePatch(patch model.SubscriberPatch) error {
	fields := []struct {
		name string
		o    model.Optional[string]
	}{
		{"name", patch.Name},
		{"email", patch.Email},
		{"account", patch.Account},
		{"password", patch.Password},
	}
	for _, f := range fields {
		if !f.o.Set {
			continue
		}
		if f.o.Null {
			return model.NewValidationError(f.name, "nullは指定できません")
		}
		if strings.TrimSpace(f.o.Value) == "" {
			return model.NewValidationError(f.name, "空文字は指定できません")
		}
	}
	return nil
}

// mapWriteError はリポジトリの制約違反をAPIErrorに変換する。
func mapWriteError(err error, msg string) error {
	var uv *repository.UniqueViolationError
	if errors.As(err, &uv) {
		switch uv.Field {
		case "email":
			return model.NewDuplicateEmailError()
		case "account":
			return model.NewDuplicateAccountError()
		default:
			return model.NewDuplicateSubscriberError()
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
