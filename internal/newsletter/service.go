// Package newsletter はニュースレター管理のドメインロジックを提供する。
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/newsletter/internal/model"
	"github.com/hitoshi/newsletter/internal/repository"
)

// MutationRecorder はリソース変更のメトリクス記録インターフェース。
type MutationRecorder interface {
	RecordMutation(resource, operation string)
}

// CreateInput はニュースレター作成の入力値。
// SubscriberIDのみ任意で、nilの場合は購読者を参照しない。
type CreateInput struct {
	Topic        string
	Content      string
	SendDate     model.Date
	SubscriberID *int64
}

// Service はニュースレター管理のサービス層。
type Service struct {
	repo     repository.NewsletterRepository
	renderer *Renderer
	recorder MutationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい。
func NewService(repo repository.NewsletterRepository, renderer *Renderer, recorder MutationRecorder) *Service {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Service{
		repo:     repo,
		renderer: renderer,
		recorder: recorder,
	}
}

// List は全ニュースレターを返す。
func (s *Service) List(ctx context.Context) ([]*model.Newsletter, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Get は指定IDのニュースレターを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Newsletter, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}
	if n == nil {
		return nil, model.NewNewsletterNotFoundError(id)
	}
	return n, nil
}

// Preview は指定IDのニュースレターを表示用のHTML断片に変換する。
func (s *Service) Preview(ctx context.Context, id int64) (string, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(n), nil
}

// Create は入力を検証してニュースレターを作成する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Newsletter, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, model.NewValidationError("topic", "必須項目です")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, model.NewValidationError("content", "必須項目です")
	}
	if in.SendDate.IsZero() {
		return nil, model.NewValidationError("send_date", "必須項目です")
	}

	n := &model.Newsletter{
		Topic:        in.Topic,
		Content:      in.Content,
		SendDate:     in.SendDate,
		SubscriberID: in.SubscriberID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, mapWriteError(err, "ニュースレターの作成に失敗しました", in.SubscriberID)
	}

	slog.Info("ニュースレターを作成しました", slog.Int64("newsletter_id", n.ID))
	s.record("create")
	return n, nil
}

// Update は指定されたフィールドのみを更新する。
// subscriber_idにnullを指定すると参照を解除する。
func (s *Service) Update(ctx context.Context, id int64, patch model.NewsletterPatch) (*model.Newsletter, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var ref *int64
	if v, ok := patch.SubscriberID.Get(); ok {
		ref = &v
	}

	n, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapWriteError(err, "ニュースレターの更新に失敗しました", ref)
	}
	if n == nil {
		return nil, model.NewNewsletterNotFoundError(id)
	}

	s.record("update")
	return n, nil
}

// Delete は指定IDのニュースレターを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("ニュースレターの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNewsletterNotFoundError(id)
	}

	slog.Info("ニュースレターを削除しました", slog.Int64("newsletter_id", id))
	s.record("delete")
	return nil
}

func (s *Service) record(operation string) {
	if s.recorder != nil {
		s.recorder.RecordMutation("newsletter", operation)
	}
}

// validatePatch は必須フィールドに空文字やnullが指定されていないことを検証する。
// subscriber_idは任意項目のためnullを許可する。
func validatePatch(patch model.NewsletterPatch) error {
	text := []struct {
		name string
		o    model.Optional[string]
	}{
		{"topic", patch.Topic},
		{"content", patch.Content},
	}
	for _, f := range text {
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
	if patch.SendDate.Set && (patch.SendDate.Null || patch.SendDate.Value.IsZero()) {
		return model.NewValidationError("send_date", "nullは指定できません")
	}
	return nil
}

// mapWriteError は外部キー制約違反をAPIErrorに変換する。
func mapWriteError(err error, msg string, ref *int64) error {
	var fk *repository.ForeignKeyViolationError
	if errors.As(err, &fk) {
		var id int64
		if ref != nil {
			id = *ref
		}
		return model.NewSubscriberReferenceNotFoundError(id)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
