package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/newsletter/internal/model"
)

func TestSQLSubscriberRepo_ImplementsInterface(t *testing.T) {
	var _ SubscriberRepository = (*SQLSubscriberRepo)(nil)
}

func newSubscriber(name, email, account string) *model.Subscriber {
	return &model.Subscriber{Name: name, Email: email, Account: account, Password: "p"}
}

func TestSQLSubscriberRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSubscriberRepo(openTestDB(t))

	before, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(before))
	}

	s := newSubscriber("A", "a@x.com", "a1")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if s.ID <= 0 {
		t.Fatalf("expected generated ID, got %d", s.ID)
	}

	after, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("List length = %d, want 1", len(after))
	}
	if *after[0] != *s {
		t.Errorf("listed = %+v, want %+v", *after[0], *s)
	}
}

func TestSQLSubscriberRepo_Create_DuplicateEmailOrAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSubscriberRepo(openTestDB(t))

	if err := repo.Create(ctx, newSubscriber("A", "a@x.com", "a1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	tests := []struct {
		name      string
		sub       *model.Subscriber
		wantField string
	}{
		{name: "email重複", sub: newSubscriber("B", "a@x.com", "b1"), wantField: "email"},
		{name: "account重複", sub: newSubscriber("C", "c@x.com", "a1"), wantField: "account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.sub)
			var uv *UniqueViolationError
			if !errors.As(err, &uv) {
				t.Fatalf("expected UniqueViolationError, got %v", err)
			}
			if uv.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", uv.Field, tt.wantField)
			}
		})
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List length = %d, want 1 (only the first insert)", len(all))
	}
}

func TestSQLSubscriberRepo_FindByID_NotFound_ReturnsNil(t *testing.T) {
	repo := NewSQLSubscriberRepo(openTestDB(t))

	s, err := repo.FindByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil, got %+v", s)
	}
}

func TestSQLSubscriberRepo_Update_PartialFields(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSubscriberRepo(openTestDB(t))

	s := newSubscriber("A", "a@x.com", "a1")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	t.Run("空のパッチは変更しない", func(t *testing.T) {
		got, err := repo.Update(ctx, s.ID, model.SubscriberPatch{})
		if err != nil {
			t.Fatalf("Update error: %v", err)
		}
		if got == nil || *got != *s {
			t.Errorf("got %+v, want %+v", got, *s)
		}
	})

	t.Run("1フィールドのみ変更", func(t *testing.T) {
		got, err := repo.Update(ctx, s.ID, model.SubscriberPatch{Name: model.Some("B")})
		if err != nil {
			t.Fatalf("Update error: %v", err)
		}
		want := *s
		want.Name = "B"
		if got == nil || *got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}

		stored, err := repo.FindByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("FindByID error: %v", err)
		}
		if *stored != want {
			t.Errorf("stored = %+v, want %+v", *stored, want)
		}
	})
}

func TestSQLSubscriberRepo_Update_NotFound_ReturnsNil(t *testing.T) {
	repo := NewSQLSubscriberRepo(openTestDB(t))

	got, err := repo.Update(context.Background(), 42, model.SubscriberPatch{Name: model.Some("x")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}

	got, err = repo.Update(context.Background(), 42, model.SubscriberPatch{})
	if err != nil {
		t.Fatalf("Update(empty) error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty patch, got %+v", got)
	}
}

// TestSQLSubscriberRepo_Update_DuplicateRollsBack は一意制約違反時に部分的な更新が残らないことを検証する。
func TestSQLSubscriberRepo_Update_DuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSubscriberRepo(openTestDB(t))

	a := newSubscriber("A", "a@x.com", "a1")
	b := newSubscriber("B", "b@x.com", "b1")
	for _, s := range []*model.Subscriber{a, b} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	_, err := repo.Update(ctx, b.ID, model.SubscriberPatch{
		Name:    model.Some("changed"),
		Account: model.Some("a1"),
	})
	var uv *UniqueViolationError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UniqueViolationError, got %v", err)
	}
	if uv.Field != "account" {
		t.Errorf("Field = %q, want %q", uv.Field, "account")
	}

	stored, err := repo.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if *stored != *b {
		t.Errorf("stored = %+v, want unchanged %+v", *stored, *b)
	}
}

func TestSQLSubscriberRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLSubscriberRepo(openTestDB(t))

	s := newSubscriber("A", "a@x.com", "a1")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	deleted, err := repo.Delete(ctx, s.ID+100)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted {
		t.Error("Delete of missing id should report false")
	}
	if all, _ := repo.List(ctx); len(all) != 1 {
		t.Errorf("List length = %d, want 1 after missing delete", len(all))
	}

	deleted, err = repo.Delete(ctx, s.ID)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !deleted {
		t.Error("Delete of existing id should report true")
	}
	if all, _ := repo.List(ctx); len(all) != 0 {
		t.Errorf("List length = %d, want 0 after delete", len(all))
	}
}
