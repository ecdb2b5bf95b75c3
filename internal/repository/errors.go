package repository

import (
	"fmt"
	"strings"

	"github.com/hitoshi/newsletter/internal/database"
)

// UniqueViolationError は一意制約違反を表す。Fieldは違反したカラム名。
type UniqueViolationError struct {
	Field string
	Err   error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint violated on %s: %v", e.Field, e.Err)
}

func (e *UniqueViolationError) Unwrap() error {
	return e.Err
}

// ForeignKeyViolationError は外部キー制約違反を表す。
type ForeignKeyViolationError struct {
	Field string
	Err   error
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("foreign key constraint violated on %s: %v", e.Field, e.Err)
}

func (e *ForeignKeyViolationError) Unwrap() error {
	return e.Err
}

// classifyWriteError はドライバのエラーを制約違反の型付きエラーに変換する。
// columnsは一意制約を持つ候補カラムで、エラーメッセージ中の出現で違反カラムを判定する。
// 制約違反でなければmsgを付けてラップする。
func classifyWriteError(err error, msg string, columns ...string) error {
	if database.IsUniqueViolation(err) {
		field := "unknown"
		text := err.Error()
		for _, c := range columns {
			if strings.Contains(text, c) {
				field = c
				break
			}
		}
		return &UniqueViolationError{Field: field, Err: err}
	}
	if database.IsForeignKeyViolation(err) {
		return &ForeignKeyViolationError{Field: "subscriber_id", Err: err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
