// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, subscriber, newsletter, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed            = "VALIDATION_FAILED"
	ErrCodeInvalidRequest              = "INVALID_REQUEST"
	ErrCodeInvalidID                   = "INVALID_ID"
	ErrCodeSubscriberNotFound          = "SUBSCRIBER_NOT_FOUND"
	ErrCodeNewsletterNotFound          = "NEWSLETTER_NOT_FOUND"
	ErrCodeDuplicateEmail              = "DUPLICATE_EMAIL"
	ErrCodeDuplicateAccount            = "DUPLICATE_ACCOUNT"
	ErrCodeDuplicateSubscriber         = "DUPLICATE_SUBSCRIBER"
	ErrCodeSubscriberReferenceNotFound = "SUBSCRIBER_REFERENCE_NOT_FOUND"
	ErrCodeStorageUnavailable          = "STORAGE_UNAVAILABLE"
	ErrCodeRateLimitExceeded           = "RATE_LIMIT_EXCEEDED"
)

// NewValidationError は入力値の検証エラーを生成する。
// fieldには問題のあったJSONフィールド名を指定する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s (%s)", field, reason),
		Category: "validation",
		Action:   "必須項目をすべて正しい形式で入力してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidIDError はパスパラメータのIDが整数でない場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("無効なIDです: %s", raw),
		Category: "validation",
		Action:   "IDには正の整数を指定してください。",
	}
}

// NewSubscriberNotFoundError は購読者が見つからない場合のエラーを生成する。
func NewSubscriberNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriberNotFound,
		Message:  fmt.Sprintf("指定された購読者が見つかりません: %d", id),
		Category: "subscriber",
		Action:   "購読者IDを確認してください。",
	}
}

// NewNewsletterNotFoundError はニュースレターが見つからない場合のエラーを生成する。
func NewNewsletterNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeNewsletterNotFound,
		Message:  fmt.Sprintf("指定されたニュースレターが見つかりません: %d", id),
		Category: "newsletter",
		Action:   "ニュースレターIDを確認してください。",
	}
}

// NewDuplicateEmailError はメールアドレスが既に登録済みの場合のエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "subscriber",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewDuplicateAccountError はアカウント名が既に登録済みの場合のエラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このアカウント名は既に使用されています。",
		Category: "subscriber",
		Action:   "別のアカウント名を指定してください。",
	}
}

// NewDuplicateSubscriberError は重複カラムを特定できない一意制約違反のエラーを生成する。
func NewDuplicateSubscriberError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSubscriber,
		Message:  "同じ内容の購読者が既に登録されています。",
		Category: "subscriber",
		Action:   "メールアドレスとアカウント名を確認してください。",
	}
}

// NewSubscriberReferenceNotFoundError はsubscriber_idが存在しない購読者を参照している場合のエラーを生成する。
func NewSubscriberReferenceNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriberReferenceNotFound,
		Message:  fmt.Sprintf("参照先の購読者が存在しません: %d", id),
		Category: "newsletter",
		Action:   "subscriber_idに登録済みの購読者IDを指定するか、nullを指定してください。",
	}
}

// NewStorageUnavailableError はストレージ障害時のエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewStorageUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  "データストアの処理中にエラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitExceededError はレート制限超過時のエラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}
