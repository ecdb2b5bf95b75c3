package model

import (
	"bytes"
	"encoding/json"
)

// Optional は部分更新リクエストの1フィールドを表す。
// 「未指定」「nullを指定」「値を指定」の3状態を区別する。
// ゼロ値は未指定を表す。
type Optional[T any] struct {
	Set   bool // JSONにキーが存在した
	Null  bool // 値としてnullが指定された
	Value T
}

// Some は値を指定したOptionalを返す。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null はnullを指定したOptionalを返す。
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Get は値が指定されている場合にその値とtrueを返す。
// 未指定またはnullの場合はfalseを返す。
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set && !o.Null
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
// キーが存在する場合のみ呼ばれるため、呼ばれた時点でSetをtrueにする。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON はjson.Marshalerを実装する。未指定とnullはどちらもnullになる。
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
