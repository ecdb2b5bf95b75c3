package model

// Subscriber はニュースレターの購読者を表す。
// emailとaccountは全購読者で一意。
type Subscriber struct {
	ID       int64
	Name     string
	Email    string
	Account  string
	Password string // 受け取った値をそのまま保存する
}

// SubscriberPatch は購読者の部分更新内容を表す。
// Setのフィールドのみが上書きされ、未指定のフィールドは既存値を維持する。
type SubscriberPatch struct {
	Name     Optional[string]
	Email    Optional[string]
	Account  Optional[string]
	Password Optional[string]
}

// IsEmpty は更新対象のフィールドが1つもないかどうかを返す。
func (p SubscriberPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Account.Set && !p.Password.Set
}

// Apply はパッチを購読者に適用する。
// nullが指定されたフィールドは呼び出し側で検証済みである前提で無視する。
func (p SubscriberPatch) Apply(s *Subscriber) {
	if v, ok := p.Name.Get(); ok {
		s.Name = v
	}
	if v, ok := p.Email.Get(); ok {
		s.Email = v
	}
	if v, ok := p.Account.Get(); ok {
		s.Account = v
	}
	if v, ok := p.Password.Get(); ok {
		s.Password = v
	}
}
