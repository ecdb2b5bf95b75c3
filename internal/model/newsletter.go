package model

// Newsletter は配信予定のニュースレターを表す。
// SubscriberIDは購読者への弱い参照で、参照先の存在は保証されない。
type Newsletter struct {
	ID           int64
	Topic        string
	Content      string
	SendDate     Date
	SubscriberID *int64
}

// NewsletterPatch はニュースレターの部分更新内容を表す。
// SubscriberIDにnullを指定すると参照を解除する。
type NewsletterPatch struct {
	Topic        Optional[string]
	Content      Optional[string]
	SendDate     Optional[Date]
	SubscriberID Optional[int64]
}

// IsEmpty は更新対象のフィールドが1つもないかどうかを返す。
func (p NewsletterPatch) IsEmpty() bool {
	return !p.Topic.Set && !p.Content.Set && !p.SendDate.Set && !p.SubscriberID.Set
}

// Apply はパッチをニュースレターに適用する。
func (p NewsletterPatch) Apply(n *Newsletter) {
	if v, ok := p.Topic.Get(); ok {
		n.Topic = v
	}
	if v, ok := p.Content.Get(); ok {
		n.Content = v
	}
	if v, ok := p.SendDate.Get(); ok {
		n.SendDate = v
	}
	if p.SubscriberID.Set {
		if p.SubscriberID.Null {
			n.SubscriberID = nil
		} else {
			id := p.SubscriberID.Value
			n.SubscriberID = &id
		}
	}
}
