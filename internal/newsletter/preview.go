package newsletter

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/newsletter/internal/model"
)

// Renderer はニュースレター本文を表示用HTMLに変換する。
// 保存されている本文は加工せず、表示時にのみサニタイズする。
type Renderer struct {
	content *bluemonday.Policy
	text    *bluemonday.Policy
}

// NewRenderer はRendererを生成する。
// 本文はUGCポリシー、トピックはタグを一切許可しないStrictポリシーで処理する。
func NewRenderer() *Renderer {
	content := bluemonday.UGCPolicy()
	content.RequireNoFollowOnLinks(true)
	content.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		content: content,
		text:    bluemonday.StrictPolicy(),
	}
}

// Render はニュースレターを<article>要素のHTML断片に変換する。
func (r *Renderer) Render(n *model.Newsletter) string {
	var b strings.Builder
	b.WriteString(`<article class="newsletter">`)
	b.WriteString(`<h1>`)
	b.WriteString(r.text.Sanitize(n.Topic))
	b.WriteString(`</h1>`)
	b.WriteString(`<time datetime="`)
	b.WriteString(n.SendDate.String())
	b.WriteString(`">`)
	b.WriteString(n.SendDate.String())
	b.WriteString(`</time>`)
	b.WriteString(`<div class="content">`)
	b.WriteString(r.content.Sanitize(n.Content))
	b.WriteString(`</div>`)
	b.WriteString(`</article>`)
	return b.String()
}
