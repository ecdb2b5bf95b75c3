package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/newsletter/internal/model"
	"github.com/hitoshi/newsletter/internal/newsletter"
)

// NewsletterServiceInterface はニュースレターハンドラーが必要とするサービスインターフェース。
type NewsletterServiceInterface interface {
	List(ctx context.Context) ([]*model.Newsletter, error)
	Get(ctx context.Context, id int64) (*model.Newsletter, error)
	// Preview はサニタイズ済みのHTML断片を返す。
	Preview(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, in newsletter.CreateInput) (*model.Newsletter, error)
	Update(ctx context.Context, id int64, patch model.NewsletterPatch) (*model.Newsletter, error)
	Delete(ctx context.Context, id int64) error
}

// NewsletterHandler はニュースレター管理のHTTPハンドラー。
type NewsletterHandler struct {
	errorResponder
	service NewsletterServiceInterface
}

// NewNewsletterHandler はNewsletterHandlerを生成する。
func NewNewsletterHandler(service NewsletterServiceInterface, recorder StorageErrorRecorder) *NewsletterHandler {
	return &NewsletterHandler{
		errorResponder: errorResponder{recorder: recorder},
		service:        service,
	}
}

// createNewsletterRequest はニュースレター作成リクエストのボディ。
type createNewsletterRequest struct {
	Topic        string `json:"topic"`
	Content      string `json:"content"`
	SendDate     string `json:"send_date"`
	SubscriberID *int64 `json:"subscriber_id"`
}

// updateNewsletterRequest はニュースレター更新リクエストのボディ。
// subscriber_idにnullを指定すると参照を解除する。
type updateNewsletterRequest struct {
	Topic        model.Optional[string] `json:"topic"`
	Content      model.Optional[string] `json:"content"`
	SendDate     model.Optional[string] `json:"send_date"`
	SubscriberID model.Optional[int64]  `json:"subscriber_id"`
}

// newsletterResponse はニュースレター情報のAPIレスポンス。
type newsletterResponse struct {
	ID           int64      `json:"id"`
	Topic        string     `json:"topic"`
	Content      string     `json:"content"`
	SendDate     model.Date `json:"send_date"`
	SubscriberID *int64     `json:"subscriber_id"`
}

// ListNewsletters は全ニュースレターを返す。
// GET /newsletters
func (h *NewsletterHandler) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponses(list))
}

// CreateNewsletter はニュースレターを作成する。
// POST /newsletters
func (h *NewsletterHandler) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	var req createNewsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// send_dateの欠落はサービス層で検出する
	var sendDate model.Date
	if req.SendDate != "" {
		d, err := model.ParseDate(req.SendDate)
		if err != nil {
			h.handleServiceError(w, r, model.NewValidationError("send_date", "YYYY-MM-DD形式で指定してください"))
			return
		}
		sendDate = d
	}

	n, err := h.service.Create(r.Context(), newsletter.CreateInput{
		Topic:        req.Topic,
		Content:      req.Content,
		SendDate:     sendDate,
		SubscriberID: req.SubscriberID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNewsletterResponse(n))
}

// GetNewsletter はニュースレターを1件返す。
// GET /newsletters/{id}
func (h *NewsletterHandler) GetNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	n, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponse(n))
}

// PreviewNewsletter はニュースレターをHTMLで返す。
// GET /newsletters/{id}/preview
func (h *NewsletterHandler) PreviewNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	html, err := h.service.Preview(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// UpdateNewsletter は指定されたフィールドのみを更新する。
// PUT /newsletters/{id}, PATCH /newsletters/{id}
func (h *NewsletterHandler) UpdateNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateNewsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sendDate, err := parseDatePatch(req.SendDate)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	n, err := h.service.Update(r.Context(), id, model.NewsletterPatch{
		Topic:        req.Topic,
		Content:      req.Content,
		SendDate:     sendDate,
		SubscriberID: req.SubscriberID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponse(n))
}

// DeleteNewsletter はニュースレターを削除する。
// DELETE /newsletters/{id}
func (h *NewsletterHandler) DeleteNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: "newsletter deleted", ID: id})
}

// parseDatePatch は文字列のsend_dateパッチを日付のパッチに変換する。
// 未指定とnullはそのまま引き継ぎ、nullの拒否はサービス層に任せる。
func parseDatePatch(o model.Optional[string]) (model.Optional[model.Date], error) {
	if !o.Set {
		return model.Optional[model.Date]{}, nil
	}
	if o.Null {
		return model.Null[model.Date](), nil
	}
	d, err := model.ParseDate(o.Value)
	if err != nil {
		return model.Optional[model.Date]{}, model.NewValidationError("send_date", "YYYY-MM-DD形式で指定してください")
	}
	return model.Some(d), nil
}

// toNewsletterResponse はmodel.NewsletterからAPIレスポンスに変換する。
func toNewsletterResponse(n *model.Newsletter) newsletterResponse {
	return newsletterResponse{
		ID:           n.ID,
		Topic:        n.Topic,
		Content:      n.Content,
		SendDate:     n.SendDate,
		SubscriberID: n.SubscriberID,
	}
}

func toNewsletterResponses(list []*model.Newsletter) []newsletterResponse {
	results := make([]newsletterResponse, len(list))
	for i, n := range list {
		results[i] = toNewsletterResponse(n)
	}
	return results
}
