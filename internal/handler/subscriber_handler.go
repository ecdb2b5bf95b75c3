package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/newsletter/internal/model"
	"github.com/hitoshi/newsletter/internal/subscriber"
)

// SubscriberServiceInterface は購読者ハンドラーが必要とするサービスインターフェース。
type SubscriberServiceInterface interface {
	List(ctx context.Context) ([]*model.Subscriber, error)
	Get(ctx context.Context, id int64) (*model.Subscriber, error)
	Create(ctx context.Context, in subscriber.CreateInput) (*model.Subscriber, error)
	Update(ctx context.Context, id int64, patch model.SubscriberPatch) (*model.Subscriber, error)
	Delete(ctx context.Context, id int64) error
	// ListNewsletters は購読者を参照するニュースレター一覧を返す。
	ListNewsletters(ctx context.Context, id int64) ([]*model.Newsletter, error)
}

// SubscriberHandler は購読者管理のHTTPハンドラー。
type SubscriberHandler struct {
	errorResponder
	service SubscriberServiceInterface
}

// NewSubscriberHandler はSubscriberHandlerを生成する。
func NewSubscriberHandler(service SubscriberServiceInterface, recorder StorageErrorRecorder) *SubscriberHandler {
	return &SubscriberHandler{
		errorResponder: errorResponder{recorder: recorder},
		service:        service,
	}
}

// createSubscriberRequest は購読者作成リクエストのボディ。
// usernameはaccountの別名として受け付ける。
type createSubscriberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Account  string `json:"account"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// updateSubscriberRequest は購読者更新リクエストのボディ。
// キーが存在するフィールドのみ更新する。
type updateSubscriberRequest struct {
	Name     model.Optional[string] `json:"name"`
	Email    model.Optional[string] `json:"email"`
	Account  model.Optional[string] `json:"account"`
	Username model.Optional[string] `json:"username"`
	Password model.Optional[string] `json:"password"`
}

// subscriberResponse は購読者情報のAPIレスポンス。
type subscriberResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Account  string `json:"account"`
	Password string `json:"password"`
}

// ListSubscribers は全購読者を返す。
// GET /subscribers
func (h *SubscriberHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	results := make([]subscriberResponse, len(subs))
	for i, s := range subs {
		results[i] = toSubscriberResponse(s)
	}
	writeJSON(w, http.StatusOK, results)
}

// CreateSubscriber は購読者を作成する。
// POST /subscribers
func (h *SubscriberHandler) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req createSubscriberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	account := req.Account
	if account == "" {
		account = req.Username
	}

	sub, err := h.service.Create(r.Context(), subscriber.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Account:  account,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriberResponse(sub))
}

// GetSubscriber は購読者を1件返す。
// GET /subscribers/{id}
func (h *SubscriberHandler) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubscriberResponse(sub))
}

// UpdateSubscriber は指定されたフィールドのみを更新する。
// PUT /subscribers/{id}, PATCH /subscribers/{id}
func (h *SubscriberHandler) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateSubscriberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	account := req.Account
	if !account.Set {
		account = req.Username
	}

	sub, err := h.service.Update(r.Context(), id, model.SubscriberPatch{
		Name:     req.Name,
		Email:    req.Email,
		Account:  account,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubscriberResponse(sub))
}

// DeleteSubscriber は購読者を削除する。
// DELETE /subscribers/{id}
func (h *SubscriberHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: "subscriber deleted", ID: id})
}

// ListSubscriberNewsletters は購読者を参照するニュースレター一覧を返す。
// GET /subscribers/{id}/newsletters
func (h *SubscriberHandler) ListSubscriberNewsletters(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	list, err := h.service.ListNewsletters(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNewsletterResponses(list))
}

// toSubscriberResponse はmodel.SubscriberからAPIレスポンスに変換する。
func toSubscriberResponse(s *model.Subscriber) subscriberResponse {
	return subscriberResponse{
		ID:       s.ID,
		Name:     s.Name,
		Email:    s.Email,
		Account:  s.Account,
		Password: s.Password,
	}
}
