package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/calcstash/internal/middleware"
	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/sessiondata"
)

// SessionServiceInterface はセッションハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	Save(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error)
	List(ctx context.Context, userID int64) ([]model.UserSessionSummary, error)
	Get(ctx context.Context, userID, id int64) (json.RawMessage, error)
	Delete(ctx context.Context, userID, id int64) error
}

// SessionMetrics はセッションハンドラーが記録するメトリクスのインターフェース。
type SessionMetrics interface {
	RecordSessionSaved(created bool)
	RecordSessionDeleted()
}

// SessionHandler は計算セッションCRUDのHTTPハンドラー。
// すべてのエンドポイントは認証ミドルウェアの内側に配置され、
// 操作対象は常に認証済みユーザー自身のセッションに限られる。
type SessionHandler struct {
	service SessionServiceInterface
	metrics SessionMetrics
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface, metrics SessionMetrics) *SessionHandler {
	return &SessionHandler{
		service: service,
		metrics: metrics,
	}
}

type saveSessionRequest struct {
	SessionName string          `json:"sessionName"`
	SessionData json.RawMessage `json:"sessionData"`
}

type sessionSummaryResponse struct {
	ID          int64     `json:"id"`
	SessionName string    `json:"session_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Save は名前付きセッションを保存する。同名セッションは上書きになる。
// POST /api/sessions
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	var req saveSessionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	result, err := h.service.Save(r.Context(), userID, req.SessionName, req.SessionData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordSessionSaved(result.Created)

	if result.Created {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"sessionId": result.ID,
			"message":   "Session saved",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session updated",
	})
}

// List は自ユーザーのセッション概要一覧を返す。ペイロード本体は含まない。
// GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	summaries, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sessions := make([]sessionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, sessionSummaryResponse{
			ID:          s.ID,
			SessionName: s.Name,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"sessions": sessions,
	})
}

// Get は指定IDのセッションのペイロードを返す。
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	payload, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"sessionData": payload,
	})
}

// Delete は指定IDのセッションを削除する。
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordSessionDeleted()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session deleted",
	})
}

// parseSessionID はURLパラメータからセッションIDを取り出す。
// 数値として解析できないIDは存在しないIDと同様に404として扱う。
func parseSessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleServiceError(w, model.NewSessionNotFoundError())
		return 0, false
	}
	return id, true
}
