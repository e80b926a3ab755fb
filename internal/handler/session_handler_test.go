package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/calcstash/internal/middleware"
	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/sessiondata"
)

type mockSessionService struct {
	saveFn   func(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error)
	listFn   func(ctx context.Context, userID int64) ([]model.UserSessionSummary, error)
	getFn    func(ctx context.Context, userID, id int64) (json.RawMessage, error)
	deleteFn func(ctx context.Context, userID, id int64) error
}

func (m *mockSessionService) Save(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error) {
	return m.saveFn(ctx, userID, name, payload)
}

func (m *mockSessionService) List(ctx context.Context, userID int64) ([]model.UserSessionSummary, error) {
	return m.listFn(ctx, userID)
}

func (m *mockSessionService) Get(ctx context.Context, userID, id int64) (json.RawMessage, error) {
	return m.getFn(ctx, userID, id)
}

func (m *mockSessionService) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFn(ctx, userID, id)
}

type noopSessionMetrics struct {
	saved   int
	deleted int
}

func (m *noopSessionMetrics) RecordSessionSaved(created bool) { m.saved++ }
func (m *noopSessionMetrics) RecordSessionDeleted()           { m.deleted++ }

// authedRequest は認証済みコンテキスト付きのリクエストを生成する。
func authedRequest(method, target string, body string, userID int64) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.ContextWithIdentity(req.Context(), userID, "alice"))
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// TestSaveSession_Created は新規保存でsessionIdと"Session saved"が返ることを検証する。
func TestSaveSession_Created(t *testing.T) {
	svc := &mockSessionService{
		saveFn: func(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error) {
			if userID != 1 {
				t.Errorf("userID = %d, want 1", userID)
			}
			if name != "trip1" {
				t.Errorf("name = %q, want %q", name, "trip1")
			}
			return &sessiondata.SaveResult{ID: 10, Created: true}, nil
		},
	}
	m := &noopSessionMetrics{}
	h := NewSessionHandler(svc, m)

	body := `{"sessionName":"trip1","sessionData":{"distance":100}}`
	w := httptest.NewRecorder()

	h.Save(w, authedRequest(http.MethodPost, "/api/sessions", body, 1))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp["success"] != true {
		t.Error("success should be true")
	}
	if resp["sessionId"] != float64(10) {
		t.Errorf("sessionId = %v, want 10", resp["sessionId"])
	}
	if resp["message"] != "Session saved" {
		t.Errorf("message = %v, want %q", resp["message"], "Session saved")
	}
	if m.saved != 1 {
		t.Errorf("saved metric = %d, want 1", m.saved)
	}
}

// TestSaveSession_Updated は同名上書きで"Session updated"が返ることを検証する。
func TestSaveSession_Updated(t *testing.T) {
	svc := &mockSessionService{
		saveFn: func(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error) {
			return &sessiondata.SaveResult{ID: 10, Created: false}, nil
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	body := `{"sessionName":"trip1","sessionData":{"distance":200}}`
	w := httptest.NewRecorder()

	h.Save(w, authedRequest(http.MethodPost, "/api/sessions", body, 1))

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp["message"] != "Session updated" {
		t.Errorf("message = %v, want %q", resp["message"], "Session updated")
	}
	if _, exists := resp["sessionId"]; exists {
		t.Error("sessionId should not be present for updates")
	}
}

// TestSaveSession_MissingFields は必須フィールド欠落で400が返ることを検証する。
func TestSaveSession_MissingFields(t *testing.T) {
	svc := &mockSessionService{
		saveFn: func(ctx context.Context, userID int64, name string, payload json.RawMessage) (*sessiondata.SaveResult, error) {
			return nil, model.NewValidationError("Session name and data are required")
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	w := httptest.NewRecorder()
	h.Save(w, authedRequest(http.MethodPost, "/api/sessions", `{"sessionName":""}`, 1))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp middleware.ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp.Error != "Session name and data are required" {
		t.Errorf("error = %q, want %q", resp.Error, "Session name and data are required")
	}
}

// TestListSessions_ReturnsSummaries は概要一覧がsnake_caseフィールドで返ることを検証する。
func TestListSessions_ReturnsSummaries(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockSessionService{
		listFn: func(ctx context.Context, userID int64) ([]model.UserSessionSummary, error) {
			return []model.UserSessionSummary{
				{ID: 2, Name: "trip2", CreatedAt: now, UpdatedAt: now},
				{ID: 1, Name: "trip1", CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/sessions", "", 1))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Success  bool                     `json:"success"`
		Sessions []sessionSummaryResponse `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(resp.Sessions))
	}
	if resp.Sessions[0].SessionName != "trip2" {
		t.Errorf("sessions[0].session_name = %q, want %q", resp.Sessions[0].SessionName, "trip2")
	}
	// ペイロード本体が含まれないことを確認
	if strings.Contains(w.Body.String(), "sessionData") {
		t.Error("list response must not contain session payloads")
	}
}

// TestListSessions_Empty はセッションゼロ件で空配列が返ることを検証する。
func TestListSessions_Empty(t *testing.T) {
	svc := &mockSessionService{
		listFn: func(ctx context.Context, userID int64) ([]model.UserSessionSummary, error) {
			return []model.UserSessionSummary{}, nil
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/sessions", "", 1))

	if !strings.Contains(w.Body.String(), `"sessions":[]`) {
		t.Errorf("expected empty sessions array, got %s", w.Body.String())
	}
}

// TestGetSession_ReturnsPayload は保存したペイロードがそのまま返ることを検証する。
func TestGetSession_ReturnsPayload(t *testing.T) {
	svc := &mockSessionService{
		getFn: func(ctx context.Context, userID, id int64) (json.RawMessage, error) {
			if id != 10 {
				t.Errorf("id = %d, want 10", id)
			}
			return json.RawMessage(`{"distance":100,"unit":"km"}`), nil
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	req := withURLParam(authedRequest(http.MethodGet, "/api/sessions/10", "", 1), "id", "10")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Success     bool            `json:"success"`
		SessionData json.RawMessage `json:"sessionData"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.SessionData, &payload); err != nil {
		t.Fatalf("sessionData should be JSON: %v", err)
	}
	if payload["distance"] != float64(100) {
		t.Errorf("distance = %v, want 100", payload["distance"])
	}
}

// TestGetSession_NotFound は未知のIDで404が返ることを検証する。
func TestGetSession_NotFound(t *testing.T) {
	svc := &mockSessionService{
		getFn: func(ctx context.Context, userID, id int64) (json.RawMessage, error) {
			return nil, model.NewSessionNotFoundError()
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	req := withURLParam(authedRequest(http.MethodGet, "/api/sessions/99", "", 1), "id", "99")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp middleware.ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp.Error != "Session not found" {
		t.Errorf("error = %q, want %q", resp.Error, "Session not found")
	}
}

// TestGetSession_NonNumericID は数値でないIDが404として扱われることを検証する。
func TestGetSession_NonNumericID(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, &noopSessionMetrics{})

	req := withURLParam(authedRequest(http.MethodGet, "/api/sessions/abc", "", 1), "id", "abc")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestGetSession_CorruptData は破損ペイロードで500が返ることを検証する。
func TestGetSession_CorruptData(t *testing.T) {
	svc := &mockSessionService{
		getFn: func(ctx context.Context, userID, id int64) (json.RawMessage, error) {
			return nil, model.NewCorruptDataError()
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	req := withURLParam(authedRequest(http.MethodGet, "/api/sessions/10", "", 1), "id", "10")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp middleware.ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp.Error != "Invalid session data" {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid session data")
	}
}

// TestDeleteSession_Success は削除成功で"Session deleted"が返ることを検証する。
func TestDeleteSession_Success(t *testing.T) {
	svc := &mockSessionService{
		deleteFn: func(ctx context.Context, userID, id int64) error {
			if userID != 1 || id != 10 {
				t.Errorf("args = (%d, %d), want (1, 10)", userID, id)
			}
			return nil
		},
	}
	m := &noopSessionMetrics{}
	h := NewSessionHandler(svc, m)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/sessions/10", "", 1), "id", "10")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if resp["message"] != "Session deleted" {
		t.Errorf("message = %v, want %q", resp["message"], "Session deleted")
	}
	if m.deleted != 1 {
		t.Errorf("deleted metric = %d, want 1", m.deleted)
	}
}

// TestDeleteSession_NotFound は未知のIDの削除で404が返ることを検証する。
func TestDeleteSession_NotFound(t *testing.T) {
	svc := &mockSessionService{
		deleteFn: func(ctx context.Context, userID, id int64) error {
			return model.NewSessionNotFoundError()
		},
	}
	h := NewSessionHandler(svc, &noopSessionMetrics{})

	req := withURLParam(authedRequest(http.MethodDelete, "/api/sessions/99", "", 1), "id", "99")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
