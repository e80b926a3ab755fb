package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/calcstash/internal/token"
)

type mockTokenFinder struct {
	findFn func(ctx context.Context, tok string) (*token.Record, error)
}

func (m *mockTokenFinder) Find(ctx context.Context, tok string) (*token.Record, error) {
	if m.findFn != nil {
		return m.findFn(ctx, tok)
	}
	return nil, nil
}

func validRecord(tok string) *token.Record {
	return &token.Record{
		Token:     tok,
		UserID:    1,
		Username:  "alice",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

// 有効なトークンで後続ハンドラーが実行され、識別情報が注入されることを検証
func TestSessionMiddleware_ValidToken_InjectsIdentity(t *testing.T) {
	finder := &mockTokenFinder{
		findFn: func(ctx context.Context, tok string) (*token.Record, error) {
			if tok != "valid-token" {
				t.Errorf("token = %q, want %q", tok, "valid-token")
			}
			return validRecord(tok), nil
		},
	}

	var gotUserID int64
	var gotUsername string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		gotUsername, _ = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := NewSessionMiddleware(finder)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUserID != 1 {
		t.Errorf("userID = %d, want %d", gotUserID, 1)
	}
	if gotUsername != "alice" {
		t.Errorf("username = %q, want %q", gotUsername, "alice")
	}
}

// Cookie欠落で401が返り、後続ハンドラーが実行されないことを検証
func TestSessionMiddleware_MissingCookie_Returns401(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session cookie")
	})

	handler := NewSessionMiddleware(&mockTokenFinder{})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if body.Error != "Unauthorized" {
		t.Errorf("error = %q, want %q", body.Error, "Unauthorized")
	}
}

// 未知・期限切れトークンで401が返ることを検証
func TestSessionMiddleware_UnknownToken_Returns401(t *testing.T) {
	finder := &mockTokenFinder{
		findFn: func(ctx context.Context, tok string) (*token.Record, error) {
			return nil, nil // 存在しない・期限切れ
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an unknown token")
	})

	handler := NewSessionMiddleware(finder)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// ストア障害でも401が返り、詳細が漏れないことを検証
func TestSessionMiddleware_StoreError_Returns401(t *testing.T) {
	finder := &mockTokenFinder{
		findFn: func(ctx context.Context, tok string) (*token.Record, error) {
			return nil, errors.New("store unavailable")
		},
	}

	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the store fails")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "any"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// コンテキストヘルパーの往復を検証
func TestContextWithIdentity_RoundTrip(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), 7, "bob")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want %d", userID, 7)
	}

	username, err := UsernameFromContext(ctx)
	if err != nil {
		t.Fatalf("UsernameFromContext returned error: %v", err)
	}
	if username != "bob" {
		t.Errorf("username = %q, want %q", username, "bob")
	}
}

// 未注入コンテキストでエラーが返ることを検証
func TestUserIDFromContext_MissingValue_ReturnsError(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user ID")
	}
	if _, err := UsernameFromContext(context.Background()); err == nil {
		t.Error("expected error for context without username")
	}
}
