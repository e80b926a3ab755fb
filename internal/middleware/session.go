// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/calcstash/internal/token"
)

// SessionCookieName はログイントークンを保持するCookieの名前。
const SessionCookieName = "session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// usernameContextKey はリクエストコンテキストにユーザー名を格納するためのキー。
var usernameContextKey = contextKey("username")

// TokenFinder はトークンの解決に必要なインターフェース。
// token.Storeの部分集合として定義する。
type TokenFinder interface {
	Find(ctx context.Context, tok string) (*token.Record, error)
}

// NewSessionMiddleware はHTTP Only Cookieからトークンを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みユーザーのIDとユーザー名をリクエストコンテキストに注入する。
// トークンが欠落・未知・期限切れの場合は401を返し、後続のハンドラーは実行されない。
func NewSessionMiddleware(finder TokenFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからトークンIDを取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			// 2. トークンの有効性を検証
			rec, err := finder.Find(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to resolve token",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if rec == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			// 3. 認証済み識別情報をコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, rec.UserID)
			ctx = context.WithValue(ctx, usernameContextKey, rec.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok || userID == 0 {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// UsernameFromContext はリクエストコンテキストからユーザー名を取得する。
func UsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameContextKey).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// ContextWithIdentity はコンテキストにユーザーIDとユーザー名を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, userID int64, username string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, usernameContextKey, username)
}
