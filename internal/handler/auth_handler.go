package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/calcstash/internal/middleware"
	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/token"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*token.Record, error)
	Login(ctx context.Context, username, password string) (*token.Record, error)
	Logout(ctx context.Context, tok string) error
}

// AuthMetrics は認証ハンドラーが記録するメトリクスのインターフェース。
type AuthMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRegistration()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はユーザー登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetrics
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
		config:  config,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type identityResponse struct {
	Success  bool   `json:"success"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Register は新規ユーザーを登録し、そのままログイン状態にする。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	rec, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRegistration()
	h.setSessionCookie(w, rec.Token)
	writeJSON(w, http.StatusOK, identityResponse{
		Success:  true,
		UserID:   rec.UserID,
		Username: rec.Username,
	})
}

// Login はユーザーを認証し、セッションCookieを設定する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	rec, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apiErr, ok := errAsAPIError(err); ok && apiErr.Code == model.ErrCodeInvalidCredentials {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLoginSuccess()
	h.setSessionCookie(w, rec.Token)
	writeJSON(w, http.StatusOK, identityResponse{
		Success:  true,
		UserID:   rec.UserID,
		Username: rec.Username,
	})
}

// Logout はセッションを破棄する。Cookieがなくても成功を返す（冪等）。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var tok string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		tok = cookie.Value
	}

	if err := h.service.Logout(r.Context(), tok); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Me は現在のログインユーザー情報を返す。
// GET /api/user（認証必須）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}
	username, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{
		Success:  true,
		UserID:   userID,
		Username: username,
	})
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tok,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieをクリアする。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
