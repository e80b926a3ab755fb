// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/calcstash/internal/middleware"
	"github.com/hitoshi/calcstash/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// 型付きAPIErrorはコードに応じたステータスとメッセージになり、
// それ以外のエラーは詳細をログにのみ記録して500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, statusForCode(apiErr.Code), apiErr.Message)
		return
	}

	slog.Error("unexpected error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// errAsAPIError はエラーチェーンから型付きAPIErrorを取り出す。
func errAsAPIError(err error) (*model.APIError, bool) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 解析に失敗した場合は400レスポンスを書き込み、エラーを返す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}

// statusForCode はエラーコードをHTTPステータスコードに対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeConflict:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	default:
		// CORRUPT_DATA・STORAGE_ERROR・未知のコード
		return http.StatusInternalServerError
	}
}
