// Package sessiondata は名前付きセッションデータの保存・取得のドメインロジックを提供する。
package sessiondata

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/repository"
)

// SaveResult は保存操作の結果を表す。
type SaveResult struct {
	ID      int64
	Created bool // trueなら新規保存、falseなら既存セッションの上書き
}

// Service はセッションデータのサービス層。
// すべての操作は認証済みユーザーのIDでスコープされる。
// ユーザーIDは必ずサーバー側の認証コンテキストから渡すこと。
type Service struct {
	repo repository.SessionDataRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.SessionDataRepository) *Service {
	return &Service{repo: repo}
}

// Save は(userID, name)のセッションを保存する。
// 同名セッションが既にあればペイロードを置き換え、なければ新規作成する。
// nameとpayloadは必須で、payloadは整形式のJSONでなければならない。
func (s *Service) Save(ctx context.Context, userID int64, name string, payload json.RawMessage) (*SaveResult, error) {
	if name == "" || len(payload) == 0 {
		return nil, model.NewValidationError("Session name and data are required")
	}
	if !json.Valid(payload) {
		return nil, model.NewValidationError("Session data must be valid JSON")
	}

	result, err := s.repo.Upsert(ctx, userID, name, string(payload))
	if err != nil {
		return nil, err
	}

	slog.Info("session saved",
		slog.Int64("user_id", userID),
		slog.String("session_name", name),
		slog.Int64("session_id", result.ID),
		slog.Bool("created", result.Created),
	)

	return &SaveResult{ID: result.ID, Created: result.Created}, nil
}

// List はユーザーのセッション概要一覧をupdated_at降順で返す。
func (s *Service) List(ctx context.Context, userID int64) ([]model.UserSessionSummary, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Get は指定IDのセッションのペイロードを返す。
// 未知のIDと他ユーザー所有のIDはどちらもSESSION_NOT_FOUNDになる。
// 保存済みテキストがJSONとして解析できない場合はCORRUPT_DATAを返す。
func (s *Service) Get(ctx context.Context, userID, id int64) (json.RawMessage, error) {
	session, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}

	payload := json.RawMessage(session.Data)
	if !json.Valid(payload) {
		slog.Error("stored session data is not valid JSON",
			slog.Int64("user_id", userID),
			slog.Int64("session_id", id),
		)
		return nil, model.NewCorruptDataError()
	}

	return payload, nil
}

// Delete は指定IDのセッションを削除する。
// 未知のIDと他ユーザー所有のIDはどちらもSESSION_NOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	slog.Info("session deleted",
		slog.Int64("user_id", userID),
		slog.Int64("session_id", id),
	)
	return nil
}
