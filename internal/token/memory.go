package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore はプロセス内メモリ上のトークンストア。
// 全リクエストから共有されるためミューテックスで保護する。
// 期限切れレコードはバックグラウンドスレッドではなく、
// Find時に遅延削除される（lazy expiry）。
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Create はレコードを保存する。
func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	s.records[rec.Token] = &stored
	return nil
}

// Find は指定トークンのレコードを取得する。
// 期限切れのレコードは存在しないものとして扱い、この時点で削除する。
func (s *MemoryStore) Find(_ context.Context, token string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[token]
	if !ok {
		return nil, nil
	}
	if rec.Expired(s.now()) {
		delete(s.records, token)
		return nil, nil
	}

	found := *rec
	return &found, nil
}

// Delete は指定トークンのレコードを削除する。冪等。
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, token)
	return nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
