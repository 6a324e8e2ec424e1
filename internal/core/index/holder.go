package index

import (
	"sync/atomic"
	"time"

	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/pkg/common"
)

// Snapshot 一份資料集與其索引，建立後只讀
type Snapshot struct {
	Corpus  *corpus.Corpus
	Index   *Index
	Version uint64
	BuiltAt time.Time
}

// Holder 目前使用中的 Snapshot。重建時整份替換，讀取端不會看到半成品
type Holder struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewHolder 建立空的 Holder
func NewHolder() *Holder {
	return &Holder{}
}

// BuildSnapshot 以資料集建立新的 Snapshot，尚未對外可見
func (h *Holder) BuildSnapshot(c *corpus.Corpus) *Snapshot {
	return &Snapshot{
		Corpus:  c,
		Index:   Build(c.Documents()),
		Version: h.version.Add(1),
		BuiltAt: time.Now(),
	}
}

// Store 原子替換目前的 Snapshot，回傳被替換掉的舊值
func (h *Holder) Store(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}

// Rebuild 建立並替換
func (h *Holder) Rebuild(c *corpus.Corpus) *Snapshot {
	s := h.BuildSnapshot(c)
	h.Store(s)
	return s
}

// Load 取得目前的 Snapshot，尚未建立時回傳 ErrIndexNotBuilt
func (h *Holder) Load() (*Snapshot, error) {
	s := h.current.Load()
	if s == nil {
		return nil, common.ErrIndexNotBuilt
	}
	return s, nil
}

// Ready 是否已有可用索引
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
