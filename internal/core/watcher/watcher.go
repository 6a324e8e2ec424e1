// Package watcher 監看食譜資料檔，變更時重新建立索引
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"recipe-suggester/internal/pkg/common"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher 監看單一檔案。監看的是檔案所在目錄，編輯器以改名方式覆寫時仍能收到事件
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// New 建立 Watcher，debounce <= 0 時使用預設值
func New(path string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(abs),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Path 監看中的檔案
func (w *Watcher) Path() string {
	return w.path
}

// Start 開始監看，直到 ctx 結束或呼叫 Stop。Stop 之後可再次 Start
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	w.started = true

	common.LogInfo("開始監看食譜資料檔",
		zap.String("path", w.path),
		zap.Duration("debounce", w.debounce),
	)
	go w.run(ctx, fsw, w.done)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.stop(done)
			return
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				common.LogWarn("檔案監看錯誤", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	common.LogDebug("watcher event",
		zap.String("op", ev.Op.String()),
		zap.String("path", ev.Name),
	)
	// 刪除後通常緊接著建立新檔，統一交給 debounce 後的重新載入處理
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
		w.schedule(ctx)
	}
}

// schedule 重設 debounce 計時器
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	done := w.done
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-done:
			return
		default:
		}
		common.LogDebug("食譜資料檔變更，重新載入", zap.String("path", w.path))
		if w.onChange != nil {
			w.onChange(ctx)
		}
	})
}

// Stop 停止監看並釋放資源
func (w *Watcher) Stop() {
	w.stop(nil)
}

// stop 關閉目前的監看；done 不為 nil 時只在仍是同一輪監看時生效
func (w *Watcher) stop(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || (done != nil && done != w.done) {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.started = false
	close(w.done)
}
