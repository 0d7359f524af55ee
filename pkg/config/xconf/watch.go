package xconf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 重载回调。err 非 nil 表示重载失败或监视出错，此时 cfg 仍为旧快照。
type WatchCallback func(cfg Config, err error)

// WatchOption 监视器选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// defaultDebounce 默认防抖时间。
const defaultDebounce = 100 * time.Millisecond

// WithDebounce 设置防抖时间，窗口内的多次变更只触发一次重载。非正值被忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 配置文件监视器。
type Watcher struct {
	cfg      *koanfConfig
	fsw      *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	done    chan struct{}
	loopWG  sync.WaitGroup
	// cbWG 跟踪已排期或正在执行的回调
	cbWG sync.WaitGroup
}

// Watch 创建配置文件监视器，调用 Start 或 StartAsync 后开始工作。
//
// 只支持通过 [New] 从文件创建的 Config。监视的是文件所在目录，
// 以兼容编辑器先删除再创建、或写临时文件后 rename 的保存方式。
//
//	w, err := xconf.Watch(cfg, func(c xconf.Config, err error) {
//		if err != nil {
//			return
//		}
//		// 使用 c 重新构建业务配置
//	})
//	if err != nil {
//		return err
//	}
//	w.StartAsync()
//	defer w.Stop()
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, ErrUnsupportedConfig
	}
	if kc.path == "" {
		return nil, ErrNotReloadable
	}

	options := &watchOptions{debounce: defaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: failed to create watcher: %w", err)
	}
	dir := filepath.Dir(kc.path)
	if err := fsw.Add(dir); err != nil {
		return nil, errors.Join(
			fmt.Errorf("xconf: failed to watch directory %s: %w", dir, err),
			fsw.Close(),
		)
	}

	return &Watcher{
		cfg:      kc,
		fsw:      fsw,
		callback: callback,
		debounce: options.debounce,
		done:     make(chan struct{}),
	}, nil
}

// Start 在当前 goroutine 运行监视循环，直到 Stop。
func (w *Watcher) Start() {
	if !w.markStarted() {
		return
	}
	defer w.loopWG.Done()
	w.loop()
}

// StartAsync 在后台 goroutine 运行监视循环并立即返回。
func (w *Watcher) StartAsync() {
	if !w.markStarted() {
		return
	}
	go func() {
		defer w.loopWG.Done()
		w.loop()
	}()
}

func (w *Watcher) markStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return false
	}
	w.started = true
	w.loopWG.Add(1)
	return true
}

// Stop 停止监视。返回后监视循环已退出，待触发的防抖重载被取消，
// 正在执行的回调已结束，之后不会再有回调。重复调用返回 nil。
// 不能在回调中调用 Stop，否则会等待自身结束而死锁。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.cancelTimerLocked()
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.loopWG.Wait()
	w.cbWG.Wait()
	return err
}

// cancelTimerLocked 取消尚未触发的防抖重载，调用方持有 mu。
func (w *Watcher) cancelTimerLocked() {
	if w.timer == nil {
		return
	}
	// 已触发的 timer 由回调自己释放 cbWG
	if w.timer.Stop() {
		w.cbWG.Done()
	}
	w.timer = nil
}

func (w *Watcher) loop() {
	filename := filepath.Base(w.cfg.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.onEvent(event, filename)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.notifyError(fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// onEvent 对目标文件的 Write/Create/Rename 事件做防抖后重载。
func (w *Watcher) onEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.cancelTimerLocked()
	w.cbWG.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.cbWG.Done()
		w.reload()
	})
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	err := w.cfg.Reload()
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

// notifyError 在独立 goroutine 中回调，慢回调不阻塞监视循环。
func (w *Watcher) notifyError(err error) {
	if w.callback == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.cbWG.Add(1)
	time.AfterFunc(0, func() {
		defer w.cbWG.Done()
		select {
		case <-w.done:
			return
		default:
		}
		w.callback(w.cfg, err)
	})
}
