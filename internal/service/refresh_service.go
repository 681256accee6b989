package service

import (
	"context"
	"sync"
	"time"

	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/metrics"
)

// RefreshService 定时重新加载规范表：预热缓存、更新行数指标，
// 并在表被替换（行数变化）或变为不可用时记录日志
type RefreshService struct {
	catalog  CatalogSource
	interval time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	lastRows int
	lastErr  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRefreshService 创建刷新服务
func NewRefreshService(catalog CatalogSource, interval time.Duration, log *logger.Logger) *RefreshService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RefreshService{
		catalog:  catalog,
		interval: interval,
		log:      log.With("component", "RefreshService"),
		lastRows: -1,
	}
}

// Start 启动定时任务，启动时先运行一次
func (s *RefreshService) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.RunOnce()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce()
			}
		}
	}()
}

// Stop 停止定时任务并等待退出
func (s *RefreshService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// RunOnce 加载一次规范表，返回当前行数（不可用时为 0）
func (s *RefreshService) RunOnce() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.catalog.Load()
	if err != nil {
		metrics.RecordCatalog(0)
		if !s.lastErr {
			s.log.Warn("规范表不可用", "error", err)
		}
		s.lastErr = true
		s.lastRows = -1
		return 0
	}

	rows := catalog.Len()
	metrics.RecordCatalog(rows)
	if s.lastErr || rows != s.lastRows {
		s.log.Info("规范表已加载", "rows", rows, "previous", s.lastRows)
	}
	s.lastErr = false
	s.lastRows = rows
	return rows
}
