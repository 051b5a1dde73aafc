package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
	"github.com/artificielle/consolidations/internal/store"
)

// ErrWorkspaceNotFound 工作区不存在
var ErrWorkspaceNotFound = errors.New("workspace not found")

// RunRecorder 运行日志落库
type RunRecorder interface {
	RecordRun(r store.Run) (int64, error)
}

// ManagerOptions 管理器配置
type ManagerOptions struct {
	TemplateDir string
	YearPrefix  string
	// DataDir 非空时，每次合并后将结果写到 <DataDir>/workspaces/<id>/
	DataDir  string
	Atomic   bool
	Recorder RunRecorder
	Logger   logrus.FieldLogger
}

// Manager 工作区管理器：按专题创建工作区、执行合并并记录运行日志
type Manager struct {
	opts ManagerOptions
	log  logrus.FieldLogger

	mu    sync.RWMutex
	items map[string]*Workspace
}

func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.TemplateDir == "" {
		return nil, errors.New("template dir is required")
	}
	if opts.YearPrefix == "" {
		opts.YearPrefix = excel.DefaultYearPrefix
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		opts:  opts,
		log:   log,
		items: make(map[string]*Workspace),
	}, nil
}

// Create 读取专题模板并创建工作区
func (m *Manager) Create(topic consolidation.Topic) (*Workspace, error) {
	name := topic.Name()
	if name == "" {
		return nil, fmt.Errorf("unknown topic: %q", topic)
	}
	data, err := excel.ReadTemplate(m.opts.TemplateDir, m.opts.YearPrefix, name)
	if err != nil {
		m.log.WithError(err).WithField("topic", topic).Warn("模板加载失败")
		return nil, err
	}

	id := fmt.Sprintf("w_%s", uuid.New().String()[:8])
	w, err := New(id, topic, excel.TemplateFileName(m.opts.YearPrefix, name), data, Options{Atomic: m.opts.Atomic})
	if err != nil {
		m.log.WithError(err).WithField("topic", topic).Warn("模板加载失败")
		return nil, err
	}

	m.mu.Lock()
	m.items[id] = w
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"workspace": id, "topic": topic}).Info("工作区已创建")
	return w, nil
}

// Get 按 ID 取工作区
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return w, nil
}

// List 全部工作区概要，按创建时间排序
func (m *Manager) List() []Summary {
	m.mu.RLock()
	list := make([]*Workspace, 0, len(m.items))
	for _, w := range m.items {
		list = append(list, w)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(list))
	for _, w := range list {
		out = append(out, w.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete 关闭并移除工作区，同时删除其数据目录
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	w, ok := m.items[id]
	if ok {
		delete(m.items, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	if m.opts.DataDir != "" {
		if err := os.RemoveAll(m.workspaceDir(id)); err != nil {
			m.log.WithError(err).WithField("workspace", id).Warn("删除工作区目录失败")
		}
	}
	m.log.WithField("workspace", id).Info("工作区已删除")
	return w.Close()
}

// Consolidate 执行一轮合并，记录运行日志并（可选）保存结果
func (m *Manager) Consolidate(id string) (RunOutcome, error) {
	w, err := m.Get(id)
	if err != nil {
		return RunOutcome{}, err
	}

	outcome, runErr := w.Consolidate()
	if errors.Is(runErr, ErrWorkspaceClosed) {
		// 合并开始前已被删除或清理，没有运行可记录
		return outcome, runErr
	}
	summary := w.Summary()
	fields := logrus.Fields{
		"workspace":    id,
		"topic":        summary.Topic,
		"subsidiaries": len(summary.Subsidiaries),
		"branches":     len(summary.Branches),
		"cells":        outcome.CellsWritten,
		"duration":     outcome.Duration,
	}
	if runErr != nil {
		m.log.WithFields(fields).WithError(runErr).Warn("合并失败")
	} else {
		m.log.WithFields(fields).Info("合并完成")
	}

	if m.opts.Recorder != nil {
		_, err := m.opts.Recorder.RecordRun(store.Run{
			WorkspaceID:   id,
			Topic:         summary.Topic,
			Subsidiaries:  len(summary.Subsidiaries),
			Branches:      len(summary.Branches),
			StagesRun:     outcome.StagesRun,
			StagesSkipped: outcome.StagesSkipped,
			CellsWritten:  outcome.CellsWritten,
			Atomic:        outcome.Atomic,
			Status:        outcome.Status,
			ErrorMessage:  outcome.Error,
			DurationMs:    outcome.Duration.Milliseconds(),
			CreatedAt:     outcome.StartedAt,
		})
		if err != nil {
			m.log.WithError(err).WithField("workspace", id).Warn("运行日志写入失败")
		}
	}

	if runErr == nil && m.opts.DataDir != "" {
		if err := m.persist(w, summary); err != nil {
			m.log.WithError(err).WithField("workspace", id).Warn("合并结果保存失败")
		}
	}
	return outcome, runErr
}

// Close 关闭全部工作区
func (m *Manager) Close() error {
	m.mu.Lock()
	items := m.items
	m.items = make(map[string]*Workspace)
	m.mu.Unlock()

	var errs []error
	for _, w := range items {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

func (m *Manager) workspaceDir(id string) string {
	return filepath.Join(m.opts.DataDir, "workspaces", id)
}

func (m *Manager) latestXlsxPath(w *Workspace) string {
	return filepath.Join(m.workspaceDir(w.ID()), w.FileName())
}

func (m *Manager) metaPath(id string) string {
	return filepath.Join(m.workspaceDir(id), "meta.json")
}

func (m *Manager) persist(w *Workspace, summary Summary) error {
	data, err := w.Save()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(m.latestXlsxPath(w), data); err != nil {
		return err
	}
	return writeJSONAtomic(m.metaPath(w.ID()), summary)
}

// sessionLifetime 用于清理长时间未操作的工作区
const sessionLifetime = 12 * time.Hour

// Sweep 关闭超过 sessionLifetime 未更新的工作区，返回关闭数量。
// 读取各工作区时不持有管理器锁，正在合并的工作区不会阻塞 Get/Create。
func (m *Manager) Sweep(now time.Time) int {
	m.mu.RLock()
	items := make(map[string]*Workspace, len(m.items))
	for id, w := range m.items {
		items[id] = w
	}
	m.mu.RUnlock()

	var stale []string
	for id, w := range items {
		if now.Sub(w.UpdatedAt()) > sessionLifetime {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	var expired []*Workspace
	m.mu.Lock()
	for _, id := range stale {
		// 期间可能已被删除
		if w, ok := m.items[id]; ok && w == items[id] {
			expired = append(expired, w)
			delete(m.items, id)
		}
	}
	m.mu.Unlock()

	for _, w := range expired {
		_ = w.Close()
		m.log.WithField("workspace", w.ID()).Info("工作区已过期")
	}
	return len(expired)
}
