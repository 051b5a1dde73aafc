package workspace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

// ErrSheetNotFound 预览请求的表不存在
var ErrSheetNotFound = errors.New("sheet not found")

// ErrWorkspaceClosed 工作区已被删除或过期清理，仍持有它的请求据此结束
var ErrWorkspaceClosed = fmt.Errorf("%w: closed", ErrWorkspaceNotFound)

// Options 工作区选项
type Options struct {
	// Atomic 合并失败时不保留任何写入
	Atomic bool
}

// Workspace 一个专题的合并会话：模板工作簿、两张目标表，以及按上传顺序排列的子公司与分公司
type Workspace struct {
	id           string
	topic        consolidation.Topic
	plan         *consolidation.Plan
	templateName string
	template     []byte
	opts         Options

	mu           sync.Mutex
	book         *excel.Workbook
	final        *excel.Worksheet
	intermediate *excel.Worksheet
	subsidiaries []*source
	branches     []*source
	createdAt    time.Time
	updatedAt    time.Time
	lastRun      *RunOutcome
	closed       bool
}

// source 一个已加载的上传文件，只使用其第一张表
type source struct {
	label    string
	fileName string
	book     *excel.Workbook
	sheet    *excel.Worksheet
}

// Name 以来源标签命名，错误信息据此指出具体文件
func (s *source) Name() string { return s.label }

func (s *source) Cell(c excel.Coordinate) (excel.Cell, bool, error) { return s.sheet.Cell(c) }

func (s *source) SetNumber(c excel.Coordinate, v float64) error { return s.sheet.SetNumber(c, v) }

func (s *source) Master(c excel.Coordinate) excel.Coordinate { return s.sheet.Master(c) }

func (s *source) summary(key string) SourceSummary {
	return SourceSummary{Key: key, Label: s.label, FileName: s.fileName, Sheet: s.sheet.Name()}
}

// New 用模板原始字节创建工作区。模板无法解析或缺少约定的表时返回 *excel.TemplateLoadError。
func New(id string, topic consolidation.Topic, templateName string, template []byte, opts Options) (*Workspace, error) {
	plan, err := consolidation.PlanFor(topic)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	w := &Workspace{
		id:           id,
		topic:        topic,
		plan:         plan,
		templateName: templateName,
		template:     template,
		opts:         opts,
		createdAt:    now,
		updatedAt:    now,
	}
	if err := w.loadTemplateLocked(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workspace) loadTemplateLocked() error {
	book, err := excel.LoadWorkbookBytes(w.template)
	if err != nil {
		return &excel.TemplateLoadError{Name: w.templateName, Err: err}
	}
	info := w.topic.Info()
	final, err := book.Sheet(info.FinalIndex)
	if err != nil {
		_ = book.Close()
		return &excel.TemplateLoadError{Name: w.templateName, Err: fmt.Errorf("missing final sheet: %w", err)}
	}
	intermediate, err := book.Sheet(info.IntermediateIndex)
	if err != nil {
		_ = book.Close()
		return &excel.TemplateLoadError{Name: w.templateName, Err: fmt.Errorf("missing intermediate sheet: %w", err)}
	}

	if w.book != nil {
		_ = w.book.Close()
	}
	w.book = book
	w.final = final
	w.intermediate = intermediate
	return nil
}

// ID 工作区 ID
func (w *Workspace) ID() string { return w.id }

// Topic 工作区专题
func (w *Workspace) Topic() consolidation.Topic { return w.topic }

// Reload 从原始字节重新加载模板，丢弃此前写入目标表的结果。已上传的来源保留。
func (w *Workspace) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkspaceClosed
	}
	if err := w.loadTemplateLocked(); err != nil {
		return err
	}
	w.lastRun = nil
	w.updatedAt = time.Now().UTC()
	return nil
}

// AddSubsidiaries 追加子公司文件
func (w *Workspace) AddSubsidiaries(uploads []Upload) UploadResult {
	return w.addSources(KindSubsidiary, uploads)
}

// AddBranches 追加分公司文件
func (w *Workspace) AddBranches(uploads []Upload) UploadResult {
	return w.addSources(KindBranch, uploads)
}

func (w *Workspace) addSources(kind SourceKind, uploads []Upload) UploadResult {
	// 解析不需要持有工作区锁
	loaded := loadSources(uploads)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return rejectAll(loaded)
	}

	list := &w.subsidiaries
	if kind == KindBranch {
		list = &w.branches
	}

	res := UploadResult{Added: []SourceSummary{}, Failed: []UploadFailure{}}
	for _, l := range loaded {
		if l.err != nil {
			res.Failed = append(res.Failed, UploadFailure{FileName: l.fileName, Error: l.err.Error()})
			res.errs = append(res.errs, l.err)
			continue
		}
		n := len(*list) + 1
		src := &source{
			label:    fmt.Sprintf("%s %d", kind.Label(), n),
			fileName: l.fileName,
			book:     l.book,
			sheet:    l.sheet,
		}
		*list = append(*list, src)
		res.Added = append(res.Added, src.summary(sourceKey(kind, n)))
	}
	if len(res.Added) > 0 {
		w.updatedAt = time.Now().UTC()
	}
	return res
}

// Consolidate 按专题流程执行一轮合并。同一工作区的多次触发依次执行。
func (w *Workspace) Consolidate() (RunOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return RunOutcome{}, ErrWorkspaceClosed
	}
	started := time.Now()
	res, err := w.plan.Run(
		consolidation.Targets{Final: w.final, Intermediate: w.intermediate},
		asSheets(w.subsidiaries),
		asSheets(w.branches),
		consolidation.RunOptions{Atomic: w.opts.Atomic},
	)
	outcome := RunOutcome{
		Result:    res,
		Status:    RunStatusSuccess,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Atomic:    w.opts.Atomic,
	}
	if err != nil {
		outcome.Status = RunStatusFailed
		outcome.Error = err.Error()
	}
	w.lastRun = &outcome
	w.updatedAt = time.Now().UTC()
	return outcome, err
}

// Save 序列化模板工作簿（含合并结果）
func (w *Workspace) Save() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWorkspaceClosed
	}
	return w.book.Save()
}

// FileName 下载文件名：<专题名>.xlsx
func (w *Workspace) FileName() string {
	return w.topic.Name() + ".xlsx"
}

// Preview 按 key 渲染一张表：final、intermediate、subsidiary-N、branch-N（N 从 1 开始）
func (w *Workspace) Preview(key string) (excel.Grid, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return excel.Grid{}, ErrWorkspaceClosed
	}
	ws, err := w.sheetLocked(key)
	if err != nil {
		return excel.Grid{}, err
	}
	return ws.Preview()
}

func (w *Workspace) sheetLocked(key string) (*excel.Worksheet, error) {
	switch key {
	case "final":
		return w.final, nil
	case "intermediate":
		return w.intermediate, nil
	}
	kind, n, ok := parseSourceKey(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, key)
	}
	list := w.subsidiaries
	if kind == KindBranch {
		list = w.branches
	}
	if n < 1 || n > len(list) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, key)
	}
	return list[n-1].sheet, nil
}

// UpdatedAt 最近一次修改时间
func (w *Workspace) UpdatedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updatedAt
}

// Summary 工作区概要。关闭后仍可读取，来源列表为空。
func (w *Workspace) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	info := w.topic.Info()
	s := Summary{
		ID:                w.id,
		Topic:             string(w.topic),
		TopicName:         info.Name,
		FinalSheet:        w.final.Name(),
		IntermediateSheet: w.intermediate.Name(),
		Subsidiaries:      summarize(KindSubsidiary, w.subsidiaries),
		Branches:          summarize(KindBranch, w.branches),
		Atomic:            w.opts.Atomic,
		CreatedAt:         w.createdAt,
		UpdatedAt:         w.updatedAt,
	}
	if w.lastRun != nil {
		run := *w.lastRun
		s.LastRun = &run
	}
	return s
}

// Close 释放模板与全部来源工作簿。之后的修改、合并、保存和预览都返回 ErrWorkspaceClosed。
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if w.book != nil {
		errs = append(errs, w.book.Close())
		w.book = nil
	}
	for _, src := range append(w.subsidiaries, w.branches...) {
		errs = append(errs, src.book.Close())
	}
	w.subsidiaries = nil
	w.branches = nil
	return errors.Join(errs...)
}

// rejectAll 工作区已关闭时丢弃本批已解析的文件，逐个报告失败
func rejectAll(loaded []loadedSource) UploadResult {
	res := UploadResult{Added: []SourceSummary{}, Failed: []UploadFailure{}}
	for _, l := range loaded {
		err := l.err
		if err == nil {
			_ = l.book.Close()
			err = ErrWorkspaceClosed
		}
		res.Failed = append(res.Failed, UploadFailure{FileName: l.fileName, Error: err.Error()})
		res.errs = append(res.errs, err)
	}
	return res
}

func sourceKey(kind SourceKind, n int) string {
	return fmt.Sprintf("%s-%d", kind, n)
}

func parseSourceKey(key string) (SourceKind, int, bool) {
	prefix, num, ok := strings.Cut(key, "-")
	if !ok {
		return "", 0, false
	}
	kind := SourceKind(prefix)
	if kind != KindSubsidiary && kind != KindBranch {
		return "", 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", 0, false
	}
	return kind, n, true
}

func summarize(kind SourceKind, list []*source) []SourceSummary {
	out := make([]SourceSummary, 0, len(list))
	for i, src := range list {
		out = append(out, src.summary(sourceKey(kind, i+1)))
	}
	return out
}

func asSheets(list []*source) []consolidation.Sheet {
	out := make([]consolidation.Sheet, 0, len(list))
	for _, src := range list {
		out = append(out, src)
	}
	return out
}
