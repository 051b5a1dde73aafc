package workspace

import (
	"time"

	"github.com/artificielle/consolidations/internal/service/consolidation"
)

// SourceKind 上传来源类别
type SourceKind string

const (
	KindSubsidiary SourceKind = "subsidiary"
	KindBranch     SourceKind = "branch"
)

// Label 来源标签前缀，与页签名一致
func (k SourceKind) Label() string {
	if k == KindBranch {
		return "分公司"
	}
	return "子公司"
}

// Upload 一个待加载的上传文件
type Upload struct {
	FileName string
	Data     []byte
}

// SourceSummary 已加载来源的概要
type SourceSummary struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	FileName string `json:"fileName"`
	Sheet    string `json:"sheet"`
}

// UploadFailure 单个文件加载失败
type UploadFailure struct {
	FileName string `json:"fileName"`
	Code     int    `json:"code,omitempty"`
	Error    string `json:"error"`
}

// UploadResult 一批上传的结果：成功的按文件顺序追加，失败的逐个列出
type UploadResult struct {
	Added  []SourceSummary `json:"added"`
	Failed []UploadFailure `json:"failed"`

	errs []error
}

// Errors 失败文件对应的原始错误（*excel.SourceFileFormatError，工作区已关闭时为 ErrWorkspaceClosed）
func (r UploadResult) Errors() []error {
	return r.errs
}

// RunOutcome 最近一次合并的结果
type RunOutcome struct {
	consolidation.Result
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Atomic    bool          `json:"atomic"`
}

const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Summary 工作区概要（/api/workspaces/:id）
type Summary struct {
	ID                string          `json:"id"`
	Topic             string          `json:"topic"`
	TopicName         string          `json:"topicName"`
	FinalSheet        string          `json:"finalSheet"`
	IntermediateSheet string          `json:"intermediateSheet"`
	Subsidiaries      []SourceSummary `json:"subsidiaries"`
	Branches          []SourceSummary `json:"branches"`
	Atomic            bool            `json:"atomic"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	LastRun           *RunOutcome     `json:"lastRun,omitempty"`
}
