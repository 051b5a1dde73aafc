package api

import (
	"errors"
	"fmt"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
	"github.com/artificielle/consolidations/internal/service/workspace"
)

// 错误码
const (
	CodeBadRequest      = 1001
	CodeSourceFormat    = 1002
	CodeFileTooLarge    = 1003
	CodeWorkspaceAbsent = 2001
	CodeSheetAbsent     = 2002
	CodeExportExpired   = 2003
	CodeTemplateLoad    = 3001
	CodeMalformedRange  = 3002
	CodeNonNumericCell  = 3003
	CodeInternal        = 5001
)

func describeError(err error) (int, string) {
	var (
		tle *excel.TemplateLoadError
		sfe *excel.SourceFileFormatError
		mre *excel.MalformedRangeError
		nce *consolidation.NonNumericCellError
	)
	switch {
	case errors.As(err, &nce):
		if nce.Absent {
			return CodeNonNumericCell, fmt.Sprintf("%s 的 %s 单元格无值，合并已中止", nce.Sheet, nce.Address)
		}
		return CodeNonNumericCell, fmt.Sprintf("%s 的 %s 单元格不是数值，合并已中止", nce.Sheet, nce.Address)
	case errors.As(err, &tle):
		return CodeTemplateLoad, fmt.Sprintf("模板 %s 加载失败，请重新加载", tle.Name)
	case errors.As(err, &sfe):
		return CodeSourceFormat, fmt.Sprintf("%s 不是有效的 Excel 工作簿", sfe.FileName)
	case errors.As(err, &mre):
		return CodeMalformedRange, fmt.Sprintf("区域定义错误: %s", mre.Range)
	case errors.Is(err, workspace.ErrWorkspaceNotFound):
		return CodeWorkspaceAbsent, "工作区不存在或已过期"
	case errors.Is(err, workspace.ErrSheetNotFound):
		return CodeSheetAbsent, "工作表不存在"
	default:
		return CodeInternal, err.Error()
	}
}
