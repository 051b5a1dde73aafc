package excel

import "fmt"

// TemplateLoadError 模板缺失、无法解析或缺少约定的工作表。整个专题工作区不可用，需要重新加载。
type TemplateLoadError struct {
	Name string
	Err  error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Name, e.Err)
}

func (e *TemplateLoadError) Unwrap() error {
	return e.Err
}

// SourceFileFormatError 上传的文件不是有效工作簿。仅放弃该文件，同批次其他文件不受影响。
type SourceFileFormatError struct {
	FileName string
	Err      error
}

func (e *SourceFileFormatError) Error() string {
	return fmt.Sprintf("source file %q: %v", e.FileName, e.Err)
}

func (e *SourceFileFormatError) Unwrap() error {
	return e.Err
}
