package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DefaultYearPrefix 模板文件名的年份前缀
const DefaultYearPrefix = "20XX"

// TemplateFileName 模板文件命名约定：<年份前缀><专题名>（模板）.xlsx
func TemplateFileName(yearPrefix, topicName string) string {
	return yearPrefix + topicName + "（模板）.xlsx"
}

// ReadTemplate 从模板目录读取专题模板的原始字节
func ReadTemplate(dir, yearPrefix, topicName string) ([]byte, error) {
	name := TemplateFileName(yearPrefix, topicName)
	if dir == "" {
		return nil, &TemplateLoadError{Name: name, Err: errors.New("template dir is empty")}
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateLoadError{Name: name, Err: fmt.Errorf("template not found: %w", err)}
	}
	return data, nil
}

// NewSkeletonWorkbook 按给定表名创建一个无样式的工作簿骨架
func NewSkeletonWorkbook(sheetNames []string) (*excelize.File, error) {
	if len(sheetNames) == 0 {
		return nil, errors.New("no sheet names")
	}
	wb := excelize.NewFile()
	if err := wb.SetSheetName("Sheet1", sheetNames[0]); err != nil {
		return nil, err
	}
	for _, name := range sheetNames[1:] {
		if _, err := wb.NewSheet(name); err != nil {
			return nil, err
		}
	}
	wb.SetActiveSheet(0)
	return wb, nil
}
