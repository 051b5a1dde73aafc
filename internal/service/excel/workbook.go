package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook 从字节加载的工作簿。加载后表的集合不再变化，单元格值可修改。
type Workbook struct {
	file   *excelize.File
	sheets []*Worksheet
}

// LoadWorkbook 从 reader 加载工作簿
func LoadWorkbook(r io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	wb, err := NewWorkbook(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return wb, nil
}

// LoadWorkbookBytes 从字节加载工作簿
func LoadWorkbookBytes(data []byte) (*Workbook, error) {
	return LoadWorkbook(bytes.NewReader(data))
}

// OpenWorkbook 从路径打开工作簿
func OpenWorkbook(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	wb, err := NewWorkbook(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return wb, nil
}

// NewWorkbook 包装已打开的 excelize 文件，按文件顺序建立工作表
func NewWorkbook(file *excelize.File) (*Workbook, error) {
	if file == nil {
		return nil, errors.New("workbook file is nil")
	}
	names := file.GetSheetList()
	sheets := make([]*Worksheet, 0, len(names))
	for i, name := range names {
		ws, err := newWorksheet(file, name, i)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ws)
	}
	return &Workbook{file: file, sheets: sheets}, nil
}

// Sheets 全部工作表（文件顺序）
func (wb *Workbook) Sheets() []*Worksheet {
	return wb.sheets
}

// Sheet 按序号取工作表
func (wb *Workbook) Sheet(index int) (*Worksheet, error) {
	if index < 0 || index >= len(wb.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (sheets=%d)", index, len(wb.sheets))
	}
	return wb.sheets[index], nil
}

// File 底层 excelize 文件
func (wb *Workbook) File() *excelize.File {
	return wb.file
}

// Save 序列化为 xlsx 字节
func (wb *Workbook) Save() ([]byte, error) {
	buf, err := wb.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// Close 释放底层文件
func (wb *Workbook) Close() error {
	if wb == nil || wb.file == nil {
		return nil
	}
	return wb.file.Close()
}
