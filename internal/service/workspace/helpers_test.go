package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
	"github.com/artificielle/consolidations/internal/service/workspace"
)

func skeleton(t *testing.T, topic consolidation.Topic) []byte {
	t.Helper()
	data, err := workspace.SkeletonTemplate(topic)
	if err != nil {
		t.Fatalf("SkeletonTemplate failed: %v", err)
	}
	return data
}

// writeTemplate 在目录中按命名约定写入专题模板
func writeTemplate(t *testing.T, dir string, topic consolidation.Topic) {
	t.Helper()
	path := filepath.Join(dir, excel.TemplateFileName(excel.DefaultYearPrefix, topic.Name()))
	if err := os.WriteFile(path, skeleton(t, topic), 0644); err != nil {
		t.Fatalf("write template failed: %v", err)
	}
}

// sourceFile 生成单表工作簿，区域内全部填 v，overrides 覆盖个别单元格
func sourceFile(t *testing.T, name string, ranges []string, v float64, overrides map[string]interface{}) workspace.Upload {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	coords, err := excel.ExpandRanges(ranges)
	if err != nil {
		t.Fatalf("ExpandRanges failed: %v", err)
	}
	for _, c := range coords {
		if err := f.SetCellValue("Sheet1", c.String(), v); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
	}
	for addr, val := range overrides {
		if err := f.SetCellValue("Sheet1", addr, val); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return workspace.Upload{FileName: name, Data: buf.Bytes()}
}

func numberIn(t *testing.T, data []byte, sheetIndex int, addr string) float64 {
	t.Helper()
	wb, err := excel.LoadWorkbookBytes(data)
	if err != nil {
		t.Fatalf("LoadWorkbookBytes failed: %v", err)
	}
	defer func() { _ = wb.Close() }()

	ws, err := wb.Sheet(sheetIndex)
	if err != nil {
		t.Fatalf("Sheet(%d) failed: %v", sheetIndex, err)
	}
	c, err := excel.ParseCoordinate(addr)
	if err != nil {
		t.Fatalf("ParseCoordinate failed: %v", err)
	}
	cell, ok, err := ws.Cell(c)
	if err != nil || !ok {
		t.Fatalf("%s!%s missing: ok=%v err=%v", ws.Name(), addr, ok, err)
	}
	n, isNum := cell.Value.Numeric()
	if !isNum {
		t.Fatalf("%s!%s is %s", ws.Name(), addr, cell.Value.Kind())
	}
	return n
}

var (
	balanceRanges = []string{
		"B6:B10", "B11:B20", "B23:B30", "B31:B40",
		"E6:E10", "E11:E20", "E23:E30", "E31:E40", "E41:E47",
	}
	incomeRanges = []string{"B5:C21", "B23:C24", "B26:C26", "B28:C33"}
)
