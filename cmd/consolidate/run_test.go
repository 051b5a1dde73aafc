package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

var cashFlowRanges = []string{"B6:C8", "B10:C13", "B17:C21", "B23:C26", "B30:C32", "B34:C36", "B41"}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeSource(t *testing.T, dir, name string, ranges []string, v interface{}) string {
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
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func TestRunConsolidateCashFlow(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	if _, err := writeSkeleton("cashflow", templates, excel.DefaultYearPrefix); err != nil {
		t.Fatalf("writeSkeleton failed: %v", err)
	}

	out := filepath.Join(dir, "out.xlsx")
	path, outcome, err := runConsolidate(runOptions{
		topic:        "合并现金流量表",
		templatesDir: templates,
		yearPrefix:   excel.DefaultYearPrefix,
		branches:     []string{writeSource(t, dir, "b1.xlsx", cashFlowRanges, 1.5)},
		subsidiaries: []string{
			writeSource(t, dir, "s1.xlsx", cashFlowRanges, 2),
			writeSource(t, dir, "s2.xlsx", cashFlowRanges, 3),
		},
		output: out,
	}, quietLogger())
	if err != nil {
		t.Fatalf("runConsolidate failed: %v", err)
	}
	if path != out || outcome.StagesRun != 2 || outcome.CellsWritten != 90 {
		t.Fatalf("path=%s outcome=%+v", path, outcome)
	}

	wb, err := excel.OpenWorkbook(out)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer func() { _ = wb.Close() }()

	final, _ := wb.Sheet(0)
	cell, ok, err := final.Cell(excel.Coordinate{Col: 2, Row: 41})
	if err != nil || !ok {
		t.Fatalf("B41 missing: %v", err)
	}
	if n, _ := cell.Value.Numeric(); n != 6.5 {
		t.Fatalf("final B41=%v, want 6.5", n)
	}
	intermediate, _ := wb.Sheet(7)
	if intermediate.Name() != "合并分公司现金流量表" {
		t.Fatalf("sheet 7=%s", intermediate.Name())
	}
}

func TestRunConsolidateRejectsBadInputs(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	if _, err := writeSkeleton("income", templates, excel.DefaultYearPrefix); err != nil {
		t.Fatalf("writeSkeleton failed: %v", err)
	}
	bad := filepath.Join(dir, "bad.xlsx")
	if err := os.WriteFile(bad, []byte("garbage"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, _, err := runConsolidate(runOptions{
		topic:        "income",
		templatesDir: templates,
		yearPrefix:   excel.DefaultYearPrefix,
		subsidiaries: []string{bad},
		output:       filepath.Join(dir, "out.xlsx"),
	}, quietLogger())
	var sfe *excel.SourceFileFormatError
	if !errors.As(err, &sfe) || sfe.FileName != "bad.xlsx" {
		t.Fatalf("err=%v, want SourceFileFormatError", err)
	}

	_, _, err = runConsolidate(runOptions{
		topic:        "balance",
		templatesDir: templates,
		yearPrefix:   excel.DefaultYearPrefix,
	}, quietLogger())
	var tle *excel.TemplateLoadError
	if !errors.As(err, &tle) {
		t.Fatalf("err=%v, want TemplateLoadError", err)
	}

	// 文本单元格：原子模式下不写出文件
	out := filepath.Join(dir, "atomic.xlsx")
	_, _, err = runConsolidate(runOptions{
		topic:        "income",
		templatesDir: templates,
		yearPrefix:   excel.DefaultYearPrefix,
		subsidiaries: []string{writeSource(t, dir, "text.xlsx", []string{"B5:C33"}, "n/a")},
		output:       out,
		atomic:       true,
	}, quietLogger())
	var nce *consolidation.NonNumericCellError
	if !errors.As(err, &nce) {
		t.Fatalf("err=%v, want NonNumericCellError", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output should not exist, stat err=%v", statErr)
	}
}
