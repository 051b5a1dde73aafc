package consolidation_test

import (
	"errors"
	"testing"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

func TestConsolidateIntoSumsAndOverwritesFormula(t *testing.T) {
	f, ws := newBook(t, "合并", "子公司1", "子公司2")
	target, a, b := ws[0], ws[1], ws[2]

	if err := f.SetCellFormula("合并", "B5", "B6+B7"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}
	fill(t, a, []string{"B5"}, 10)
	fill(t, b, []string{"B5"}, 20)

	if err := consolidation.ConsolidateInto(target, sheets(a, b), []string{"B5"}); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}

	if got := numberAt(t, target, "B5"); got != 30 {
		t.Fatalf("B5=%v, want 30", got)
	}
	formula, _ := f.GetCellFormula("合并", "B5")
	if formula != "" {
		t.Fatalf("formula=%q, want removed", formula)
	}
}

func TestConsolidateIntoEmptySourcesLeavesTargetUntouched(t *testing.T) {
	f, ws := newBook(t, "合并")
	target := ws[0]

	fill(t, target, []string{"B5:C10"}, 7)
	if err := f.SetCellFormula("合并", "C11", "SUM(C5:C10)"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}
	ranges := []string{"B5:C21"}
	before := snapshot(t, f, "合并", ranges)

	if err := consolidation.ConsolidateInto(target, nil, ranges); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}
	assertSameSnapshot(t, before, snapshot(t, f, "合并", ranges))

	// 区域表本身有误时，空来源同样不触碰目标
	if err := consolidation.ConsolidateInto(target, []consolidation.Sheet{}, []string{"bad"}); err != nil {
		t.Fatalf("empty sources should skip before expanding ranges, got %v", err)
	}

	// 不发生任何写入
	mem := newMemSheet("合并")
	mem.put(t, "B5", excel.NumberValue(7))
	if err := consolidation.ConsolidateInto(mem, nil, ranges); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}
	if mem.writes != 0 {
		t.Fatalf("writes=%d, want 0", mem.writes)
	}
}

func TestConsolidateIntoTextCellAbortsPass(t *testing.T) {
	f, ws := newBook(t, "合并", "分公司1", "分公司2")
	target, a, b := ws[0], ws[1], ws[2]

	fill(t, a, []string{"B5:B7"}, 1)
	fill(t, b, []string{"B5", "B7"}, 2)
	if err := f.SetCellValue("分公司2", "B6", "n/a"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	fill(t, target, []string{"B5:B7"}, -1)

	err := consolidation.ConsolidateInto(target, sheets(a, b), []string{"B5:B7"})
	var nce *consolidation.NonNumericCellError
	if !errors.As(err, &nce) {
		t.Fatalf("err=%v, want NonNumericCellError", err)
	}
	if nce.Sheet != "分公司2" || nce.Address != "B6" {
		t.Fatalf("error names %s %s, want 分公司2 B6", nce.Sheet, nce.Address)
	}
	if nce.Kind != excel.KindText || nce.Absent {
		t.Fatalf("kind=%s absent=%v", nce.Kind, nce.Absent)
	}

	// 失败前的 B5 已写入，B6 及之后保持原值
	if got := numberAt(t, target, "B5"); got != 3 {
		t.Fatalf("B5=%v, want 3", got)
	}
	if got := numberAt(t, target, "B6"); got != -1 {
		t.Fatalf("B6=%v, want untouched -1", got)
	}
	if got := numberAt(t, target, "B7"); got != -1 {
		t.Fatalf("B7=%v, want untouched -1", got)
	}
}

func TestConsolidateIntoAbsentCellIsError(t *testing.T) {
	_, ws := newBook(t, "合并", "子公司1")
	target, a := ws[0], ws[1]

	err := consolidation.ConsolidateInto(target, sheets(a), []string{"C9"})
	var nce *consolidation.NonNumericCellError
	if !errors.As(err, &nce) {
		t.Fatalf("err=%v, want NonNumericCellError", err)
	}
	if !nce.Absent || nce.Address != "C9" || nce.Sheet != "子公司1" {
		t.Fatalf("unexpected error: %+v", nce)
	}
}

func TestConsolidateIntoUsesFormulaCachedResult(t *testing.T) {
	target := newMemSheet("合并")
	a := newMemSheet("子公司1")
	b := newMemSheet("子公司2")
	a.put(t, "B5", excel.FormulaValue("B6+B7", excel.NumberValue(4.5)))
	b.put(t, "B5", excel.NumberValue(5.5))

	if err := consolidation.ConsolidateInto(target, []consolidation.Sheet{a, b}, []string{"B5"}); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}
	cell, ok, _ := target.Cell(excel.Coordinate{Col: 2, Row: 5})
	if n, _ := cell.Value.Numeric(); !ok || n != 10 {
		t.Fatalf("B5=%v, want 10", n)
	}

	b.put(t, "B5", excel.FormulaValue("1/0", excel.ErrorValue("#DIV/0!")))
	err := consolidation.ConsolidateInto(target, []consolidation.Sheet{a, b}, []string{"B5"})
	var nce *consolidation.NonNumericCellError
	if !errors.As(err, &nce) || nce.Kind != excel.KindFormula {
		t.Fatalf("err=%v, want NonNumericCellError for formula error", err)
	}

	b.put(t, "B5", excel.ErrorValue("#REF!"))
	err = consolidation.ConsolidateInto(target, []consolidation.Sheet{a, b}, []string{"B5"})
	if !errors.As(err, &nce) || nce.Kind != excel.KindError {
		t.Fatalf("err=%v, want NonNumericCellError for error value", err)
	}
}

func TestConsolidateIntoDecimalSum(t *testing.T) {
	target := newMemSheet("合并")
	a := newMemSheet("子公司1")
	b := newMemSheet("子公司2")
	a.put(t, "C5", excel.NumberValue(0.1))
	b.put(t, "C5", excel.NumberValue(0.2))

	if err := consolidation.ConsolidateInto(target, []consolidation.Sheet{a, b}, []string{"C5"}); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}
	cell, _, _ := target.Cell(excel.Coordinate{Col: 3, Row: 5})
	if n, _ := cell.Value.Numeric(); n != 0.3 {
		t.Fatalf("C5=%v, want 0.3", n)
	}
}

func TestConsolidateIntoMalformedRangeWritesNothing(t *testing.T) {
	f, ws := newBook(t, "合并", "子公司1")
	target, a := ws[0], ws[1]
	fill(t, a, []string{"B5:B6"}, 1)
	before := snapshot(t, f, "合并", []string{"B5:B6"})

	err := consolidation.ConsolidateInto(target, sheets(a), []string{"B5:B6", "ZZ1:A1"})
	var mre *excel.MalformedRangeError
	if !errors.As(err, &mre) || mre.Range != "ZZ1:A1" {
		t.Fatalf("err=%v, want MalformedRangeError", err)
	}
	assertSameSnapshot(t, before, snapshot(t, f, "合并", []string{"B5:B6"}))
}

func TestConsolidateIntoMergeFollowerReadsMaster(t *testing.T) {
	f, _ := newBook(t, "合并", "子公司1")
	if err := f.SetCellValue("子公司1", "B5", 8); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := f.MergeCell("子公司1", "B5", "C5"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	// 合并区域需在加载时建立映射，因此重新包装
	wb, err := excel.NewWorkbook(f)
	if err != nil {
		t.Fatalf("NewWorkbook failed: %v", err)
	}
	target, src := wb.Sheets()[0], wb.Sheets()[1]

	if err := consolidation.ConsolidateInto(target, sheets(src), []string{"C5"}); err != nil {
		t.Fatalf("ConsolidateInto failed: %v", err)
	}
	if got := numberAt(t, target, "C5"); got != 8 {
		t.Fatalf("C5=%v, want 8", got)
	}
}
