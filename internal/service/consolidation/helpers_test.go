package consolidation_test

import (
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

// newBook 创建包含给定表名的工作簿，返回各表
func newBook(t *testing.T, names ...string) (*excelize.File, []*excel.Worksheet) {
	t.Helper()

	f, err := excel.NewSkeletonWorkbook(names)
	if err != nil {
		t.Fatalf("NewSkeletonWorkbook failed: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	wb, err := excel.NewWorkbook(f)
	if err != nil {
		t.Fatalf("NewWorkbook failed: %v", err)
	}
	return f, wb.Sheets()
}

func fill(t *testing.T, ws *excel.Worksheet, ranges []string, v float64) {
	t.Helper()
	coords, err := excel.ExpandRanges(ranges)
	if err != nil {
		t.Fatalf("ExpandRanges failed: %v", err)
	}
	for _, c := range coords {
		if err := ws.SetNumber(c, v); err != nil {
			t.Fatalf("SetNumber %s failed: %v", c, err)
		}
	}
}

func numberAt(t *testing.T, ws *excel.Worksheet, addr string) float64 {
	t.Helper()
	c, err := excel.ParseCoordinate(addr)
	if err != nil {
		t.Fatalf("ParseCoordinate failed: %v", err)
	}
	cell, ok, err := ws.Cell(c)
	if err != nil {
		t.Fatalf("Cell(%s) failed: %v", addr, err)
	}
	if !ok {
		t.Fatalf("%s!%s is absent", ws.Name(), addr)
	}
	n, isNum := cell.Value.Numeric()
	if !isNum {
		t.Fatalf("%s!%s kind=%s, want number", ws.Name(), addr, cell.Value.Kind())
	}
	return n
}

// snapshot 记录区域内每格的原始值与公式
func snapshot(t *testing.T, f *excelize.File, sheet string, ranges []string) map[string]string {
	t.Helper()
	coords, err := excel.ExpandRanges(ranges)
	if err != nil {
		t.Fatalf("ExpandRanges failed: %v", err)
	}
	out := make(map[string]string, len(coords))
	for _, c := range coords {
		addr := c.String()
		v, err := f.GetCellValue(sheet, addr, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("GetCellValue failed: %v", err)
		}
		formula, err := f.GetCellFormula(sheet, addr)
		if err != nil {
			t.Fatalf("GetCellFormula failed: %v", err)
		}
		out[addr] = fmt.Sprintf("%s|%s", v, formula)
	}
	return out
}

func assertSameSnapshot(t *testing.T, before, after map[string]string) {
	t.Helper()
	if len(before) != len(after) {
		t.Fatalf("snapshot size changed: %d -> %d", len(before), len(after))
	}
	for addr, v := range before {
		if after[addr] != v {
			t.Fatalf("%s changed: %q -> %q", addr, v, after[addr])
		}
	}
}

func sheets(ws ...*excel.Worksheet) []consolidation.Sheet {
	out := make([]consolidation.Sheet, 0, len(ws))
	for _, w := range ws {
		out = append(out, w)
	}
	return out
}

// memSheet 内存表，用于构造带缓存结果的公式等 excelize 难以直接写出的单元格
type memSheet struct {
	name   string
	values map[excel.Coordinate]excel.Value
	writes int
}

func newMemSheet(name string) *memSheet {
	return &memSheet{name: name, values: make(map[excel.Coordinate]excel.Value)}
}

func (m *memSheet) put(t *testing.T, addr string, v excel.Value) {
	t.Helper()
	c, err := excel.ParseCoordinate(addr)
	if err != nil {
		t.Fatalf("ParseCoordinate failed: %v", err)
	}
	m.values[c] = v
}

func (m *memSheet) Name() string { return m.name }

func (m *memSheet) Cell(c excel.Coordinate) (excel.Cell, bool, error) {
	v, ok := m.values[c]
	if !ok {
		return excel.Cell{}, false, nil
	}
	return excel.Cell{Address: c, Master: c, Value: v}, true, nil
}

func (m *memSheet) SetNumber(c excel.Coordinate, v float64) error {
	m.values[c] = excel.NumberValue(v)
	m.writes++
	return nil
}

func (m *memSheet) Master(c excel.Coordinate) excel.Coordinate { return c }
