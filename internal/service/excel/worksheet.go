package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Worksheet 工作簿中的一张表。合并单元格的从属格映射在加载时建立一次。
type Worksheet struct {
	file    *excelize.File
	name    string
	index   int
	masters map[Coordinate]Coordinate
}

func newWorksheet(file *excelize.File, name string, index int) (*Worksheet, error) {
	ws := &Worksheet{
		file:    file,
		name:    name,
		index:   index,
		masters: make(map[Coordinate]Coordinate),
	}

	merges, err := file.GetMergeCells(name)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 合并单元格失败: %w", name, err)
	}
	for _, mc := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		master := Coordinate{Col: startCol, Row: startRow}
		for col := startCol; col <= endCol; col++ {
			for row := startRow; row <= endRow; row++ {
				c := Coordinate{Col: col, Row: row}
				if c != master {
					ws.masters[c] = master
				}
			}
		}
	}

	return ws, nil
}

// Name 表名
func (ws *Worksheet) Name() string {
	return ws.name
}

// Index 在工作簿中的序号（从 0 开始）
func (ws *Worksheet) Index() int {
	return ws.index
}

// Master 返回坐标所在合并区域的主格；非从属格返回自身
func (ws *Worksheet) Master(c Coordinate) Coordinate {
	if m, ok := ws.masters[c]; ok {
		return m
	}
	return c
}

// Cell 读取单元格。坐标从未写入过时 ok 为 false（视为“无值”，不是 0）。
// 从属格透明地读取主格的值。
func (ws *Worksheet) Cell(c Coordinate) (Cell, bool, error) {
	master := ws.Master(c)
	value, ok, err := ws.readValue(master.String())
	if err != nil {
		return Cell{}, false, fmt.Errorf("读取 %s!%s 失败: %w", ws.name, c, err)
	}
	if !ok {
		return Cell{}, false, nil
	}
	return Cell{Address: c, Master: master, Value: value}, true, nil
}

// SetNumber 写入数值并清除该格原有公式
func (ws *Worksheet) SetNumber(c Coordinate, v float64) error {
	addr := c.String()
	if err := ws.file.SetCellFloat(ws.name, addr, v, -1, 64); err != nil {
		return err
	}
	return ws.file.SetCellFormula(ws.name, addr, "")
}

func (ws *Worksheet) readValue(addr string) (Value, bool, error) {
	formula, err := ws.file.GetCellFormula(ws.name, addr)
	if err != nil {
		return Value{}, false, err
	}
	cellType, err := ws.file.GetCellType(ws.name, addr)
	if err != nil {
		return Value{}, false, err
	}
	raw, err := ws.file.GetCellValue(ws.name, addr, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, false, err
	}

	literal := classifyLiteral(cellType, raw)
	if strings.TrimSpace(formula) != "" {
		return FormulaValue(formula, literal), true, nil
	}
	if literal.Kind() == KindEmpty {
		// excelize 不区分“仅有样式的空格”和“不存在的格”，两者都按无值处理
		return Value{}, false, nil
	}
	return literal, true, nil
}

func classifyLiteral(cellType excelize.CellType, raw string) Value {
	switch cellType {
	case excelize.CellTypeError:
		return ErrorValue(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		if raw == "" {
			return EmptyValue()
		}
		return TextValue(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "TRUE") {
			return TextValue("TRUE")
		}
		return TextValue("FALSE")
	case excelize.CellTypeDate:
		return TextValue(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if raw == "" {
			return EmptyValue()
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TextValue(raw)
		}
		return NumberValue(n)
	}
	return TextValue(raw)
}
