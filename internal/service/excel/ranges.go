package excel

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// 单元格地址：列为大写字母，行为正整数；区域为两个地址以冒号连接
var rangePattern = regexp.MustCompile(`^([A-Z]+)([1-9][0-9]*)(?::([A-Z]+)([1-9][0-9]*))?$`)

// Coordinate 单元格坐标（行列均从 1 开始）
type Coordinate struct {
	Col int
	Row int
}

// String 返回 A1 形式的地址
func (c Coordinate) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row, c.Col)
	}
	return name
}

// MalformedRangeError 区域表达式不合法（属于静态区域表的缺陷，用户无法修复）
type MalformedRangeError struct {
	Range  string
	Reason string
}

func (e *MalformedRangeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid range: %q", e.Range)
	}
	return fmt.Sprintf("invalid range: %q (%s)", e.Range, e.Reason)
}

// ParseCoordinate 解析单个地址，如 "B41"
func ParseCoordinate(s string) (Coordinate, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil || m[3] != "" {
		return Coordinate{}, &MalformedRangeError{Range: s}
	}
	return coordinateFromParts(s, m[1], m[2])
}

// ExpandRange 将 "B5:C21" 或 "B41" 展开为坐标序列。
// 区域按列优先排列：先取左侧列的全部行，再取下一列。
func ExpandRange(s string) ([]Coordinate, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, &MalformedRangeError{Range: s}
	}

	topLeft, err := coordinateFromParts(s, m[1], m[2])
	if err != nil {
		return nil, err
	}
	if m[3] == "" {
		return []Coordinate{topLeft}, nil
	}

	bottomRight, err := coordinateFromParts(s, m[3], m[4])
	if err != nil {
		return nil, err
	}
	if bottomRight.Col < topLeft.Col || bottomRight.Row < topLeft.Row {
		return nil, &MalformedRangeError{Range: s, Reason: "corners out of order"}
	}

	out := make([]Coordinate, 0, (bottomRight.Col-topLeft.Col+1)*(bottomRight.Row-topLeft.Row+1))
	for col := topLeft.Col; col <= bottomRight.Col; col++ {
		for row := topLeft.Row; row <= bottomRight.Row; row++ {
			out = append(out, Coordinate{Col: col, Row: row})
		}
	}
	return out, nil
}

// ExpandRanges 依次展开多个区域并拼接结果，重叠部分保留重复坐标
func ExpandRanges(ranges []string) ([]Coordinate, error) {
	var out []Coordinate
	for _, r := range ranges {
		coords, err := ExpandRange(r)
		if err != nil {
			return nil, err
		}
		out = append(out, coords...)
	}
	return out, nil
}

func coordinateFromParts(source, colName, rowText string) (Coordinate, error) {
	col, err := ColumnNameToIndex(colName)
	if err != nil {
		return Coordinate{}, &MalformedRangeError{Range: source, Reason: err.Error()}
	}
	row, err := strconv.Atoi(rowText)
	if err != nil || row < 1 || row > excelize.TotalRows {
		return Coordinate{}, &MalformedRangeError{Range: source, Reason: "row out of range"}
	}
	return Coordinate{Col: col, Row: row}, nil
}
