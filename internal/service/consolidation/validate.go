package consolidation

import (
	"fmt"

	"github.com/artificielle/consolidations/internal/service/excel"
)

// NonNumericCellError 区域内某个单元格缺失或不是数值，本次合并中止
type NonNumericCellError struct {
	Sheet   string
	Address string
	Kind    excel.ValueKind
	Absent  bool
}

func (e *NonNumericCellError) Error() string {
	if e.Absent {
		return fmt.Sprintf("%s %s: 单元格无值", e.Sheet, e.Address)
	}
	return fmt.Sprintf("%s %s: 单元格不是数值 (%s)", e.Sheet, e.Address, e.Kind)
}

// RequireNumber 断言单元格为数值（公式取缓存结果）
func RequireNumber(sheet string, at excel.Coordinate, cell excel.Cell, ok bool) (float64, error) {
	if !ok {
		return 0, &NonNumericCellError{Sheet: sheet, Address: at.String(), Absent: true}
	}
	n, isNum := cell.Value.Numeric()
	if !isNum {
		return 0, &NonNumericCellError{Sheet: sheet, Address: at.String(), Kind: cell.Value.Kind()}
	}
	return n, nil
}
