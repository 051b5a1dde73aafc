package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ColumnNameToIndex 列名转列号：A=1, Z=26, AA=27, XFD=16384。
// 只接受大写字母。
func ColumnNameToIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	for _, r := range name {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
	}
	return excelize.ColumnNameToNumber(name)
}

// ColumnIndexToName 列号转列名
func ColumnIndexToName(index int) (string, error) {
	return excelize.ColumnNumberToName(index)
}
