package consolidation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/artificielle/consolidations/internal/service/excel"
)

// Sheet 合并所需的工作表能力，*excel.Worksheet 实现了该接口
type Sheet interface {
	Name() string
	Cell(c excel.Coordinate) (excel.Cell, bool, error)
	SetNumber(c excel.Coordinate, v float64) error
	// Master 坐标所在合并区域的主格，非从属格返回自身
	Master(c excel.Coordinate) excel.Coordinate
}

// ConsolidateInto 对 rangeSpecs 展开后的每个坐标，汇总 sources 中同一坐标的数值并写入 target。
//
// sources 为空时不做任何修改，目标不会被清零。
// 写入覆盖目标格原有的值和公式。遇到非数值单元格立即返回，此前已写入的坐标保留。
func ConsolidateInto(target Sheet, sources []Sheet, rangeSpecs []string) error {
	_, err := consolidate(target, sources, rangeSpecs)
	return err
}

func consolidate(target Sheet, sources []Sheet, rangeSpecs []string) (int, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	coords, err := excel.ExpandRanges(rangeSpecs)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, c := range coords {
		total, err := sumAt(sources, c)
		if err != nil {
			return written, err
		}
		if err := target.SetNumber(c, total); err != nil {
			return written, fmt.Errorf("写入 %s!%s 失败: %w", target.Name(), c, err)
		}
		written++
	}
	return written, nil
}

func sumAt(sources []Sheet, c excel.Coordinate) (float64, error) {
	total := decimal.Zero
	for _, s := range sources {
		cell, ok, err := s.Cell(c)
		if err != nil {
			return 0, err
		}
		n, err := RequireNumber(s.Name(), c, cell, ok)
		if err != nil {
			return 0, err
		}
		total = total.Add(decimal.NewFromFloat(n))
	}
	f, _ := total.Float64()
	return f, nil
}
