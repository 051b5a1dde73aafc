package consolidation

import (
	"github.com/artificielle/consolidations/internal/service/excel"
)

// stagedSheet 暂存写入：读取优先返回暂存值，commit 时按写入顺序落到底层表。
// 读取与底层表一致地解析合并单元格：从属格取主格的暂存值。
type stagedSheet struct {
	base    Sheet
	pending map[excel.Coordinate]float64
	order   []excel.Coordinate
}

func newStagedSheet(base Sheet) *stagedSheet {
	return &stagedSheet{
		base:    base,
		pending: make(map[excel.Coordinate]float64),
	}
}

func (s *stagedSheet) Name() string {
	return s.base.Name()
}

func (s *stagedSheet) Master(c excel.Coordinate) excel.Coordinate {
	return s.base.Master(c)
}

func (s *stagedSheet) Cell(c excel.Coordinate) (excel.Cell, bool, error) {
	master := s.base.Master(c)
	if v, ok := s.pending[master]; ok {
		return excel.Cell{Address: c, Master: master, Value: excel.NumberValue(v)}, true, nil
	}
	return s.base.Cell(c)
}

func (s *stagedSheet) SetNumber(c excel.Coordinate, v float64) error {
	if _, ok := s.pending[c]; !ok {
		s.order = append(s.order, c)
	}
	s.pending[c] = v
	return nil
}

func (s *stagedSheet) commit() error {
	for _, c := range s.order {
		if err := s.base.SetNumber(c, s.pending[c]); err != nil {
			return err
		}
	}
	s.pending = make(map[excel.Coordinate]float64)
	s.order = nil
	return nil
}
