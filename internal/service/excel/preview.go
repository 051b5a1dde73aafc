package excel

import (
	"fmt"
)

// Grid 工作表预览：按行列展示的文本
type Grid struct {
	Sheet string     `json:"sheet"`
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells [][]string `json:"cells"`
}

// Preview 生成工作表预览。合并区域的从属格为空，公式显示缓存结果或错误码。
func (ws *Worksheet) Preview() (Grid, error) {
	rows, err := ws.file.GetRows(ws.name)
	if err != nil {
		return Grid{}, fmt.Errorf("读取 %s 失败: %w", ws.name, err)
	}

	maxRow := len(rows)
	maxCol := 0
	for _, r := range rows {
		if len(r) > maxCol {
			maxCol = len(r)
		}
	}

	grid := Grid{
		Sheet: ws.name,
		Rows:  maxRow,
		Cols:  maxCol,
		Cells: make([][]string, maxRow),
	}
	for r := 1; r <= maxRow; r++ {
		line := make([]string, maxCol)
		for c := 1; c <= maxCol; c++ {
			coord := Coordinate{Col: c, Row: r}
			if ws.Master(coord) != coord {
				continue
			}
			value, ok, err := ws.readValue(coord.String())
			if err != nil {
				return Grid{}, err
			}
			if ok {
				line[c-1] = value.Display()
			}
		}
		grid.Cells[r-1] = line
	}
	return grid, nil
}
