package workspace

import (
	"fmt"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

// SkeletonTemplate 生成专题的空白模板：合并表在第 0 张，合并分公司表在约定序号，其余为占位表。
// 两张目标表的合并区域预置为 0。
func SkeletonTemplate(topic consolidation.Topic) ([]byte, error) {
	info := topic.Info()
	if info.Name == "" {
		return nil, fmt.Errorf("unknown topic: %q", topic)
	}

	names := make([]string, info.IntermediateIndex+1)
	for i := range names {
		names[i] = fmt.Sprintf("附表%d", i)
	}
	names[info.FinalIndex] = info.Name
	names[info.IntermediateIndex] = info.IntermediateName

	f, err := excel.NewSkeletonWorkbook(names)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	plan, err := consolidation.PlanFor(topic)
	if err != nil {
		return nil, err
	}
	for _, stage := range plan.Stages {
		sheet := info.Name
		if stage.Role == consolidation.RoleIntermediate {
			sheet = info.IntermediateName
		}
		coords, err := excel.ExpandRanges(stage.Ranges)
		if err != nil {
			return nil, err
		}
		for _, c := range coords {
			if err := f.SetCellValue(sheet, c.String(), 0); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write skeleton: %w", err)
	}
	return buf.Bytes(), nil
}
