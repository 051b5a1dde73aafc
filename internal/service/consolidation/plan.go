package consolidation

import (
	"errors"
	"fmt"
)

// Role 目标表角色
type Role int

const (
	// RoleIntermediate 合并分公司表：汇总全部分公司
	RoleIntermediate Role = iota
	// RoleFinal 合并表：汇总合并分公司表与全部子公司
	RoleFinal
)

func (r Role) String() string {
	switch r {
	case RoleIntermediate:
		return "intermediate"
	case RoleFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Stage 一次合并步骤
type Stage struct {
	Role   Role
	Ranges []string
}

// Plan 专题的固定合并流程
type Plan struct {
	Topic  Topic
	Stages []Stage
}

// Targets 模板中的两张目标表
type Targets struct {
	Final        Sheet
	Intermediate Sheet
}

// RunOptions 执行选项
type RunOptions struct {
	// Atomic 为 true 时，全部写入先暂存，整轮成功后才落到目标表
	Atomic bool
}

// Result 一轮合并的统计
type Result struct {
	StagesRun     int `json:"stagesRun"`
	StagesSkipped int `json:"stagesSkipped"`
	CellsWritten  int `json:"cellsWritten"`
}

// PlanFor 取专题的合并流程
func PlanFor(t Topic) (*Plan, error) {
	stages, ok := topicStages[t]
	if !ok {
		return nil, fmt.Errorf("unknown topic: %q", t)
	}
	return &Plan{Topic: t, Stages: stages}, nil
}

// Run 按顺序执行全部步骤：分公司 → 合并分公司表；合并分公司表 + 子公司 → 合并表。
// 没有分公司时跳过前者，没有子公司时跳过后者。每次写入都是覆盖，重复执行结果一致。
//
// 非原子模式下，中途失败时此前已写入的单元格保留。
func (p *Plan) Run(targets Targets, subsidiaries, branches []Sheet, opts RunOptions) (Result, error) {
	if targets.Final == nil || targets.Intermediate == nil {
		return Result{}, errors.New("consolidation targets are not set")
	}

	final, intermediate := targets.Final, targets.Intermediate
	var stagedFinal, stagedIntermediate *stagedSheet
	if opts.Atomic {
		stagedFinal = newStagedSheet(final)
		stagedIntermediate = newStagedSheet(intermediate)
		final, intermediate = stagedFinal, stagedIntermediate
	}

	var res Result
	for _, stage := range p.Stages {
		var target Sheet
		var sources []Sheet
		switch stage.Role {
		case RoleIntermediate:
			target = intermediate
			sources = branches
		case RoleFinal:
			if len(subsidiaries) > 0 {
				sources = make([]Sheet, 0, len(subsidiaries)+1)
				sources = append(sources, intermediate)
				sources = append(sources, subsidiaries...)
			}
			target = final
		default:
			return res, fmt.Errorf("unknown role: %d", stage.Role)
		}

		if len(sources) == 0 {
			res.StagesSkipped++
			continue
		}
		n, err := consolidate(target, sources, stage.Ranges)
		res.CellsWritten += n
		if err != nil {
			if opts.Atomic {
				res.CellsWritten = 0
			}
			return res, err
		}
		res.StagesRun++
	}

	if opts.Atomic {
		if err := stagedIntermediate.commit(); err != nil {
			return res, fmt.Errorf("提交合并分公司表失败: %w", err)
		}
		if err := stagedFinal.commit(); err != nil {
			return res, fmt.Errorf("提交合并表失败: %w", err)
		}
	}
	return res, nil
}
