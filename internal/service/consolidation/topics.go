package consolidation

import (
	"fmt"
	"strings"
)

// Topic 报表专题
type Topic string

const (
	TopicIncome   Topic = "income"
	TopicCashFlow Topic = "cashflow"
	TopicBalance  Topic = "balance"
)

// TopicInfo 专题的模板约定
type TopicInfo struct {
	Key               Topic  `json:"key"`
	Name              string `json:"name"`
	IntermediateName  string `json:"intermediateName"`
	FinalIndex        int    `json:"finalIndex"`
	IntermediateIndex int    `json:"intermediateIndex"`
}

var topicOrder = []Topic{TopicIncome, TopicCashFlow, TopicBalance}

var topicInfos = map[Topic]TopicInfo{
	TopicIncome:   newTopicInfo(TopicIncome, "合并利润表", 6),
	TopicCashFlow: newTopicInfo(TopicCashFlow, "合并现金流量表", 7),
	TopicBalance:  newTopicInfo(TopicBalance, "合并资产负债表", 6),
}

func newTopicInfo(key Topic, name string, intermediateIndex int) TopicInfo {
	return TopicInfo{
		Key:               key,
		Name:              name,
		IntermediateName:  strings.Replace(name, "合并", "合并分公司", 1),
		FinalIndex:        0,
		IntermediateIndex: intermediateIndex,
	}
}

// Topics 全部专题（固定顺序）
func Topics() []TopicInfo {
	out := make([]TopicInfo, 0, len(topicOrder))
	for _, t := range topicOrder {
		out = append(out, topicInfos[t])
	}
	return out
}

// ParseTopic 接受专题 key 或中文名
func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	for _, t := range topicOrder {
		if s == string(t) || s == topicInfos[t].Name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic: %q", s)
}

// Info 专题的模板约定
func (t Topic) Info() TopicInfo {
	return topicInfos[t]
}

// Name 专题中文名，也是模板与导出文件名的主体
func (t Topic) Name() string {
	return topicInfos[t].Name
}

// 各专题的区域表
var (
	incomeBranchRanges     = []string{"B5:C21", "B23:C24", "B26:C26", "B28:C33"}
	incomeSubsidiaryRanges = []string{"B5:C21", "B23:C24", "B26:C26"}

	cashFlowRanges = []string{"B6:C8", "B10:C13", "B17:C21", "B23:C26", "B30:C32", "B34:C36", "B41"}

	balanceColumnB = []string{"B6:B10", "B11:B20", "B23:B30", "B31:B40"}
	balanceColumnE = []string{"E6:E10", "E11:E20", "E23:E30", "E31:E40", "E41:E47"}
)

var topicStages = map[Topic][]Stage{
	TopicIncome: {
		{Role: RoleIntermediate, Ranges: incomeBranchRanges},
		{Role: RoleFinal, Ranges: incomeSubsidiaryRanges},
	},
	TopicCashFlow: {
		{Role: RoleIntermediate, Ranges: cashFlowRanges},
		{Role: RoleFinal, Ranges: cashFlowRanges},
	},
	// 资产负债表左右两栏（B 列资产、E 列负债及权益）分别汇总
	TopicBalance: {
		{Role: RoleIntermediate, Ranges: balanceColumnB},
		{Role: RoleIntermediate, Ranges: balanceColumnE},
		{Role: RoleFinal, Ranges: balanceColumnB},
		{Role: RoleFinal, Ranges: balanceColumnE},
	},
}
