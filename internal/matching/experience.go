package matching

import "strings"

// seniorityBand 具名资历档位对应的经验年限闭区间
type seniorityBand struct {
	MinYears int
	MaxYears int
}

// 固定档位表。标签查询不区分大小写，未知或空标签回退到mid档
var seniorityBands = map[string]seniorityBand{
	"entry":     {0, 2},
	"junior":    {1, 3},
	"mid":       {3, 5},
	"senior":    {5, 10},
	"lead":      {7, 15},
	"principal": {10, 20},
}

const defaultSeniorityLevel = "mid"

// ExperienceFitScore 计算经验年限对目标档位的契合度，返回[0,1]。
// 区间内得1.0；不足按 years/min 给分但不低于0.5；
// 超出按每年5个百分点衰减但不低于0.7。刻意宽容：经验只是软信号。
func ExperienceFitScore(years int, levelLabel string) float64 {
	band, ok := seniorityBands[strings.ToLower(strings.TrimSpace(levelLabel))]
	if !ok {
		band = seniorityBands[defaultSeniorityLevel]
	}

	switch {
	case years >= band.MinYears && years <= band.MaxYears:
		return 1.0
	case years < band.MinYears:
		// 仅在 min>0 时可达此分支（years>=0 且 min==0 时必然落在区间内），无除零风险
		score := float64(years) / float64(band.MinYears)
		if score < 0.5 {
			return 0.5
		}
		return score
	default:
		score := 1 - float64(years-band.MaxYears)*0.05
		if score < 0.7 {
			return 0.7
		}
		return score
	}
}
