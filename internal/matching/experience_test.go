package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperienceFitScore_InRange(t *testing.T) {
	assert.Equal(t, 1.0, ExperienceFitScore(0, "entry"))
	assert.Equal(t, 1.0, ExperienceFitScore(2, "junior"))
	assert.Equal(t, 1.0, ExperienceFitScore(4, "mid"))
	assert.Equal(t, 1.0, ExperienceFitScore(5, "senior"))
	assert.Equal(t, 1.0, ExperienceFitScore(10, "senior"))
	assert.Equal(t, 1.0, ExperienceFitScore(15, "lead"))
	assert.Equal(t, 1.0, ExperienceFitScore(20, "principal"))
}

func TestExperienceFitScore_UnderQualified(t *testing.T) {
	// senior 为 [5,10]，4年 → 4/5 = 0.8
	assert.InDelta(t, 0.8, ExperienceFitScore(4, "senior"), 1e-9)

	// principal 为 [10,20]，1年 → 0.1，封底到0.5
	assert.Equal(t, 0.5, ExperienceFitScore(1, "principal"))
	assert.Equal(t, 0.5, ExperienceFitScore(0, "senior"))
}

func TestExperienceFitScore_OverQualified(t *testing.T) {
	// senior 上限10年，12年 → 1 - 2*0.05 = 0.9
	assert.InDelta(t, 0.9, ExperienceFitScore(12, "senior"), 1e-9)

	// 远超上限封底到0.7
	assert.Equal(t, 0.7, ExperienceFitScore(30, "senior"))
	assert.Equal(t, 0.7, ExperienceFitScore(40, "entry"))
}

func TestExperienceFitScore_UnknownLabelFallsBackToMid(t *testing.T) {
	// mid 为 [3,5]
	assert.Equal(t, ExperienceFitScore(4, "mid"), ExperienceFitScore(4, "wizard"))
	assert.Equal(t, ExperienceFitScore(1, "mid"), ExperienceFitScore(1, ""))
	assert.Equal(t, ExperienceFitScore(8, "mid"), ExperienceFitScore(8, "unknown"))
}

func TestExperienceFitScore_LabelCaseInsensitive(t *testing.T) {
	assert.Equal(t, ExperienceFitScore(6, "senior"), ExperienceFitScore(6, "Senior"))
	assert.Equal(t, ExperienceFitScore(6, "senior"), ExperienceFitScore(6, " SENIOR "))
}

func TestExperienceFitScore_Bounds(t *testing.T) {
	for years := 0; years <= 50; years++ {
		for label := range seniorityBands {
			score := ExperienceFitScore(years, label)
			assert.GreaterOrEqual(t, score, 0.5, "years=%d label=%s", years, label)
			assert.LessOrEqual(t, score, 1.0, "years=%d label=%s", years, label)
		}
	}
}

func TestExperienceFitScore_MonotonicBelowMin(t *testing.T) {
	// 低于下限时分数随年限不降
	prev := ExperienceFitScore(0, "principal")
	for years := 1; years <= 10; years++ {
		score := ExperienceFitScore(years, "principal")
		assert.GreaterOrEqual(t, score, prev, "years=%d", years)
		prev = score
	}
}
