package matching

import (
	"testing"

	"career-match-go/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMatchLevel_Boundaries(t *testing.T) {
	assert.Equal(t, types.MatchLevelExcellent, classifyMatchLevel(100.0))
	assert.Equal(t, types.MatchLevelExcellent, classifyMatchLevel(80.0))
	assert.Equal(t, types.MatchLevelGood, classifyMatchLevel(79.9))
	assert.Equal(t, types.MatchLevelGood, classifyMatchLevel(60.0))
	assert.Equal(t, types.MatchLevelPartial, classifyMatchLevel(59.9))
	assert.Equal(t, types.MatchLevelPartial, classifyMatchLevel(40.0))
	assert.Equal(t, types.MatchLevelLow, classifyMatchLevel(39.9))
	assert.Equal(t, types.MatchLevelLow, classifyMatchLevel(0.0))
}

func TestScoreDetailed_FullMatch(t *testing.T) {
	// 语义0.9 + 技能全中(1.0) + 经验区间内(1.0)
	// combined = 0.9*0.5 + 1.0*0.35 + 1.0*0.15 = 0.95
	result := ScoreDetailed(0.9,
		[]string{"python", "go"},
		[]string{"python", "go"},
		6, "senior")

	assert.Equal(t, 95.0, result.OverallScore)
	assert.Equal(t, types.MatchLevelExcellent, result.MatchLevel)
	assert.Equal(t, 90.0, result.SemanticScore)
	assert.Equal(t, 100.0, result.SkillScore)
	assert.Equal(t, 100.0, result.ExperienceScore)
	assert.Equal(t, 100.0, result.SkillMatchPercentage)
	assert.Empty(t, result.MissingSkills)
	assert.Empty(t, result.ExtraSkills)
	assert.Contains(t, result.Recommendations,
		"Strong match! Tailor your resume to highlight matching skills")
}

func TestScoreDetailed_WeightedCombination(t *testing.T) {
	// 语义0.6，技能1中1缺 → pct=50，经验不足 senior 4年 → 0.8
	// combined = 0.6*0.5 + 0.5*0.35 + 0.8*0.15 = 0.3 + 0.175 + 0.12 = 0.595 → 59.5
	result := ScoreDetailed(0.6,
		[]string{"python"},
		[]string{"python", "go"},
		4, "senior")

	assert.Equal(t, 59.5, result.OverallScore)
	assert.Equal(t, types.MatchLevelPartial, result.MatchLevel)
	assert.Equal(t, 60.0, result.SemanticScore)
	assert.Equal(t, 50.0, result.SkillScore)
	assert.Equal(t, 80.0, result.ExperienceScore)
	assert.Equal(t, []string{"GO"}, result.MissingSkills)
}

func TestScoreDetailed_ScoreWithinRange(t *testing.T) {
	result := ScoreDetailed(1.0, []string{"a", "b"}, []string{"a", "b"}, 4, "mid")
	assert.Equal(t, 100.0, result.OverallScore)

	result = ScoreDetailed(0, nil, []string{"go"}, 0, "senior")
	assert.GreaterOrEqual(t, result.OverallScore, 0.0)
	assert.LessOrEqual(t, result.OverallScore, 100.0)
}

func TestBuildRecommendations_GoodPotentialOnly(t *testing.T) {
	// 技能全中、经验满分、combined=0.55 → 只命中"good potential"一条
	analysis := AnalyzeSkills([]string{"python"}, []string{"python"})
	recs := buildRecommendations(analysis, 1.0, 0.55)

	assert.Equal(t, []string{
		"Good potential - emphasize transferable skills in your application",
	}, recs)
}

func TestBuildRecommendations_TopThreeMissing(t *testing.T) {
	analysis := AnalyzeSkills(
		[]string{"python"},
		[]string{"python", "go", "rust", "java", "kotlin"})
	recs := buildRecommendations(analysis, 1.0, 0.8)

	// 缺失技能按展示排序只取前3个
	assert.Contains(t, recs, "Consider learning: GO, Java, Kotlin")
}

func TestBuildRecommendations_CappedAtFour(t *testing.T) {
	// 触发全部5条规则：缺失技能、pct<50、经验不足、combined>=0.7、多余技能
	analysis := AnalyzeSkills(
		[]string{"python", "docker", "terraform"},
		[]string{"python", "docker", "go", "rust", "java"})
	assert.Equal(t, 40.0, analysis.MatchPercentage)

	recs := buildRecommendations(analysis, 0.5, 0.72)
	assert.Len(t, recs, maxRecommendations)
	// 多余技能的建议排在最后，被截断
	assert.NotContains(t, recs, "Highlight your additional skills: Terraform")
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, round1(33.333))
	assert.Equal(t, 66.7, round1(66.666))
	assert.Equal(t, 80.0, round1(79.999))
	assert.Equal(t, 0.0, round1(0))
}
