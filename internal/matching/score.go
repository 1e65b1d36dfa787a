package matching

import (
	"fmt"
	"math"
	"strings"

	"career-match-go/internal/types"
)

// 详细单对评分的权重：语义/技能/经验
const (
	detailedSemanticWeight   = 0.50
	detailedSkillWeight      = 0.35
	detailedExperienceWeight = 0.15
)

// 列表排名的权重：批量排名只用语义+技能两个信号，不计经验
const (
	listSemanticWeight = 0.60
	listSkillWeight    = 0.40
)

// 匹配等级阈值，作用于0-100的展示分
const (
	excellentThreshold = 80.0
	goodThreshold      = 60.0
	partialThreshold   = 40.0
)

const maxRecommendations = 4

// round1 保留1位小数
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// classifyMatchLevel 按固定阈值划分匹配等级。
// 入参为已舍入的0-100展示分，阈值为闭下界（80.0为Excellent，79.9为Good）。
func classifyMatchLevel(overallScore float64) types.MatchLevel {
	switch {
	case overallScore >= excellentThreshold:
		return types.MatchLevelExcellent
	case overallScore >= goodThreshold:
		return types.MatchLevelGood
	case overallScore >= partialThreshold:
		return types.MatchLevelPartial
	default:
		return types.MatchLevelLow
	}
}

// ScoreDetailed 计算单对(简历,岗位)的详细匹配结果。纯函数，无外部调用。
// semantic 为索引或余弦计算返回的相似度，取值[-1,1]或已缩放的[0,1]。
func ScoreDetailed(semantic float64, subjectSkills, targetSkills []string, years int, levelLabel string) types.MatchResult {
	skillAnalysis := AnalyzeSkills(subjectSkills, targetSkills)
	skillScore := skillAnalysis.MatchPercentage / 100
	expScore := ExperienceFitScore(years, levelLabel)

	combined := semantic*detailedSemanticWeight +
		skillScore*detailedSkillWeight +
		expScore*detailedExperienceWeight

	overall := round1(combined * 100)

	return types.MatchResult{
		OverallScore:         overall,
		MatchLevel:           classifyMatchLevel(overall),
		SemanticScore:        round1(semantic * 100),
		SkillScore:           round1(skillScore * 100),
		ExperienceScore:      round1(expScore * 100),
		MatchingSkills:       skillAnalysis.Matching,
		MissingSkills:        skillAnalysis.Missing,
		ExtraSkills:          skillAnalysis.Extra,
		SkillMatchPercentage: skillAnalysis.MatchPercentage,
		Recommendations:      buildRecommendations(skillAnalysis, expScore, combined),
	}
}

// scoreForRanking 列表排名用的综合分，返回[0,1]
func scoreForRanking(semantic float64, skillMatchPercentage float64) float64 {
	return semantic*listSemanticWeight + (skillMatchPercentage/100)*listSkillWeight
}

// buildRecommendations 按固定规则顺序生成建议文案，各规则独立追加，最多4条
func buildRecommendations(skillAnalysis types.SkillAnalysis, expScore, combined float64) []string {
	var recommendations []string

	if len(skillAnalysis.Missing) > 0 {
		topMissing := skillAnalysis.Missing
		if len(topMissing) > 3 {
			topMissing = topMissing[:3]
		}
		recommendations = append(recommendations,
			fmt.Sprintf("Consider learning: %s", strings.Join(topMissing, ", ")))
	}

	if skillAnalysis.MatchPercentage < 50 {
		recommendations = append(recommendations,
			"Focus on acquiring more of the required technical skills")
	}

	if expScore < 0.7 {
		recommendations = append(recommendations,
			"Highlight relevant projects to compensate for experience gap")
	}

	if combined >= 0.7 {
		recommendations = append(recommendations,
			"Strong match! Tailor your resume to highlight matching skills")
	} else if combined >= 0.5 {
		recommendations = append(recommendations,
			"Good potential - emphasize transferable skills in your application")
	}

	if len(skillAnalysis.Extra) > 0 {
		topExtra := skillAnalysis.Extra
		if len(topExtra) > 3 {
			topExtra = topExtra[:3]
		}
		recommendations = append(recommendations,
			fmt.Sprintf("Highlight your additional skills: %s", strings.Join(topExtra, ", ")))
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}
