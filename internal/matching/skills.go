package matching

import (
	"sort"
	"strings"
	"unicode"

	"career-match-go/internal/types"
)

// AnalyzeSkills 对比两份技能清单，计算交集/缺失/多余三个集合。
// 对比不区分大小写，输入切片不会被修改，重复项会折叠。
// targetSkills 为空时约定 MatchPercentage 为100（无要求即完全满足）。
func AnalyzeSkills(subjectSkills []string, targetSkills []string) types.SkillAnalysis {
	subjectSet := toLowerSet(subjectSkills)
	targetSet := toLowerSet(targetSkills)

	var matching, missing, extra []string
	for s := range subjectSet {
		if _, ok := targetSet[s]; ok {
			matching = append(matching, displaySkill(s))
		} else {
			extra = append(extra, displaySkill(s))
		}
	}
	for s := range targetSet {
		if _, ok := subjectSet[s]; !ok {
			missing = append(missing, displaySkill(s))
		}
	}

	// map遍历顺序随机，排序保证输出可复现
	sort.Strings(matching)
	sort.Strings(missing)
	sort.Strings(extra)

	matchPercentage := 100.0
	if len(targetSet) > 0 {
		matchPercentage = round1(float64(len(matching)) / float64(len(targetSet)) * 100)
	}

	return types.SkillAnalysis{
		Matching:        matching,
		Missing:         missing,
		Extra:           extra,
		MatchPercentage: matchPercentage,
	}
}

func toLowerSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// displaySkill 将小写技能渲染为展示形式。
// 长度不超过3的技能按缩写处理，整体大写（如 aws → AWS, go → GO）；
// 其余按单词做Title Case（如 machine learning → Machine Learning）。
func displaySkill(lower string) string {
	if len(lower) <= 3 {
		return strings.ToUpper(lower)
	}

	words := strings.Fields(lower)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
