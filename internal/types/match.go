package types

// MatchLevel 由综合得分按固定阈值划分出的匹配等级
type MatchLevel string

const (
	MatchLevelExcellent MatchLevel = "Excellent Match"
	MatchLevelGood      MatchLevel = "Good Match"
	MatchLevelPartial   MatchLevel = "Partial Match"
	MatchLevelLow       MatchLevel = "Low Match"
)

// SkillAnalysis 技能集对比结果。
// 三个列表均为展示形式（Title Case，短缩写大写），集合语义，去重。
type SkillAnalysis struct {
	Matching        []string `json:"matching"`
	Missing         []string `json:"missing"`
	Extra           []string `json:"extra"`
	MatchPercentage float64  `json:"match_percentage"`
}

// MatchResult 单对(简历,岗位)的详细匹配结果，按需计算，不落库。
// 所有分数为0-100的百分比，保留1位小数。
type MatchResult struct {
	OverallScore         float64    `json:"overall_score"`
	MatchLevel           MatchLevel `json:"match_level"`
	SemanticScore        float64    `json:"semantic_score"`
	SkillScore           float64    `json:"skill_score"`
	ExperienceScore      float64    `json:"experience_score"`
	MatchingSkills       []string   `json:"matching_skills"`
	MissingSkills        []string   `json:"missing_skills"`
	ExtraSkills          []string   `json:"extra_skills"`
	SkillMatchPercentage float64    `json:"skill_match_percentage"`
	Recommendations      []string   `json:"recommendations"`
}

// RankedJob 岗位排名结果（简历→岗位方向），按MatchScore降序
type RankedJob struct {
	Job                  *Job     `json:"job"`
	MatchScore           float64  `json:"match_score"`
	SemanticScore        float64  `json:"semantic_score"`
	SkillScore           float64  `json:"skill_score"`
	MatchingSkills       []string `json:"matching_skills"`
	MissingSkills        []string `json:"missing_skills"`
	SkillMatchPercentage float64  `json:"skill_match_percentage"`
}

// RankedCandidate 候选人排名结果（岗位→简历方向），按MatchScore降序
type RankedCandidate struct {
	ResumeID             string   `json:"resume_id"`
	UserID               string   `json:"user_id"`
	MatchScore           float64  `json:"match_score"`
	SemanticScore        float64  `json:"semantic_score"`
	SkillScore           float64  `json:"skill_score"`
	Skills               []string `json:"skills"`
	ExperienceYears      int      `json:"experience_years"`
	SkillMatchPercentage float64  `json:"skill_match_percentage"`
	MatchingSkills       []string `json:"matching_skills"`
	MissingSkills        []string `json:"missing_skills"`
}

// SemanticSearchHit 自由文本语义搜索结果，只携带索引相似度（0-100）
type SemanticSearchHit struct {
	Job            *Job    `json:"job"`
	RelevanceScore float64 `json:"relevance_score"`
}

// MatchingStats 向量索引统计信息
type MatchingStats struct {
	IndexedJobs        int64  `json:"indexed_jobs"`
	IndexedResumes     int64  `json:"indexed_resumes"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
}
