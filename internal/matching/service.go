package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"career-match-go/internal/types"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/gofrs/uuid/v5"
)

// TextEmbedder 文本向量化接口，与eino的embedding组件签名保持一致
type TextEmbedder interface {
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)
}

// IndexHit 向量索引的单条命中结果
type IndexHit struct {
	ID      string
	Score   float64
	Payload map[string]interface{}
}

// VectorIndex 向量索引接口，一个实例绑定一个集合。
// Filter 为payload字段上的等值条件合取，scoreThreshold 由索引侧应用。
type VectorIndex interface {
	UpsertPoint(ctx context.Context, pointID string, vector []float64, payload map[string]interface{}) error
	Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64, filter map[string]interface{}) ([]IndexHit, error)
	DeletePoint(ctx context.Context, pointID string) error
	CountPoints(ctx context.Context) (int64, error)
}

// JobStore 岗位主存储的读取与嵌入ID回写接口
type JobStore interface {
	GetJobByID(ctx context.Context, jobID string) (*types.Job, error)
	UpdateJobEmbeddingID(ctx context.Context, jobID string, embeddingID string) error
}

// ResumeStore 简历主存储的读取接口
type ResumeStore interface {
	GetResumeByID(ctx context.Context, resumeID string) (*types.Resume, error)
}

// 自由文本搜索的索引侧相似度下限
const semanticSearchThreshold = 0.2

// 列表接口单次返回的上限
const maxListLimit = 100

// pointIDNamespace 向量点ID的UUIDv5命名空间。
// 点ID由实体ID确定性派生，同一实体重复索引总是落在同一个点上。
var pointIDNamespace = uuid.NewV5(uuid.NamespaceDNS, "career-match-go")

// MatchService 匹配核心服务：排名、详细评分、语义搜索和索引写入。
// 所有依赖在构造时注入，服务本身无可变共享状态，可并发使用。
type MatchService struct {
	embedder       TextEmbedder
	jobIndex       VectorIndex
	resumeIndex    VectorIndex
	jobStore       JobStore
	resumeStore    ResumeStore
	embeddingModel string
	embeddingDim   int
	logger         *log.Logger
}

// MatchServiceOption 定义MatchService的函数式配置选项
type MatchServiceOption func(*MatchService)

// WithLogger 设置自定义日志记录器
func WithLogger(logger *log.Logger) MatchServiceOption {
	return func(s *MatchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEmbeddingModelInfo 设置嵌入模型名与维度，仅用于统计接口的展示
func WithEmbeddingModelInfo(model string, dimension int) MatchServiceOption {
	return func(s *MatchService) {
		s.embeddingModel = model
		s.embeddingDim = dimension
	}
}

// NewMatchService 创建匹配服务实例，所有必填依赖不能为空
func NewMatchService(
	embedder TextEmbedder,
	jobIndex, resumeIndex VectorIndex,
	jobStore JobStore,
	resumeStore ResumeStore,
	options ...MatchServiceOption,
) (*MatchService, error) {
	if embedder == nil {
		return nil, fmt.Errorf("TextEmbedder 不能为空")
	}
	if jobIndex == nil || resumeIndex == nil {
		return nil, fmt.Errorf("VectorIndex 不能为空")
	}
	if jobStore == nil {
		return nil, fmt.Errorf("JobStore 不能为空")
	}
	if resumeStore == nil {
		return nil, fmt.Errorf("ResumeStore 不能为空")
	}

	s := &MatchService{
		embedder:    embedder,
		jobIndex:    jobIndex,
		resumeIndex: resumeIndex,
		jobStore:    jobStore,
		resumeStore: resumeStore,
		logger:      log.New(os.Stdout, "[MatchService] ", log.LstdFlags|log.Lshortfile),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// JobMatchFilters 简历→岗位方向的排名参数
type JobMatchFilters struct {
	Limit     int
	MinScore  float64 // 索引侧相似度下限，[0,1]
	Location  string
	JobType   types.JobType
	SalaryMin *int
}

// CandidateMatchFilters 岗位→候选人方向的排名参数
type CandidateMatchFilters struct {
	Limit         int
	MinScore      float64
	MinExperience *int
}

// SearchFilters 自由文本语义搜索的参数
type SearchFilters struct {
	Limit    int
	Location string
	JobType  types.JobType
	Company  string // 不区分大小写的子串匹配，取回结果后过滤
}

func validateListParams(limit int, minScore float64) error {
	if limit < 1 || limit > maxListLimit {
		return fmt.Errorf("%w: limit 必须在 [1,%d] 范围内, 实际为 %d", ErrValidation, maxListLimit, limit)
	}
	if minScore < 0 || minScore > 1 {
		return fmt.Errorf("%w: minScore 必须在 [0,1] 范围内, 实际为 %g", ErrValidation, minScore)
	}
	return nil
}

// FindMatchingJobs 为指定简历排名匹配的在招岗位。
// 每次调用重新计算简历向量（不走缓存），索引查询按 2×limit 超量取回以抵消后置过滤的损耗。
func (s *MatchService) FindMatchingJobs(ctx context.Context, resumeID string, filters JobMatchFilters) ([]types.RankedJob, error) {
	if resumeID == "" {
		return nil, fmt.Errorf("%w: resumeID 不能为空", ErrValidation)
	}
	if err := validateListParams(filters.Limit, filters.MinScore); err != nil {
		return nil, err
	}
	if filters.JobType != "" && !filters.JobType.Valid() {
		return nil, fmt.Errorf("%w: 未知的岗位类型 %q", ErrValidation, filters.JobType)
	}

	resume, err := s.resumeStore.GetResumeByID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("查询简历失败: %w", err)
	}

	vector, err := s.embedText(ctx, resume.EmbeddingText())
	if err != nil {
		return nil, err
	}

	filter := map[string]interface{}{"is_active": true}
	if filters.Location != "" {
		filter["location"] = filters.Location
	}
	if filters.JobType != "" {
		filter["job_type"] = filters.JobType.String()
	}

	hits, err := s.jobIndex.Search(ctx, vector, 2*filters.Limit, filters.MinScore, filter)
	if err != nil {
		return nil, newDependencyError("vector_index", err)
	}

	ranked := make([]types.RankedJob, 0, len(hits))
	for _, hit := range hits {
		jobID, ok := hit.Payload["job_id"].(string)
		if !ok || jobID == "" {
			continue
		}
		job, err := s.jobStore.GetJobByID(ctx, jobID)
		if err != nil {
			// 索引里的悬空引用直接跳过，主存储真实故障上抛
			if isNotFound(err) {
				s.logger.Printf("索引命中的岗位在主存储中不存在，跳过: %s", jobID)
				continue
			}
			return nil, fmt.Errorf("查询岗位失败: %w", err)
		}
		if filters.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMax < *filters.SalaryMin {
			continue
		}

		analysis := AnalyzeSkills(resume.Skills, job.SkillsRequired)
		combined := scoreForRanking(hit.Score, analysis.MatchPercentage)
		ranked = append(ranked, types.RankedJob{
			Job:                  job,
			MatchScore:           round1(combined * 100),
			SemanticScore:        round1(hit.Score * 100),
			SkillScore:           analysis.MatchPercentage,
			MatchingSkills:       analysis.Matching,
			MissingSkills:        analysis.Missing,
			SkillMatchPercentage: analysis.MatchPercentage,
		})
	}

	// 降序排名，同分按岗位ID升序保证输出可复现
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].Job.JobID < ranked[j].Job.JobID
	})
	if len(ranked) > filters.Limit {
		ranked = ranked[:filters.Limit]
	}
	return ranked, nil
}

// FindMatchingCandidates 为指定岗位排名匹配的候选人简历
func (s *MatchService) FindMatchingCandidates(ctx context.Context, jobID string, filters CandidateMatchFilters) ([]types.RankedCandidate, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobID 不能为空", ErrValidation)
	}
	if err := validateListParams(filters.Limit, filters.MinScore); err != nil {
		return nil, err
	}

	job, err := s.jobStore.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}

	vector, err := s.embedText(ctx, job.EmbeddingText())
	if err != nil {
		return nil, err
	}

	hits, err := s.resumeIndex.Search(ctx, vector, 2*filters.Limit, filters.MinScore, nil)
	if err != nil {
		return nil, newDependencyError("vector_index", err)
	}

	ranked := make([]types.RankedCandidate, 0, len(hits))
	for _, hit := range hits {
		resumeID, ok := hit.Payload["resume_id"].(string)
		if !ok || resumeID == "" {
			continue
		}
		resume, err := s.resumeStore.GetResumeByID(ctx, resumeID)
		if err != nil {
			if isNotFound(err) {
				s.logger.Printf("索引命中的简历在主存储中不存在，跳过: %s", resumeID)
				continue
			}
			return nil, fmt.Errorf("查询简历失败: %w", err)
		}
		if filters.MinExperience != nil && resume.ExperienceYears < *filters.MinExperience {
			continue
		}

		analysis := AnalyzeSkills(resume.Skills, job.SkillsRequired)
		combined := scoreForRanking(hit.Score, analysis.MatchPercentage)
		ranked = append(ranked, types.RankedCandidate{
			ResumeID:             resume.ResumeID,
			UserID:               resume.UserID,
			MatchScore:           round1(combined * 100),
			SemanticScore:        round1(hit.Score * 100),
			SkillScore:           analysis.MatchPercentage,
			Skills:               resume.Skills,
			ExperienceYears:      resume.ExperienceYears,
			SkillMatchPercentage: analysis.MatchPercentage,
			MatchingSkills:       analysis.Matching,
			MissingSkills:        analysis.Missing,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].ResumeID < ranked[j].ResumeID
	})
	if len(ranked) > filters.Limit {
		ranked = ranked[:filters.Limit]
	}
	return ranked, nil
}

// CalculateMatchScore 计算单对(简历,岗位)的详细匹配结果。
// 两段文本在同一次嵌入调用中计算，语义分为本地余弦相似度。
func (s *MatchService) CalculateMatchScore(ctx context.Context, resumeID, jobID string) (*types.MatchResult, error) {
	if resumeID == "" || jobID == "" {
		return nil, fmt.Errorf("%w: resumeID 和 jobID 不能为空", ErrValidation)
	}

	resume, err := s.resumeStore.GetResumeByID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("查询简历失败: %w", err)
	}
	job, err := s.jobStore.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{resume.EmbeddingText(), job.EmbeddingText()})
	if err != nil {
		return nil, newDependencyError("embedder", err)
	}
	if len(vectors) < 2 || len(vectors[0]) == 0 || len(vectors[1]) == 0 {
		return nil, newDependencyError("embedder", fmt.Errorf("向量化结果不完整"))
	}

	semantic := cosineSimilarity(vectors[0], vectors[1])
	result := ScoreDetailed(semantic, resume.Skills, job.SkillsRequired, resume.ExperienceYears, job.ExperienceLevel)
	return &result, nil
}

// SearchJobsSemantic 自由文本语义搜索在招岗位，只报告索引相似度，不做技能/经验评分
func (s *MatchService) SearchJobsSemantic(ctx context.Context, query string, filters SearchFilters) ([]types.SemanticSearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: 查询文本不能为空", ErrValidation)
	}
	if filters.Limit < 1 || filters.Limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit 必须在 [1,%d] 范围内, 实际为 %d", ErrValidation, maxListLimit, filters.Limit)
	}
	if filters.JobType != "" && !filters.JobType.Valid() {
		return nil, fmt.Errorf("%w: 未知的岗位类型 %q", ErrValidation, filters.JobType)
	}

	vector, err := s.embedText(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := map[string]interface{}{"is_active": true}
	if filters.Location != "" {
		filter["location"] = filters.Location
	}
	if filters.JobType != "" {
		filter["job_type"] = filters.JobType.String()
	}

	hits, err := s.jobIndex.Search(ctx, vector, 2*filters.Limit, semanticSearchThreshold, filter)
	if err != nil {
		return nil, newDependencyError("vector_index", err)
	}

	company := strings.ToLower(strings.TrimSpace(filters.Company))
	results := make([]types.SemanticSearchHit, 0, len(hits))
	for _, hit := range hits {
		jobID, ok := hit.Payload["job_id"].(string)
		if !ok || jobID == "" {
			continue
		}
		job, err := s.jobStore.GetJobByID(ctx, jobID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("查询岗位失败: %w", err)
		}
		if company != "" && !strings.Contains(strings.ToLower(job.Company), company) {
			continue
		}
		results = append(results, types.SemanticSearchHit{
			Job:            job,
			RelevanceScore: round1(hit.Score * 100),
		})
		if len(results) == filters.Limit {
			break
		}
	}
	return results, nil
}

// IndexJob 将岗位写入向量索引，返回其嵌入点ID。
// 已有嵌入ID时原地更新；否则派生确定性新ID并回写主存储。
// 嵌入或索引失败返回 *DependencyError，调用方按非致命处理。
func (s *MatchService) IndexJob(ctx context.Context, job *types.Job) (string, error) {
	if job == nil || job.JobID == "" {
		return "", fmt.Errorf("%w: job 不能为空", ErrValidation)
	}

	pointID := jobPointID(job)
	vector, err := s.embedText(ctx, job.EmbeddingText())
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"job_id":    job.JobID,
		"title":     job.Title,
		"company":   job.Company,
		"location":  job.Location,
		"job_type":  job.JobType.String(),
		"is_active": job.IsActive,
	}
	if err := s.jobIndex.UpsertPoint(ctx, pointID, vector, payload); err != nil {
		return "", newDependencyError("vector_index", err)
	}

	if job.EmbeddingID == nil {
		if err := s.jobStore.UpdateJobEmbeddingID(ctx, job.JobID, pointID); err != nil {
			return "", fmt.Errorf("回写岗位嵌入ID失败: %w", err)
		}
		job.EmbeddingID = &pointID
	}
	s.logger.Printf("岗位已写入向量索引, JobID: %s, PointID: %s", job.JobID, pointID)
	return pointID, nil
}

// IndexResume 将简历写入向量索引，返回其嵌入点ID
func (s *MatchService) IndexResume(ctx context.Context, resume *types.Resume) (string, error) {
	if resume == nil || resume.ResumeID == "" {
		return "", fmt.Errorf("%w: resume 不能为空", ErrValidation)
	}

	pointID := resumePointID(resume)
	vector, err := s.embedText(ctx, resume.EmbeddingText())
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"resume_id": resume.ResumeID,
		"user_id":   resume.UserID,
	}
	if err := s.resumeIndex.UpsertPoint(ctx, pointID, vector, payload); err != nil {
		return "", newDependencyError("vector_index", err)
	}
	if resume.EmbeddingID == nil {
		resume.EmbeddingID = &pointID
	}
	s.logger.Printf("简历已写入向量索引, ResumeID: %s, PointID: %s", resume.ResumeID, pointID)
	return pointID, nil
}

// Stats 返回向量索引的统计信息
func (s *MatchService) Stats(ctx context.Context) (*types.MatchingStats, error) {
	jobCount, err := s.jobIndex.CountPoints(ctx)
	if err != nil {
		return nil, newDependencyError("vector_index", err)
	}
	resumeCount, err := s.resumeIndex.CountPoints(ctx)
	if err != nil {
		return nil, newDependencyError("vector_index", err)
	}
	return &types.MatchingStats{
		IndexedJobs:        jobCount,
		IndexedResumes:     resumeCount,
		EmbeddingModel:     s.embeddingModel,
		EmbeddingDimension: s.embeddingDim,
	}, nil
}

// embedText 单段文本向量化，失败包装为依赖错误
func (s *MatchService) embedText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, newDependencyError("embedder", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, newDependencyError("embedder", fmt.Errorf("向量化结果为空"))
	}
	return vectors[0], nil
}

// jobPointID 由岗位ID确定性派生向量点ID，重复索引落在同一个点上
func jobPointID(job *types.Job) string {
	if job.EmbeddingID != nil && *job.EmbeddingID != "" {
		return *job.EmbeddingID
	}
	return uuid.NewV5(pointIDNamespace, "job:"+job.JobID).String()
}

func resumePointID(resume *types.Resume) string {
	if resume.EmbeddingID != nil && *resume.EmbeddingID != "" {
		return *resume.EmbeddingID
	}
	return uuid.NewV5(pointIDNamespace, "resume:"+resume.ResumeID).String()
}

// cosineSimilarity 计算两个向量的余弦相似度，零向量返回0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
