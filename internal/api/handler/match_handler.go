package handler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"career-match-go/internal/config"
	"career-match-go/internal/matching"
	"career-match-go/internal/storage"
	"career-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// MatchHandler 负责处理匹配、排名与语义搜索相关的请求。
type MatchHandler struct {
	cfg     *config.Config
	service *matching.MatchService
	storage *storage.Storage
	logger  *log.Logger
}

// NewMatchHandler 创建一个新的 MatchHandler 实例。
func NewMatchHandler(cfg *config.Config, service *matching.MatchService, storage *storage.Storage) *MatchHandler {
	return &MatchHandler{
		cfg:     cfg,
		service: service,
		storage: storage,
		logger:  log.New(os.Stdout, "[MatchHandler] ", log.LstdFlags|log.Lshortfile),
	}
}

// parseLimit 解析limit查询参数，缺省时使用默认值，非法字符串交给服务层校验
func parseLimit(c *app.RequestContext, defaultLimit int) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return -1 // 触发服务层的范围校验
	}
	return limit
}

// parseMinScore 解析min_score查询参数
func parseMinScore(c *app.RequestContext, defaultMinScore float64) (float64, error) {
	scoreStr := c.Query("min_score")
	if scoreStr == "" {
		return defaultMinScore, nil
	}
	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: min_score 必须是数字: %q", matching.ErrValidation, scoreStr)
	}
	return score, nil
}

// HandleFindMatchingJobs 处理简历→岗位方向的匹配排名请求。
// GET /api/v1/match/jobs?resume_id=&limit=&min_score=&location=&job_type=&salary_min=
func (h *MatchHandler) HandleFindMatchingJobs(ctx context.Context, c *app.RequestContext) {
	resumeID := c.Query("resume_id")
	if resumeID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resume_id 不能为空"})
		return
	}

	minScore, err := parseMinScore(c, h.cfg.Matching.DefaultMinScore)
	if err != nil {
		writeError(c, err)
		return
	}

	filters := matching.JobMatchFilters{
		Limit:    parseLimit(c, h.cfg.Matching.DefaultLimit),
		MinScore: minScore,
		Location: c.Query("location"),
		JobType:  types.JobType(c.Query("job_type")),
	}
	if salaryStr := c.Query("salary_min"); salaryStr != "" {
		salary, err := strconv.Atoi(salaryStr)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": fmt.Sprintf("salary_min 必须是整数: %q", salaryStr)})
			return
		}
		filters.SalaryMin = &salary
	}

	ranked, err := h.service.FindMatchingJobs(ctx, resumeID, filters)
	if err != nil {
		h.logger.Printf("岗位匹配失败 for ResumeID %s: %v", resumeID, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"resume_id": resumeID,
		"matches":   ranked,
		"count":     len(ranked),
	})
}

// HandleFindMatchingCandidates 处理岗位→候选人方向的匹配排名请求。
// GET /api/v1/match/candidates/:job_id?limit=&min_score=&min_experience=
func (h *MatchHandler) HandleFindMatchingCandidates(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "job_id 不能为空"})
		return
	}

	minScore, err := parseMinScore(c, h.cfg.Matching.DefaultMinScore)
	if err != nil {
		writeError(c, err)
		return
	}

	filters := matching.CandidateMatchFilters{
		Limit:    parseLimit(c, h.cfg.Matching.DefaultLimit),
		MinScore: minScore,
	}
	if expStr := c.Query("min_experience"); expStr != "" {
		exp, err := strconv.Atoi(expStr)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": fmt.Sprintf("min_experience 必须是整数: %q", expStr)})
			return
		}
		filters.MinExperience = &exp
	}

	ranked, err := h.service.FindMatchingCandidates(ctx, jobID, filters)
	if err != nil {
		h.logger.Printf("候选人匹配失败 for JobID %s: %v", jobID, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"job_id":     jobID,
		"candidates": ranked,
		"count":      len(ranked),
	})
}

// HandleMatchScore 处理单对(简历,岗位)的详细匹配评分请求。
// GET /api/v1/match/score/:job_id?resume_id=
func (h *MatchHandler) HandleMatchScore(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	resumeID := c.Query("resume_id")
	if jobID == "" || resumeID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "job_id 和 resume_id 都不能为空"})
		return
	}

	result, err := h.service.CalculateMatchScore(ctx, resumeID, jobID)
	if err != nil {
		h.logger.Printf("计算匹配分失败 for ResumeID %s, JobID %s: %v", resumeID, jobID, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"resume_id": resumeID,
		"job_id":    jobID,
		"result":    result,
	})
}

// HandleSemanticSearch 处理自由文本的岗位语义搜索请求。
// GET /api/v1/match/search?q=&limit=&location=&job_type=&company=
func (h *MatchHandler) HandleSemanticSearch(ctx context.Context, c *app.RequestContext) {
	query := c.Query("q")

	filters := matching.SearchFilters{
		Limit:    parseLimit(c, h.cfg.Matching.DefaultLimit),
		Location: c.Query("location"),
		JobType:  types.JobType(c.Query("job_type")),
		Company:  c.Query("company"),
	}

	hits, err := h.service.SearchJobsSemantic(ctx, query, filters)
	if err != nil {
		h.logger.Printf("语义搜索失败 for query %q: %v", query, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}

// HandleStats 处理向量索引统计信息请求。
// GET /api/v1/match/stats
func (h *MatchHandler) HandleStats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.Printf("获取索引统计失败: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, stats)
}

// HandleIndexJob 处理岗位的同步索引请求，供索引重建或补偿使用。
// POST /api/v1/match/index/job/:job_id
func (h *MatchHandler) HandleIndexJob(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "job_id 不能为空"})
		return
	}

	job, err := h.storage.MySQL.GetJobByID(ctx, jobID)
	if err != nil {
		writeError(c, err)
		return
	}

	pointID, err := h.service.IndexJob(ctx, job)
	if err != nil {
		h.logger.Printf("索引岗位失败 for JobID %s: %v", jobID, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"job_id":   jobID,
		"point_id": pointID,
	})
}

// HandleIndexResume 处理简历的同步索引请求。
// POST /api/v1/match/index/resume/:resume_id
func (h *MatchHandler) HandleIndexResume(ctx context.Context, c *app.RequestContext) {
	resumeID := c.Param("resume_id")
	if resumeID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resume_id 不能为空"})
		return
	}

	resume, err := h.storage.MySQL.GetResumeByID(ctx, resumeID)
	if err != nil {
		writeError(c, err)
		return
	}

	pointID, err := h.service.IndexResume(ctx, resume)
	if err != nil {
		h.logger.Printf("索引简历失败 for ResumeID %s: %v", resumeID, err)
		writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"resume_id": resumeID,
		"point_id":  pointID,
	})
}
