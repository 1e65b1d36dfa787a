package handler

import (
	"context"
	"log"
	"os"
	"time"

	"career-match-go/internal/config"
	"career-match-go/internal/constants"
	"career-match-go/internal/matching"
	"career-match-go/internal/storage"
	"career-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
)

// JobHandler 负责岗位的创建与查询。
type JobHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	service *matching.MatchService
	logger  *log.Logger
}

// NewJobHandler 创建一个新的 JobHandler 实例。
func NewJobHandler(cfg *config.Config, storage *storage.Storage, service *matching.MatchService) *JobHandler {
	return &JobHandler{
		cfg:     cfg,
		storage: storage,
		service: service,
		logger:  log.New(os.Stdout, "[JobHandler] ", log.LstdFlags|log.Lshortfile),
	}
}

// CreateJobRequest 创建岗位的请求体
type CreateJobRequest struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	SalaryMin       *int     `json:"salary_min"`
	SalaryMax       *int     `json:"salary_max"`
	JobType         string   `json:"job_type"`
	SkillsRequired  []string `json:"skills_required"`
	ExperienceLevel string   `json:"experience_level"`
	Source          string   `json:"source"`
	SourceURL       string   `json:"source_url"`
}

// HandleCreateJob 处理创建岗位的请求。岗位先写入主存储，
// 再发布索引事件交由消费者异步写入向量索引；消息队列不可用时
// 回退为同步索引，索引失败只记录日志，不影响创建结果。
// POST /api/v1/jobs
func (h *JobHandler) HandleCreateJob(ctx context.Context, c *app.RequestContext) {
	var req CreateJobRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
		return
	}
	if req.Title == "" || req.Company == "" || req.Description == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "title、company、description 不能为空"})
		return
	}

	jobType := types.JobTypeFullTime
	if req.JobType != "" {
		parsed, err := types.ParseJobType(req.JobType)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		jobType = parsed
	}

	source := types.JobSourceManual
	if req.Source != "" {
		parsed, err := types.ParseJobSource(req.Source)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		source = parsed
	}

	jobID, err := uuid.NewV4()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "生成岗位ID失败"})
		return
	}

	job := &types.Job{
		JobID:           jobID.String(),
		Title:           req.Title,
		Company:         req.Company,
		Description:     req.Description,
		Location:        req.Location,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		JobType:         jobType,
		SkillsRequired:  req.SkillsRequired,
		ExperienceLevel: req.ExperienceLevel,
		Source:          source,
		SourceURL:       req.SourceURL,
		PostedAt:        time.Now(),
		IsActive:        true,
	}

	if err := h.storage.MySQL.CreateJob(ctx, job); err != nil {
		h.logger.Printf("创建岗位失败: %v", err)
		writeError(c, err)
		return
	}

	h.enqueueIndexEvent(ctx, constants.IndexEntityJob, job.JobID, func() error {
		_, err := h.service.IndexJob(ctx, job)
		return err
	})

	c.JSON(consts.StatusCreated, utils.H{
		"job_id": job.JobID,
		"job":    job,
	})
}

// enqueueIndexEvent 发布索引事件；消息队列不可用时回退为同步索引。
// 索引是尽力而为的补充动作，任何失败只记录日志。
func (h *JobHandler) enqueueIndexEvent(ctx context.Context, entityType, entityID string, syncIndex func() error) {
	if h.storage.RabbitMQ != nil {
		routingKey := h.cfg.RabbitMQ.IndexJobRoutingKey
		if entityType == constants.IndexEntityResume {
			routingKey = h.cfg.RabbitMQ.IndexResumeRoutingKey
		}
		msg := storage.IndexEventMessage{
			EntityType: entityType,
			EntityID:   entityID,
			EnqueuedAt: time.Now(),
		}
		if err := h.storage.RabbitMQ.PublishJSON(ctx, h.cfg.RabbitMQ.IndexEventsExchange, routingKey, msg, true); err != nil {
			h.logger.Printf("发布索引事件失败 for %s %s: %v，回退为同步索引", entityType, entityID, err)
		} else {
			return
		}
	}

	if err := syncIndex(); err != nil {
		h.logger.Printf("同步索引失败 for %s %s: %v", entityType, entityID, err)
	}
}

// HandleGetJob 处理按ID查询岗位的请求。
// GET /api/v1/jobs/:job_id
func (h *JobHandler) HandleGetJob(ctx context.Context, c *app.RequestContext) {
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
	c.JSON(consts.StatusOK, job)
}
