package handler

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"career-match-go/internal/config"
	"career-match-go/internal/constants"
	"career-match-go/internal/matching"
	"career-match-go/internal/storage"
	"career-match-go/internal/tracing"
	"career-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
)

// ResumeHandler 负责简历的上传、去重与入库。
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	service *matching.MatchService
	logger  *log.Logger
}

// NewResumeHandler 创建一个新的 ResumeHandler 实例。
func NewResumeHandler(cfg *config.Config, storage *storage.Storage, service *matching.MatchService) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: storage,
		service: service,
		logger:  log.New(os.Stdout, "[ResumeHandler] ", log.LstdFlags|log.Lshortfile),
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	ResumeID  string `json:"resume_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleResumeUpload 处理简历上传请求。
// 表单字段: file(原始文件,可选)、user_id(必填)、content_text(解析文本,必填)、
// skills(JSON数组或逗号分隔)、experience_years、education、name、is_primary。
// 文件MD5用于去重：重复上传直接返回已有简历ID，不再落库。
// POST /api/v1/resumes/upload
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	userID := c.PostForm("user_id")
	contentText := c.PostForm("content_text")
	if userID == "" || contentText == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "user_id 和 content_text 不能为空"})
		return
	}

	skills, err := parseStringListField(c.PostForm("skills"))
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "skills 字段解析失败: " + err.Error()})
		return
	}
	education, err := parseStringListField(c.PostForm("education"))
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "education 字段解析失败: " + err.Error()})
		return
	}

	experienceYears := 0
	if expStr := c.PostForm("experience_years"); expStr != "" {
		experienceYears, err = strconv.Atoi(expStr)
		if err != nil || experienceYears < 0 {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "experience_years 必须是非负整数"})
			return
		}
	}

	resumeID, err := uuid.NewV4()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "生成简历ID失败"})
		return
	}

	resume := &types.Resume{
		ResumeID:        resumeID.String(),
		UserID:          userID,
		Name:            c.PostForm("name"),
		ContentText:     contentText,
		Skills:          skills,
		ExperienceYears: experienceYears,
		Education:       education,
		IsPrimary:       c.PostForm("is_primary") == "true",
	}

	// 原始文件可选：存在时流式上传到MinIO并计算MD5用于去重
	var contentMD5, objectKey string
	fileHeader, fileErr := c.FormFile("file")
	if fileErr == nil && fileHeader != nil && h.storage.MinIO != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(consts.StatusInternalServerError, utils.H{"error": "打开上传文件失败"})
			return
		}
		defer file.Close()

		fileExt := filepath.Ext(fileHeader.Filename)
		objectKey, contentMD5, err = h.storage.MinIO.UploadResumeFileStreaming(
			ctx, resume.ResumeID, fileExt, file, fileHeader.Size)
		if err != nil {
			h.logger.Printf("上传简历文件失败: %v", err)
			c.JSON(consts.StatusInternalServerError, utils.H{"error": "上传简历文件失败"})
			return
		}
		resume.FilePathOSS = objectKey
	}

	// MD5去重检查：重复文件直接返回已有简历ID
	if contentMD5 != "" && h.storage.Redis != nil {
		exists, existingID, err := h.storage.Redis.CheckAndSetUploadMD5(ctx, contentMD5, resume.ResumeID)
		if err != nil {
			h.logger.Printf("MD5去重检查失败 for %s: %v，继续入库", contentMD5, err)
		} else if exists {
			h.logger.Printf("检测到重复的文件MD5 %s，返回已有简历 %s", contentMD5, existingID)
			// 刚上传的对象是冗余副本，清理失败不影响响应
			if objectKey != "" {
				if err := h.storage.MinIO.DeleteResumeFile(ctx, objectKey); err != nil {
					h.logger.Printf("清理重复上传的对象 %s 失败: %v", objectKey, err)
				}
			}
			c.JSON(consts.StatusOK, ResumeUploadResponse{
				ResumeID:  existingID,
				Status:    "duplicate",
				Duplicate: true,
			})
			return
		}
	}

	if err := h.storage.MySQL.CreateResume(ctx, resume, contentMD5); err != nil {
		h.logger.Printf("创建简历记录失败: %v", err)
		// 主存储写入失败，回滚MD5登记，避免后续同文件上传被误判为重复
		if contentMD5 != "" && h.storage.Redis != nil {
			if rbErr := h.storage.Redis.RemoveUploadMD5(ctx, contentMD5); rbErr != nil {
				h.logger.Printf("回滚MD5登记失败 for %s: %v", contentMD5, rbErr)
			}
		}
		writeError(c, err)
		return
	}

	h.logger.Printf("简历 %s 入库成功, user=%s", resume.ResumeID, tracing.MaskPII(userID))
	h.enqueueResumeIndexEvent(ctx, resume)

	c.JSON(consts.StatusCreated, ResumeUploadResponse{
		ResumeID: resume.ResumeID,
		Status:   "created",
	})
}

// enqueueResumeIndexEvent 发布简历索引事件，消息队列不可用时回退为同步索引
func (h *ResumeHandler) enqueueResumeIndexEvent(ctx context.Context, resume *types.Resume) {
	if h.storage.RabbitMQ != nil {
		msg := storage.IndexEventMessage{
			EntityType: constants.IndexEntityResume,
			EntityID:   resume.ResumeID,
			EnqueuedAt: time.Now(),
		}
		err := h.storage.RabbitMQ.PublishJSON(ctx,
			h.cfg.RabbitMQ.IndexEventsExchange, h.cfg.RabbitMQ.IndexResumeRoutingKey, msg, true)
		if err == nil {
			return
		}
		h.logger.Printf("发布简历索引事件失败 for %s: %v，回退为同步索引", resume.ResumeID, err)
	}

	if _, err := h.service.IndexResume(ctx, resume); err != nil {
		h.logger.Printf("同步索引简历失败 for %s: %v", resume.ResumeID, err)
	}
}

// HandleGetResume 处理按ID查询简历的请求。
// GET /api/v1/resumes/:resume_id
func (h *ResumeHandler) HandleGetResume(ctx context.Context, c *app.RequestContext) {
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
	c.JSON(consts.StatusOK, resume)
}

// HandleGetResumeFileURL 返回原始简历文件的预签名下载URL。
// GET /api/v1/resumes/:resume_id/file
func (h *ResumeHandler) HandleGetResumeFileURL(ctx context.Context, c *app.RequestContext) {
	resumeID := c.Param("resume_id")
	if resumeID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resume_id 不能为空"})
		return
	}
	if h.storage.MinIO == nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": "对象存储未配置"})
		return
	}

	resume, err := h.storage.MySQL.GetResumeByID(ctx, resumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	if resume.FilePathOSS == "" {
		c.JSON(consts.StatusNotFound, utils.H{"error": "该简历没有关联的原始文件"})
		return
	}

	url, err := h.storage.MinIO.GetPresignedURL(ctx, resume.FilePathOSS, 15*time.Minute)
	if err != nil {
		h.logger.Printf("生成预签名URL失败 for %s: %v", resumeID, err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "生成下载链接失败"})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"resume_id": resumeID,
		"url":       url,
	})
}

// parseStringListField 解析既可能是JSON数组也可能是逗号分隔的列表字段
func parseStringListField(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list, nil
}
