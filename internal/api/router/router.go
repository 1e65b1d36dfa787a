package router

import (
	"context"

	"career-match-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(
	h *server.Hertz,
	matchHandler *handler.MatchHandler,
	jobHandler *handler.JobHandler,
	resumeHandler *handler.ResumeHandler,
) {
	api := h.Group("/api/v1")

	// 岗位
	api.POST("/jobs", jobHandler.HandleCreateJob)
	api.GET("/jobs/:job_id", jobHandler.HandleGetJob)

	// 简历
	api.POST("/resumes/upload", resumeHandler.HandleResumeUpload)
	api.GET("/resumes/:resume_id", resumeHandler.HandleGetResume)
	api.GET("/resumes/:resume_id/file", resumeHandler.HandleGetResumeFileURL)

	// 匹配与搜索
	match := api.Group("/match")
	match.GET("/jobs", matchHandler.HandleFindMatchingJobs)
	match.GET("/candidates/:job_id", matchHandler.HandleFindMatchingCandidates)
	match.GET("/score/:job_id", matchHandler.HandleMatchScore)
	match.GET("/search", matchHandler.HandleSemanticSearch)
	match.GET("/stats", matchHandler.HandleStats)
	match.POST("/index/job/:job_id", matchHandler.HandleIndexJob)
	match.POST("/index/resume/:resume_id", matchHandler.HandleIndexResume)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
