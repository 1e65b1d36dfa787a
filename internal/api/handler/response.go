package handler

import (
	"errors"

	"career-match-go/internal/matching"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// writeError 将领域错误映射为HTTP状态码并写出统一的错误响应体。
// 参数校验错误→400，记录不存在→404，下游依赖失败→502，其余→500。
func writeError(c *app.RequestContext, err error) {
	var depErr *matching.DependencyError
	switch {
	case errors.Is(err, matching.ErrValidation):
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
	case errors.Is(err, matching.ErrNotFound):
		c.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
	case errors.As(err, &depErr):
		c.JSON(consts.StatusBadGateway, utils.H{"error": err.Error()})
	default:
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
	}
}
