package matching

import (
	"errors"
	"fmt"
)

// 匹配核心的错误分类。
// ErrNotFound 与 ErrValidation 用 errors.Is 判断，依赖失败用 errors.As 取 *DependencyError。
var (
	// ErrNotFound 主体实体（简历或岗位）在查询时不存在
	ErrNotFound = errors.New("记录不存在")

	// ErrValidation 入参不合法，在任何嵌入/索引调用之前拒绝
	ErrValidation = errors.New("参数校验失败")
)

// DependencyError 外部依赖（嵌入服务或向量索引）不可达或返回错误。
// 排名和搜索路径将其原样上抛（不返回降级的部分结果）；
// 索引写入的调用方记录日志后继续，不阻塞主存储写入。
type DependencyError struct {
	// Dependency 出错的依赖名，如 "embedder"、"vector_index"
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("依赖 %s 调用失败: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// newDependencyError 包装一个依赖调用失败
func newDependencyError(dependency string, err error) *DependencyError {
	return &DependencyError{Dependency: dependency, Err: err}
}
