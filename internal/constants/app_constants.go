package constants

// 索引事件的实体类型
const (
	IndexEntityJob    = "job"
	IndexEntityResume = "resume"
)
