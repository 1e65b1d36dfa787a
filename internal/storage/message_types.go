package storage

import "time"

// IndexEventMessage 索引事件消息，岗位或简历写入主存储后发布，
// 由索引消费者异步写入向量索引。
type IndexEventMessage struct {
	// EntityType 实体类型: constants.IndexEntityJob 或 constants.IndexEntityResume
	EntityType string `json:"entity_type"`
	// EntityID 岗位ID或简历ID
	EntityID string `json:"entity_id"`
	// EnqueuedAt 消息入队时间
	EnqueuedAt time.Time `json:"enqueued_at"`
}
