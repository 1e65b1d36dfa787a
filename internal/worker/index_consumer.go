package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"career-match-go/internal/config"
	"career-match-go/internal/constants"
	"career-match-go/internal/matching"
	"career-match-go/internal/storage"
)

// 单条索引事件的处理超时
const indexEventTimeout = 30 * time.Second

// 索引写入锁的持有时间，覆盖嵌入调用与索引写入
const indexLockExpiry = 2 * time.Minute

// IndexConsumer 消费索引事件队列，将岗位与简历异步写入向量索引。
// 每个实体先获取Redis写入锁，防止同一实体被并发重复索引。
type IndexConsumer struct {
	cfg     *config.Config
	storage *storage.Storage
	service *matching.MatchService
	logger  *log.Logger

	stopCh chan<- struct{}
}

// NewIndexConsumer 创建索引事件消费者
func NewIndexConsumer(cfg *config.Config, storage *storage.Storage, service *matching.MatchService) (*IndexConsumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if storage == nil || storage.RabbitMQ == nil {
		return nil, fmt.Errorf("消息队列未初始化")
	}
	if service == nil {
		return nil, fmt.Errorf("匹配服务不能为空")
	}
	return &IndexConsumer{
		cfg:     cfg,
		storage: storage,
		service: service,
		logger:  log.New(os.Stdout, "[IndexConsumer] ", log.LstdFlags|log.Lshortfile),
	}, nil
}

// Start 启动消费者
func (w *IndexConsumer) Start() error {
	prefetch := w.cfg.RabbitMQ.PrefetchCount
	if prefetch <= 0 {
		prefetch = 1
	}

	stopCh, err := w.storage.RabbitMQ.StartConsumer(w.cfg.RabbitMQ.IndexQueue, prefetch, w.handleMessage)
	if err != nil {
		return fmt.Errorf("启动索引事件消费者失败: %w", err)
	}
	w.stopCh = stopCh
	w.logger.Printf("索引事件消费者已启动，队列: %s", w.cfg.RabbitMQ.IndexQueue)
	return nil
}

// Stop 停止消费者
func (w *IndexConsumer) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

// handleMessage 处理单条索引事件。返回true时消息被确认，
// 返回false时消息被拒绝并重新入队等待重试。
func (w *IndexConsumer) handleMessage(body []byte) bool {
	var msg storage.IndexEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 无法解析的消息重试也不会成功，确认后丢弃
		w.logger.Printf("解析索引事件消息失败，丢弃: %v", err)
		return true
	}
	if msg.EntityID == "" {
		w.logger.Printf("索引事件缺少实体ID，丢弃: %s", string(body))
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), indexEventTimeout)
	defer cancel()

	if err := w.indexEntity(ctx, msg.EntityType, msg.EntityID); err != nil {
		// 记录已被删除时重试无意义，直接确认
		if errors.Is(err, matching.ErrNotFound) {
			w.logger.Printf("实体 %s %s 已不存在，丢弃索引事件", msg.EntityType, msg.EntityID)
			return true
		}
		w.logger.Printf("索引 %s %s 失败，消息将重新入队: %v", msg.EntityType, msg.EntityID, err)
		return false
	}
	return true
}

// indexEntity 在写入锁保护下索引单个实体
func (w *IndexConsumer) indexEntity(ctx context.Context, entityType, entityID string) error {
	if w.storage.Redis != nil {
		lockValue, err := w.storage.Redis.AcquireIndexLock(ctx, entityType, entityID, indexLockExpiry)
		if err != nil {
			return fmt.Errorf("获取索引锁失败: %w", err)
		}
		if lockValue == "" {
			// 另一个消费者正在索引同一实体，重新入队稍后处理
			return fmt.Errorf("实体 %s %s 的索引锁被占用", entityType, entityID)
		}
		defer func() {
			if _, err := w.storage.Redis.ReleaseIndexLock(ctx, entityType, entityID, lockValue); err != nil {
				w.logger.Printf("释放索引锁失败 for %s %s: %v", entityType, entityID, err)
			}
		}()
	}

	switch entityType {
	case constants.IndexEntityJob:
		job, err := w.storage.MySQL.GetJobByID(ctx, entityID)
		if err != nil {
			return err
		}
		if _, err := w.service.IndexJob(ctx, job); err != nil {
			return err
		}
	case constants.IndexEntityResume:
		resume, err := w.storage.MySQL.GetResumeByID(ctx, entityID)
		if err != nil {
			return err
		}
		if _, err := w.service.IndexResume(ctx, resume); err != nil {
			return err
		}
	default:
		return fmt.Errorf("未知的实体类型: %q", entityType)
	}

	w.logger.Printf("已索引 %s %s", entityType, entityID)
	return nil
}
