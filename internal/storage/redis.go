package storage

import (
	"context"
	"fmt"
	"time"

	"career-match-go/internal/config"
	"career-match-go/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrRedisNotFound key不存在
var ErrRedisNotFound = redis.Nil

// Redis 提供上传去重与索引写入锁功能
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		// 连接生命周期
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis客户端连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365 // 默认1年
	}
	return time.Duration(days) * 24 * time.Hour
}

// CheckAndSetUploadMD5 原子地检查并登记上传文件的MD5。
// 返回 (exists, existingResumeID)：MD5已存在时返回关联的简历ID；
// 不存在时登记 md5→resumeID 映射并返回 exists=false。
func (r *Redis) CheckAndSetUploadMD5(ctx context.Context, md5Hex string, resumeID string) (bool, string, error) {
	if r.Client == nil {
		return false, "", fmt.Errorf("redis client is not initialized")
	}

	setKey := constants.KeyUploadMD5Set
	exists, err := r.Client.SIsMember(ctx, setKey, md5Hex).Result()
	if err != nil {
		return false, "", fmt.Errorf("检查MD5是否存在失败: %w", err)
	}
	mapKey := fmt.Sprintf(constants.KeyMD5ToResumeID, md5Hex)
	if exists {
		existingID, err := r.Client.Get(ctx, mapKey).Result()
		if err != nil && err != redis.Nil {
			return true, "", fmt.Errorf("获取已存在的简历ID失败: %w", err)
		}
		return true, existingID, nil
	}

	// MD5不存在，原子地添加
	pipe := r.Client.Pipeline()
	setCmd := pipe.SAdd(ctx, setKey, md5Hex)
	setNXCmd := pipe.SetNX(ctx, mapKey, resumeID, r.GetMD5ExpireDuration())
	pipe.ExpireNX(ctx, setKey, r.GetMD5ExpireDuration())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, "", fmt.Errorf("执行原子添加MD5操作失败: %w", err)
	}
	if setCmd.Val() > 0 && setNXCmd.Val() {
		return false, "", nil
	}

	// 极小的并发窗口中被其它进程抢先登记，重新获取
	existingID, err := r.Client.Get(ctx, mapKey).Result()
	if err != nil {
		return true, "", fmt.Errorf("获取已存在的简历ID失败: %w", err)
	}
	return true, existingID, nil
}

// RemoveUploadMD5 移除上传MD5登记，用于主存储写入失败后的回滚
func (r *Redis) RemoveUploadMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	pipe := r.Client.Pipeline()
	pipe.SRem(ctx, constants.KeyUploadMD5Set, md5Hex)
	pipe.Del(ctx, fmt.Sprintf(constants.KeyMD5ToResumeID, md5Hex))
	_, err := pipe.Exec(ctx)
	return err
}

// AcquireIndexLock 获取某实体的索引写入锁，防止同一实体的并发重复索引。
// 返回锁持有者标识；未获取到锁时返回空字符串。
func (r *Redis) AcquireIndexLock(ctx context.Context, entityType, entityID string, expiration time.Duration) (string, error) {
	lockKey := fmt.Sprintf(constants.KeyIndexLock, entityType, entityID)
	return r.AcquireLock(ctx, lockKey, expiration)
}

// ReleaseIndexLock 释放某实体的索引写入锁
func (r *Redis) ReleaseIndexLock(ctx context.Context, entityType, entityID string, lockValue string) (bool, error) {
	lockKey := fmt.Sprintf(constants.KeyIndexLock, entityType, entityID)
	return r.ReleaseLock(ctx, lockKey, lockValue)
}

// AcquireLock 尝试获取一个分布式锁
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	// 生成一个随机值作为锁的持有者标识
	lockValue := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := r.Client.SetNX(ctx, lockKey, lockValue, expiration).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return lockValue, nil
	}
	return "", nil
}

// ReleaseLock 释放一个分布式锁，使用Lua脚本保证原子性
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	// Lua脚本: 如果key存在且值匹配，则删除key
	script := `
        if redis.call("get", KEYS[1]) == ARGV[1] then
            return redis.call("del", KEYS[1])
        else
            return 0
        end
    `
	res, err := r.Client.Eval(ctx, script, []string{lockKey}, lockValue).Result()
	if err != nil {
		return false, err
	}
	if released, ok := res.(int64); ok && released == 1 {
		return true, nil
	}
	return false, nil
}
