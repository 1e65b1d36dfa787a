package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"career-match-go/internal/config"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 关系型数据库，岗位与简历的主存储
	MySQL *MySQL

	// 键值存储，上传去重与索引锁
	Redis *Redis

	// 对象存储，原始简历文件
	MinIO *MinIO

	// 消息队列，索引事件
	RabbitMQ *RabbitMQ

	// 向量索引，岗位与简历各一个集合
	JobIndex    *Qdrant
	ResumeIndex *Qdrant
}

// NewStorage 创建存储管理器。MySQL与Qdrant是匹配服务的硬依赖，
// 初始化失败直接返回错误；其余组件初始化失败仅记录警告。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error
	var initErrors []string

	log.Printf("初始化MySQL...")
	storage.MySQL, err = NewMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("初始化MySQL失败: %w", err)
	}

	log.Printf("初始化Qdrant...")
	storage.JobIndex, err = NewQdrant(&cfg.Qdrant, cfg.Qdrant.JobsCollection)
	if err != nil {
		return nil, fmt.Errorf("初始化岗位向量索引失败: %w", err)
	}
	storage.ResumeIndex, err = NewQdrant(&cfg.Qdrant, cfg.Qdrant.ResumesCollection)
	if err != nil {
		return nil, fmt.Errorf("初始化简历向量索引失败: %w", err)
	}

	// 初始化Redis（如果配置了）
	if cfg.Redis.Address != "" {
		log.Printf("初始化Redis at %s...", cfg.Redis.Address)
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Printf("警告: 初始化Redis失败: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		log.Printf("Redis未配置, 跳过初始化.")
	}

	// 初始化MinIO（如果配置了）
	if cfg.MinIO.Endpoint != "" {
		var minioLogger *log.Logger
		if cfg.Logger.Level == "debug" {
			minioLogger = log.New(os.Stderr, "[MinIOStorage] ", log.LstdFlags|log.Lshortfile)
		} else {
			minioLogger = log.New(io.Discard, "", 0)
		}
		storage.MinIO, err = NewMinIO(&cfg.MinIO, minioLogger)
		if err != nil {
			log.Printf("警告: 初始化MinIO失败: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	}

	// 初始化RabbitMQ（如果配置了）
	if cfg.RabbitMQ.URL != "" {
		log.Printf("初始化RabbitMQ...")
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			log.Printf("警告: 初始化RabbitMQ失败: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else if err := storage.RabbitMQ.SetupIndexTopology(); err != nil {
			log.Printf("警告: 声明索引事件拓扑失败: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ topology: %v", err))
		}
	}

	if len(initErrors) > 0 {
		log.Printf("警告: 以下存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Printf("关闭RabbitMQ连接失败: %v", err)
		}
	}

	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Printf("关闭MySQL连接失败: %v", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
	// Qdrant走HTTP、MinIO的SDK都不需要显式Close
}
