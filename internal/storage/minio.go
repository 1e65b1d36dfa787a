package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"career-match-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ResumeFileStorage 简历原始文件存储接口
type ResumeFileStorage interface {
	// UploadResumeFile 上传原始简历文件，返回对象键
	UploadResumeFile(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// UploadResumeFileStreaming 流式上传简历文件并同时计算MD5，返回对象键和MD5
	UploadResumeFileStreaming(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)

	// GetResumeFile 读取原始简历文件内容
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)

	// GetPresignedURL 获取预签名下载URL
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteResumeFile 删除原始简历文件
	DeleteResumeFile(ctx context.Context, objectKey string) error
}

// 确保MinIO实现了ResumeFileStorage接口
var _ ResumeFileStorage = (*MinIO)(nil)

// MinIO 提供简历原始文件的对象存储功能
type MinIO struct {
	client          *minio.Client
	cfg             *config.MinIOConfig
	originalsBucket string
	logger          *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.OriginalsBucket == "" {
		return nil, fmt.Errorf("MinIO原始简历存储桶名称不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, originalsBucket: %s", cfg.Endpoint, cfg.OriginalsBucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:          client,
		cfg:             cfg,
		originalsBucket: cfg.OriginalsBucket,
		logger:          logger,
	}

	if err := m.ensureBucketExists(cfg.OriginalsBucket, cfg.Location); err != nil {
		logger.Printf("[MinIO] Failed to ensure originals bucket %s exists: %v", cfg.OriginalsBucket, err)
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", cfg.OriginalsBucket, err)
	}

	// 设置生命周期规则
	if cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(context.Background(), cfg.OriginalsBucket, "expire-originals", cfg.OriginalFileExpireDays); err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置对象过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	m.logger.Printf("[MinIO] Setting lifecycle rule for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	lcConfig := lifecycle.NewConfiguration()
	lcConfig.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	if err := m.client.SetBucketLifecycle(ctx, bucketName, lcConfig); err != nil {
		return err
	}
	m.logger.Printf("[MinIO] Successfully set lifecycle for bucket %s.", bucketName)
	return nil
}

// resumeObjectKey 构建简历原始文件的对象键，例如: resume/{resumeID}/original.pdf
func resumeObjectKey(resumeID, fileExt string) string {
	return fmt.Sprintf("resume/%s/original%s", resumeID, fileExt)
}

// UploadResumeFile 上传原始简历文件到originalsBucket，返回对象键
func (m *MinIO) UploadResumeFile(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectName := resumeObjectKey(resumeID, fileExt)
	contentType := getContentType(fileExt)

	_, err := m.client.PutObject(ctx, m.originalsBucket, objectName, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.originalsBucket, objectName, err)
	}
	return objectName, nil
}

// UploadResumeFileStreaming 流式上传简历文件并同时计算MD5
// 返回: objectKey, md5Hex, error
func (m *MinIO) UploadResumeFileStreaming(ctx context.Context, resumeID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectName := resumeObjectKey(resumeID, fileExt)
	contentType := getContentType(fileExt)

	// 使用TeeReader在上传的同时计算MD5
	md5Hash := md5.New()
	teeReader := io.TeeReader(reader, md5Hash)

	info, err := m.client.PutObject(ctx, m.originalsBucket, objectName, teeReader,
		fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("流式上传文件到MinIO失败: %w", err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))
	m.logger.Printf("[MinIO] Uploaded %s, ETag: %s, Size: %d, MD5: %s", objectName, info.ETag, info.Size, md5Hex)
	return objectName, md5Hex, nil
}

// GetResumeFile 从originalsBucket读取原始简历文件
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.originalsBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", m.originalsBucket, objectKey, err)
	}
	defer obj.Close()

	// Stat确认对象存在，GetObject本身是懒加载的
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", m.originalsBucket, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", m.originalsBucket, objectKey, err)
	}
	return data, nil
}

// GetPresignedURL 获取原始简历文件的预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.originalsBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteResumeFile 从originalsBucket删除原始简历文件
func (m *MinIO) DeleteResumeFile(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.originalsBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

// 获取内容类型
func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
