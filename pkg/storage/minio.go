package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignMaxTTL S3预签名链接的后端上限（sigv4规定为7天）
const PresignMaxTTL = 7 * 24 * time.Hour

// MinioStore S3兼容对象存储实现
type MinioStore struct {
	client *minio.Client            // MinIO客户端
	creds  *credentials.Credentials // 凭证，用于判断预签名是否可用
}

// MinioConfig S3兼容存储配置
type MinioConfig struct {
	Endpoint  string // 服务端点
	AccessKey string // 访问密钥ID
	SecretKey string // 秘密访问密钥
	UseSSL    bool   // 是否使用SSL
	Region    string // 区域（可选）
}

// NewMinioStore 创建S3兼容存储实例
// 未显式配置密钥时依次尝试环境变量和AWS凭证文件，
// 全部缺失时客户端仍然可用，只是无法生成预签名链接
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
		})
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	return &MinioStore{
		client: client,
		creds:  creds,
	}, nil
}

// Fetch 获取远程对象内容
// 对象不存在时返回包装了ErrObjectNotFound的错误
func (s *MinioStore) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %v", path, err)
	}

	// GetObject是惰性的，用Stat提前暴露NotFound等错误
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat object %s: %v", path, err)
	}

	return obj, nil
}

// PresignURL 为远程对象生成预签名下载链接
// 凭证缺失或不完整时返回空链接（文档照常生成，只是没有回链）
func (s *MinioStore) PresignURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl >= PresignMaxTTL {
		return "", fmt.Errorf("presign ttl %v must be positive and below %v", ttl, PresignMaxTTL)
	}

	// 匿名客户端无法签名，直接降级为无链接
	v, err := s.creds.Get()
	if err != nil || v.AccessKeyID == "" || v.SecretAccessKey == "" {
		return "", nil
	}

	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s/%s: %v", bucket, key, err)
	}
	return u.String(), nil
}
