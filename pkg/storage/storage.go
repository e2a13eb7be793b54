package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// S3Scheme 远程对象路径的URI前缀
const S3Scheme = "s3://"

// ErrObjectNotFound 对象不存在错误
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore 对象存储接口
// 定义获取对象内容和生成预签名链接的基本操作，
// 可以有不同实现（本地文件系统、S3兼容存储等）
type ObjectStore interface {
	// Fetch 按路径获取对象内容
	// path可以是本地文件路径或s3://bucket/key形式的远程路径
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)

	// PresignURL 为远程对象生成限时下载链接
	// 凭证缺失或不完整时返回空链接和nil错误（降级而非失败），
	// 其他错误正常返回
	PresignURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error)
}

// FetchBytes 获取对象的完整字节内容
func FetchBytes(ctx context.Context, store ObjectStore, path string) ([]byte, error) {
	rc, err := store.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object content: %v", err)
	}
	return data, nil
}

// IsRemote 判断路径是否为远程对象路径
func IsRemote(path string) bool {
	return strings.HasPrefix(path, S3Scheme)
}

// ParseS3Path 将s3://bucket/key形式的路径拆分为桶名和对象键
func ParseS3Path(path string) (bucket string, key string, err error) {
	if !IsRemote(path) {
		return "", "", fmt.Errorf("not an s3 path: %s", path)
	}

	rest := strings.TrimPrefix(path, S3Scheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid s3 path: %s", path)
	}
	return parts[0], parts[1], nil
}
