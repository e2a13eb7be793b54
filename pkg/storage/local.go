package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// LocalStore 本地文件系统存储实现
// 预签名对本地文件没有意义，PresignURL总是返回空链接
type LocalStore struct{}

// NewLocalStore 创建本地存储实例
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// Fetch 打开本地文件
func (s *LocalStore) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file %s: %v", path, err)
	}
	return file, nil
}

// PresignURL 本地文件不支持预签名，返回空链接
func (s *LocalStore) PresignURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	return "", nil
}

// Router 按路径类型路由的组合存储
// s3://路径走远程存储，其余路径走本地文件系统
type Router struct {
	local  ObjectStore
	remote ObjectStore
}

// NewRouter 创建组合存储实例
// remote可以为nil，此时遇到远程路径会返回错误
func NewRouter(local ObjectStore, remote ObjectStore) *Router {
	return &Router{
		local:  local,
		remote: remote,
	}
}

// Fetch 按路径类型分发获取请求
func (r *Router) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if IsRemote(path) {
		if r.remote == nil {
			return nil, fmt.Errorf("remote storage not configured, cannot fetch %s", path)
		}
		return r.remote.Fetch(ctx, path)
	}
	return r.local.Fetch(ctx, path)
}

// PresignURL 预签名请求总是交给远程存储
func (r *Router) PresignURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	if r.remote == nil {
		return "", nil
	}
	return r.remote.PresignURL(ctx, bucket, key, ttl)
}
