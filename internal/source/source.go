package source

import (
	"bufio"
	"context"
	"io"

	"github.com/fyerfyer/doc-preview-system/pkg/storage"
)

// 记录携带整篇文档文本，单行可能远超Scanner默认的64KB上限
const (
	initialBufSize = 1 << 20   // 1MB
	maxLineSize    = 256 << 20 // 256MB
)

// LineReader 行读取器
// 从本地文件或远程对象惰性产出原始文本行
type LineReader struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

// Open 打开行分隔的文本资源
// path可以是本地文件路径或s3://bucket/key形式的远程路径
func Open(ctx context.Context, store storage.ObjectStore, path string) (*LineReader, error) {
	rc, err := store.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)

	return &LineReader{
		rc:      rc,
		scanner: scanner,
	}, nil
}

// Scan 前进到下一行，没有更多行时返回false
func (r *LineReader) Scan() bool {
	return r.scanner.Scan()
}

// Text 返回当前行内容
func (r *LineReader) Text() string {
	return r.scanner.Text()
}

// Err 返回扫描过程中遇到的错误
func (r *LineReader) Err() error {
	return r.scanner.Err()
}

// Close 关闭底层资源
func (r *LineReader) Close() error {
	return r.rc.Close()
}
