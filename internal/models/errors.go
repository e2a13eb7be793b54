package models

import "errors"

var (
	// ErrInvalidSpan 无效的span三元组错误
	ErrInvalidSpan = errors.New("invalid span triple")

	// ErrSpanOutOfRange span偏移量超出文本范围错误
	ErrSpanOutOfRange = errors.New("span offsets out of text range")

	// ErrPageOutOfRange 页码超出PDF页数范围错误
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrMissingSourceFile 记录缺少Source-File元数据错误
	ErrMissingSourceFile = errors.New("record has no Source-File metadata")
)
