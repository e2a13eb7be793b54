package models

import (
	"encoding/json"
	"fmt"
	"html/template"
)

// SourceFileKey 记录元数据中源文件路径的键名
const SourceFileKey = "Source-File"

// Span 文本区间到PDF页码的映射
// Start和End是Text中的字节偏移量，PageNum是1起始的页码
type Span struct {
	Start   int
	End     int
	PageNum int
}

// UnmarshalJSON 从[start, end, page_num]三元组数组解析Span
func (s *Span) UnmarshalJSON(data []byte) error {
	var triple []int
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpan, err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("%w: expected 3 elements, got %d", ErrInvalidSpan, len(triple))
	}
	s.Start, s.End, s.PageNum = triple[0], triple[1], triple[2]
	return nil
}

// MarshalJSON 将Span序列化回三元组数组形式
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{s.Start, s.End, s.PageNum})
}

// Attributes 记录的标注属性
type Attributes struct {
	PDFPageNumbers []Span `json:"pdf_page_numbers"`
}

// Record 一条输入记录
// 对应JSONL输入文件中的一行，包含文档提取文本和页码标注
type Record struct {
	ID         string                 `json:"id"`
	Text       string                 `json:"text"`
	Attributes Attributes             `json:"attributes"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// SourceFile 返回记录元数据中的源PDF路径
// 路径可能是本地文件路径或s3://bucket/key形式的远程路径
func (r *Record) SourceFile() string {
	if r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata[SourceFileKey].(string); ok {
		return v
	}
	return ""
}

// RenderedPage 渲染完成的单个页面
// Text是已经安全转义的HTML片段，Image是base64编码的PNG图像
type RenderedPage struct {
	PageNum int
	Text    template.HTML
	Image   string
}

// Preview 传递给输出模板的文档预览数据
type Preview struct {
	ID    string
	Pages []RenderedPage
	Link  string
}
