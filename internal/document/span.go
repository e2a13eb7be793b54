package document

import (
	"fmt"

	"github.com/fyerfyer/doc-preview-system/internal/models"
)

// SpanPolicy 越界span偏移量的处理策略
type SpanPolicy string

const (
	// SpanPolicyClamp 将越界偏移量收拢到文本边界内
	SpanPolicyClamp SpanPolicy = "clamp"
	// SpanPolicyStrict 越界偏移量导致该记录失败
	SpanPolicyStrict SpanPolicy = "strict"
)

// ResolveSpans 提取记录中的span列表
// 严格保持输入顺序，不排序、不去重、不校验单调性；
// 属性缺失时返回空列表（该记录渲染零个页面，不算错误）
func ResolveSpans(rec *models.Record) []models.Span {
	if rec.Attributes.PDFPageNumbers == nil {
		return []models.Span{}
	}
	return rec.Attributes.PDFPageNumbers
}

// SliceText 按span截取文本片段
// 偏移量是字节偏移。clamp策略把越界值收拢到[0, len(text)]，
// strict策略对任何越界返回错误
func SliceText(text string, span models.Span, policy SpanPolicy) (string, error) {
	start, end := span.Start, span.End

	if start < 0 || end < 0 || start > len(text) || end > len(text) || start > end {
		if policy == SpanPolicyStrict {
			return "", fmt.Errorf("%w: [%d,%d) over text of length %d",
				models.ErrSpanOutOfRange, start, end, len(text))
		}
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}
		if start > len(text) {
			start = len(text)
		}
		if end > len(text) {
			end = len(text)
		}
		if start > end {
			start = end
		}
	}

	return text[start:end], nil
}
