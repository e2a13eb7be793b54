package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordUnmarshal 测试输入记录的JSON解析
func TestRecordUnmarshal(t *testing.T) {
	line := `{
		"id": "doc-001",
		"text": "Hello World",
		"attributes": {"pdf_page_numbers": [[0, 5, 1], [5, 11, 2]]},
		"metadata": {"Source-File": "s3://bucket/path/doc.pdf", "pdf-total-pages": 2}
	}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(line), &rec))

	assert.Equal(t, "doc-001", rec.ID)
	assert.Equal(t, "Hello World", rec.Text)
	assert.Equal(t, []Span{{0, 5, 1}, {5, 11, 2}}, rec.Attributes.PDFPageNumbers)
	assert.Equal(t, "s3://bucket/path/doc.pdf", rec.SourceFile())
}

// TestRecordMissingFields 测试可选字段缺失时的降级行为
func TestRecordMissingFields(t *testing.T) {
	t.Run("NoAttributes", func(t *testing.T) {
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","text":"x"}`), &rec))
		assert.Nil(t, rec.Attributes.PDFPageNumbers)
		assert.Equal(t, "", rec.SourceFile())
	})

	t.Run("NonStringSourceFile", func(t *testing.T) {
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(`{"metadata":{"Source-File":42}}`), &rec))
		assert.Equal(t, "", rec.SourceFile())
	})
}

// TestSpanUnmarshal 测试span三元组的解析
func TestSpanUnmarshal(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		var s Span
		require.NoError(t, json.Unmarshal([]byte(`[10, 20, 3]`), &s))
		assert.Equal(t, Span{Start: 10, End: 20, PageNum: 3}, s)
	})

	t.Run("WrongLength", func(t *testing.T) {
		var s Span
		err := json.Unmarshal([]byte(`[10, 20]`), &s)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSpan)
	})

	t.Run("NotAnArray", func(t *testing.T) {
		var s Span
		assert.Error(t, json.Unmarshal([]byte(`{"start":1}`), &s))
	})
}

// TestSpanMarshalRoundTrip 测试span序列化回三元组形式
func TestSpanMarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Span{Start: 1, End: 2, PageNum: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 2, 3]`, string(data))
}
