package document

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-preview-system/internal/models"
)

// makeTestPDF 生成指定页数的测试PDF文件
func makeTestPDF(t *testing.T, pages int) string {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 14)
		pdf.Cell(40, 10, fmt.Sprintf("Test page %d", i))
	}

	path := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

// TestFitzRasterizer 测试PDF页面光栅化
func TestFitzRasterizer(t *testing.T) {
	path := makeTestPDF(t, 2)

	rasterizer := NewFitzRasterizer()
	doc, err := rasterizer.Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.PageCount())

	t.Run("RenderFirstPage", func(t *testing.T) {
		img, err := doc.RenderPage(1)
		require.NoError(t, err)
		require.NotEmpty(t, img)

		// 输出必须是合法base64，解码后是PNG
		raw, err := base64.StdEncoding.DecodeString(img)
		require.NoError(t, err)
		require.Greater(t, len(raw), 8)
		assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), raw[:8])
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := doc.RenderPage(2)
		require.NoError(t, err)
		second, err := doc.RenderPage(2)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("PageOutOfRange", func(t *testing.T) {
		for _, page := range []int{0, -1, 3} {
			_, err := doc.RenderPage(page)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrPageOutOfRange)
		}
	})
}

// TestFitzRasterizerCorruptPDF 测试损坏的PDF在打开阶段失败
func TestFitzRasterizerCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	_, err := NewFitzRasterizer().Open(path)
	assert.Error(t, err)
}
