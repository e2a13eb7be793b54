package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/fyerfyer/doc-preview-system/internal/models"
)

// Rasterizer PDF页面光栅化器接口
// 负责把本地PDF文件的单个页面转换为可内嵌的图像
type Rasterizer interface {
	// Open 打开本地PDF文件
	Open(path string) (RasterDocument, error)
}

// RasterDocument 已打开的PDF文档
// 同一记录的多个span共享一次Open，逐页调用RenderPage
type RasterDocument interface {
	// PageCount 返回文档总页数
	PageCount() int

	// RenderPage 将指定页面渲染为base64编码的PNG图像
	// pageNum是1起始的页码，越界时返回包装了models.ErrPageOutOfRange的错误
	RenderPage(pageNum int) (string, error)

	// Close 释放文档资源
	Close() error
}

// FitzRasterizer 基于MuPDF的光栅化器实现
type FitzRasterizer struct{}

// NewFitzRasterizer 创建MuPDF光栅化器
func NewFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{}
}

// Open 打开并校验PDF文件
// 先用pdfcpu做结构校验，损坏的PDF在这里以可识别的错误失败，
// 而不是深入到MuPDF渲染阶段才报错
func (r *FitzRasterizer) Open(path string) (RasterDocument, error) {
	if _, err := api.PageCountFile(path); err != nil {
		return nil, fmt.Errorf("failed to validate pdf %s: %v", path, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %v", path, err)
	}

	return &fitzDocument{doc: doc}, nil
}

// fitzDocument MuPDF文档句柄
type fitzDocument struct {
	doc *fitz.Document
}

// PageCount 返回文档总页数
func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage 渲染单个页面为base64 PNG
// 页码为1起始，内部转换为MuPDF的0起始索引
func (d *fitzDocument) RenderPage(pageNum int) (string, error) {
	count := d.doc.NumPage()
	if pageNum < 1 || pageNum > count {
		return "", fmt.Errorf("%w: page %d of %d", models.ErrPageOutOfRange, pageNum, count)
	}

	img, err := d.doc.Image(pageNum - 1)
	if err != nil {
		return "", fmt.Errorf("failed to render page %d: %v", pageNum, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page %d image: %v", pageNum, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Close 释放MuPDF文档资源
func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
