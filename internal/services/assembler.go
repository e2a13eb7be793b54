package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-preview-system/internal/document"
	"github.com/fyerfyer/doc-preview-system/internal/models"
	"github.com/fyerfyer/doc-preview-system/pkg/storage"
)

// Assembler 文档装配器
// 负责把单条记录装配成一个HTML预览文件
type Assembler struct {
	store      storage.ObjectStore // 对象存储客户端（所有worker共享，只读）
	rasterizer document.Rasterizer // PDF光栅化器
	tmpl       *template.Template  // 输出模板（所有worker共享，只读）
	outputDir  string              // 输出目录
	spanPolicy document.SpanPolicy // 越界span处理策略
	presignTTL time.Duration       // 预签名链接有效期
	logger     *logrus.Logger      // 日志
}

// AssemblerConfig 文档装配器配置
type AssemblerConfig struct {
	Store      storage.ObjectStore
	Rasterizer document.Rasterizer
	Template   *template.Template
	OutputDir  string
	SpanPolicy document.SpanPolicy
	PresignTTL time.Duration
	Logger     *logrus.Logger
}

// NewAssembler 创建文档装配器
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.SpanPolicy == "" {
		cfg.SpanPolicy = document.SpanPolicyClamp
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = storage.PresignMaxTTL - 100*time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Assembler{
		store:      cfg.Store,
		rasterizer: cfg.Rasterizer,
		tmpl:       cfg.Template,
		outputDir:  cfg.OutputDir,
		spanPolicy: cfg.SpanPolicy,
		presignTTL: cfg.PresignTTL,
		logger:     cfg.Logger,
	}
}

// Assemble 处理一条记录，生成对应的HTML预览文件
// 任何失败都不会留下半成品输出文件：渲染先完整落到内存，
// 最后一次性写盘
func (a *Assembler) Assemble(ctx context.Context, rec *models.Record) error {
	sourceFile := rec.SourceFile()
	if sourceFile == "" {
		return models.ErrMissingSourceFile
	}

	// 每条记录只远程拉取一次PDF，所有span共用本地副本
	localPDF, err := a.fetchToTemp(ctx, sourceFile)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", sourceFile, err)
	}
	defer os.Remove(localPDF)

	pages, err := a.renderPages(rec, localPDF)
	if err != nil {
		return err
	}

	link, err := a.buildLink(ctx, sourceFile)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = a.tmpl.Execute(&buf, models.Preview{
		ID:    rec.ID,
		Pages: pages,
		Link:  link,
	})
	if err != nil {
		return fmt.Errorf("failed to render template for record %s: %v", rec.ID, err)
	}

	outPath := filepath.Join(a.outputDir, OutputFileName(sourceFile))
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %v", outPath, err)
	}

	return nil
}

// fetchToTemp 把源PDF抓取到私有临时文件
// 临时文件归本次调用独占，调用方负责删除
func (a *Assembler) fetchToTemp(ctx context.Context, sourceFile string) (string, error) {
	data, err := storage.FetchBytes(ctx, a.store, sourceFile)
	if err != nil {
		return "", err
	}

	tmpPath := filepath.Join(os.TempDir(), "preview-"+uuid.New().String()+".pdf")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp pdf: %v", err)
	}
	return tmpPath, nil
}

// renderPages 按resolver顺序渲染记录的所有页面
// span顺序原样保留在输出中，不按页码重排
func (a *Assembler) renderPages(rec *models.Record, localPDF string) ([]models.RenderedPage, error) {
	spans := document.ResolveSpans(rec)
	pages := make([]models.RenderedPage, 0, len(spans))
	if len(spans) == 0 {
		return pages, nil
	}

	doc, err := a.rasterizer.Open(localPDF)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	for _, span := range spans {
		slice, err := document.SliceText(rec.Text, span, a.spanPolicy)
		if err != nil {
			return nil, err
		}

		image, err := doc.RenderPage(span.PageNum)
		if err != nil {
			return nil, err
		}

		pages = append(pages, models.RenderedPage{
			PageNum: span.PageNum,
			Text:    document.RenderText(slice),
			Image:   image,
		})
	}

	return pages, nil
}

// buildLink 为远程源文件生成预签名回链
// 凭证缺失时降级为无链接，本地文件没有回链
func (a *Assembler) buildLink(ctx context.Context, sourceFile string) (string, error) {
	if !storage.IsRemote(sourceFile) {
		return "", nil
	}

	bucket, key, err := storage.ParseS3Path(sourceFile)
	if err != nil {
		return "", err
	}

	link, err := a.store.PresignURL(ctx, bucket, key, a.presignTTL)
	if err != nil {
		return "", err
	}
	if link == "" {
		a.logger.WithField("source_file", sourceFile).
			Warn("Credentials not found or incomplete, omitting presigned link")
	}
	return link, nil
}

// OutputFileName 从源文件路径推导确定性的输出文件名
// 去掉scheme前缀，把路径分隔符和点替换为下划线。
// s3://b/k.pdf和s3://b/k/pdf会映射到同一个文件名，
// 这是已知并接受的碰撞情况
func OutputFileName(sourceFile string) string {
	name := sourceFile
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	name = strings.NewReplacer("/", "_", "\\", "_", ".", "_").Replace(name)
	return name + ".html"
}
