package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fyerfyer/doc-preview-system/internal/models"
	"github.com/fyerfyer/doc-preview-system/internal/source"
)

// ErrorPolicy 批处理的错误策略
type ErrorPolicy string

const (
	// ErrorPolicyAbort 第一条记录失败后取消剩余批次
	ErrorPolicyAbort ErrorPolicy = "abort"
	// ErrorPolicyContinue 隔离单条记录的失败，跑完整个批次后汇总
	ErrorPolicyContinue ErrorPolicy = "continue"
)

// RecordFailure 单条记录的失败信息
type RecordFailure struct {
	ID         string // 记录ID（解析失败时可能为空）
	SourceFile string // 源文件路径
	Err        error  // 失败原因
}

// BatchReport 一次批处理的结果汇总
type BatchReport struct {
	Total     int             // 提交处理的记录总数
	Succeeded int             // 成功的记录数
	Failures  []RecordFailure // 失败的记录明细
}

// Pipeline 批处理流水线
// 并发分发记录给装配器，跟踪完成情况并汇总失败
type Pipeline struct {
	assembler   *Assembler
	concurrency int
	onError     ErrorPolicy
	logger      *logrus.Logger
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	Assembler   *Assembler
	Concurrency int         // worker数量，默认为GOMAXPROCS
	OnError     ErrorPolicy // 默认continue
	Logger      *logrus.Logger
}

// NewPipeline 创建批处理流水线
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.OnError == "" {
		cfg.OnError = ErrorPolicyContinue
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Pipeline{
		assembler:   cfg.Assembler,
		concurrency: cfg.Concurrency,
		onError:     cfg.OnError,
		logger:      cfg.Logger,
	}
}

// Run 读取全部记录并并发处理
// 每条非空行提交一个任务，完成顺序与提交顺序无关。
// continue策略下单条失败不影响其他记录；abort策略下
// 第一条失败会取消尚未开始的任务。所有已提交任务
// 结束后返回汇总报告
func (p *Pipeline) Run(ctx context.Context, lines *source.LineReader) (*BatchReport, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	report := &BatchReport{}
	var mu sync.Mutex

	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}

		// abort策略下第一条失败会取消gctx，停止继续分发
		if gctx.Err() != nil {
			break
		}

		mu.Lock()
		report.Total++
		mu.Unlock()

		g.Go(func() error {
			id, sourceFile, err := p.processLine(gctx, line)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				report.Failures = append(report.Failures, RecordFailure{
					ID:         id,
					SourceFile: sourceFile,
					Err:        err,
				})
				p.logger.WithFields(logrus.Fields{
					"record_id":   id,
					"source_file": sourceFile,
				}).Errorf("Failed to process record: %v", err)

				if p.onError == ErrorPolicyAbort {
					return err
				}
				return nil
			}

			report.Succeeded++
			p.logger.WithFields(logrus.Fields{
				"record_id": id,
				"completed": report.Succeeded + len(report.Failures),
				"total":     report.Total,
			}).Info("Record completed")
			return nil
		})
	}

	waitErr := g.Wait()

	if err := lines.Err(); err != nil {
		return report, fmt.Errorf("failed to read input: %v", err)
	}
	if waitErr != nil {
		return report, fmt.Errorf("batch aborted: %w", waitErr)
	}
	return report, nil
}

// processLine 解析并处理单行输入
// JSON解析失败属于该记录自身的失败，不是批次级错误
func (p *Pipeline) processLine(ctx context.Context, line string) (id string, sourceFile string, err error) {
	var rec models.Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return "", "", fmt.Errorf("failed to parse record json: %v", err)
	}

	if err := p.assembler.Assemble(ctx, &rec); err != nil {
		return rec.ID, rec.SourceFile(), err
	}
	return rec.ID, rec.SourceFile(), nil
}
