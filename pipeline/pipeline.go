// Package pipeline orchestrates a scan: discovery, per-file parsing and
// scanner dispatch across a bounded worker pool, and single-threaded merge
// into the immutable architecture model.
package pipeline

import (
	"context"

	"github.com/viant/afs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/config"
	"github.com/emilholmegaard/doc-architect/merge"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser"
	"github.com/emilholmegaard/doc-architect/scanner"
)

// Summary reports the per-scan counters surfaced next to the model.
type Summary struct {
	FilesScanned    int
	FilesSkipped    int
	ScannersRun     int
	FindingsEmitted int
	Nodes           int
	Edges           int
	Projects        []Project
}

// Pipeline wires the process-wide registries together. Registries are
// read-only after construction; the pipeline itself is safe for repeated
// scans.
type Pipeline struct {
	parsers  *parser.Registry
	scanners *scanner.Registry
	merger   *merge.Merger
	logger   *zap.Logger
	fs       afs.Service
}

// New creates a pipeline over explicit registries.
func New(parsers *parser.Registry, scanners *scanner.Registry, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		parsers:  parsers,
		scanners: scanners,
		merger:   merge.New(scanners),
		logger:   logger,
		fs:       afs.New(),
	}
}

// NewDefault creates a pipeline over the built-in parser and scanner
// registries.
func NewDefault(logger *zap.Logger) *Pipeline {
	return New(parser.DefaultRegistry(), scanner.NewDefault(), logger)
}

// fileResult carries one file's outcome back to the aggregation stage.
type fileResult struct {
	findings    []model.Finding
	scannersRun int
	skipped     bool
}

// Scan walks the root, parses and scans every applicable file and merges the
// findings. Only an unreadable root or cancellation fail the scan; every
// other problem is contained to one file or one scanner/file combination and
// logged at WARN.
func (p *Pipeline) Scan(ctx context.Context, root string, cfg *config.Config) (*model.Architecture, *Summary, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	workers := cfg.Scan.Workers
	if workers <= 0 {
		workers = config.Default().Scan.Workers
	}
	enabled := p.scanners.Enabled(cfg, p.logger)

	discovered, err := discover(root, cfg.Scan.Excludes)
	if err != nil {
		return nil, nil, err
	}
	// Files matching no registered scanner's predicate never reach a worker.
	files := discovered[:0:0]
	for _, file := range discovered {
		probe := model.NewFileEvidence(file.relPath, file.language, nil)
		if p.scanners.Applicable(probe) {
			files = append(files, file)
		}
	}

	results := make([]fileResult, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			// Cancellation is observed between files, never mid-file.
			select {
			case <-groupCtx.Done():
				return ErrCancelled
			default:
			}
			results[i] = p.scanFile(file, enabled)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, ErrCancelled
	}
	if ctx.Err() != nil {
		return nil, nil, ErrCancelled
	}

	summary := &Summary{Projects: detectProjects(files)}
	var findings []model.Finding
	for _, result := range results {
		if result.skipped {
			summary.FilesSkipped++
			continue
		}
		if result.scannersRun == 0 {
			continue
		}
		summary.FilesScanned++
		summary.ScannersRun += result.scannersRun
		findings = append(findings, result.findings...)
	}
	summary.FindingsEmitted = len(findings)

	arch := p.merger.Merge(findings)
	summary.Nodes = len(arch.Nodes())
	summary.Edges = len(arch.Edges())
	return arch, summary, nil
}

// scanFile reads, parses and scans a single file. The content buffer is
// scoped to this call and released once every scanner ran.
func (p *Pipeline) scanFile(file discoveredFile, enabled map[string]bool) fileResult {
	probe := model.NewFileEvidence(file.relPath, file.language, nil)
	applicable := p.scanners.ForFile(probe, enabled)
	if len(applicable) == 0 {
		return fileResult{}
	}

	content, err := p.fs.DownloadWithURL(context.Background(), file.absPath)
	if err != nil {
		p.logger.Warn("file read failed", zap.String("path", file.relPath), zap.Error(err))
		return fileResult{skipped: true}
	}
	ev := model.NewFileEvidence(file.relPath, file.language, content)
	astFile, ok := p.parseFile(ev)
	if !ok {
		return fileResult{skipped: true}
	}

	result := fileResult{}
	for _, s := range applicable {
		result.findings = append(result.findings, p.runScanner(s, ev, astFile)...)
		result.scannersRun++
	}
	return result
}

// parseFile obtains the AST facade for the evidence, or nil when no adapter
// covers the language. Parse failures are contained: they are logged and
// reported as false, and the file is skipped with no findings.
func (p *Pipeline) parseFile(ev *model.FileEvidence) (*ast.File, bool) {
	adapter := p.parsers.For(ev.Language())
	if adapter == nil {
		return nil, true
	}
	file, err := adapter.Parse(ev)
	if err != nil {
		p.logger.Warn("parse failed",
			zap.String("path", ev.Path()),
			zap.String("language", string(ev.Language())),
			zap.Error(err))
		return nil, false
	}
	if file != nil && file.Degraded {
		p.logger.Warn("grammar parse degraded to text salvage",
			zap.String("path", ev.Path()),
			zap.String("language", string(ev.Language())))
	}
	return file, true
}

// runScanner invokes one scanner with panic containment: a failing scanner
// yields no findings for this file and the scan continues.
func (p *Pipeline) runScanner(s *scanner.Scanner, ev *model.FileEvidence, file *ast.File) (findings []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("scanner failed",
				zap.String("scanner", s.ID),
				zap.String("path", ev.Path()),
				zap.Any("panic", r))
			findings = nil
		}
	}()
	return s.Scan(ev, file)
}
