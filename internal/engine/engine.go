package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"archlint/internal/analyzer"
	"archlint/internal/analyzer/pyimports"
	"archlint/internal/enrich"
	"archlint/internal/errors"
	"archlint/internal/ir"
	"archlint/internal/logging"
	"archlint/internal/model"
	"archlint/internal/report"
	"archlint/internal/rules"
	"archlint/internal/snapshot"
	"archlint/internal/storage"
	"archlint/internal/vcs"
	"archlint/internal/version"
)

// ScanResult is everything one scan produced.
type ScanResult struct {
	Report   *report.Report
	Snapshot snapshot.Snapshot
	Diff     *snapshot.Diff
	Saved    *snapshot.SaveResult
	Run      *storage.RunRecord

	// Baseline summarizes the baseline comparison; zero when no baseline
	// was configured.
	Baseline snapshot.BaselineCounts
}

// Engine wires the full pipeline: analyze, merge, normalize, enrich,
// evaluate, snapshot, baseline, report.
//
// Scan degrades: every stage failure becomes an engine error in the report
// and the remaining stages still run. Only BuildGraph fails terminally.
type Engine struct {
	registry *analyzer.Registry

	merger     *ir.Merger
	normalizer *ir.Normalizer

	modelLoader    *model.Loader
	modelValidator *model.Validator
	modelResolver  *model.Resolver
	enricher       *enrich.Enricher

	parser    *rules.Parser
	compiler  *rules.Compiler
	evaluator *rules.Evaluator

	snapBuilder *snapshot.Builder
	diffEngine  *snapshot.DiffEngine
	baseline    *snapshot.BaselineService

	logger *logging.Logger
}

// New creates an engine with the bundled analyzers registered
func New(logger *logging.Logger) *Engine {
	registry := analyzer.NewRegistry()
	registry.Register(pyimports.New(), "builtin")
	return NewWithRegistry(registry, logger)
}

// NewWithRegistry creates an engine around an explicit analyzer registry
func NewWithRegistry(registry *analyzer.Registry, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		registry:       registry,
		merger:         ir.NewMerger(),
		normalizer:     ir.NewNormalizer(),
		modelLoader:    model.NewLoader(),
		modelValidator: model.NewValidator(),
		modelResolver:  model.NewResolver(),
		enricher:       enrich.NewEnricher(),
		parser:         rules.NewParser(),
		compiler:       rules.NewCompiler(),
		evaluator:      rules.NewEvaluator(),
		snapBuilder:    snapshot.NewBuilder(),
		diffEngine:     snapshot.NewDiffEngine(),
		baseline:       snapshot.NewBaselineService(),
		logger:         logger,
	}
}

// Scan runs the whole pipeline and always returns a report. The returned
// error is reserved for context cancellation; everything else is reported
// as engine errors.
func (e *Engine) Scan(ctx context.Context, cfg Config) (*ScanResult, error) {
	started := time.Now()
	var engineErrors []report.EngineError

	store := e.storeFor(cfg)
	git := vcs.Describe(cfg.RepoRoot)

	// Analyze.
	graph, analyzeErrors, err := e.analyze(ctx, cfg)
	if err != nil {
		return nil, err
	}
	engineErrors = append(engineErrors, analyzeErrors...)

	// Structural validation is advisory here; hard limits surface as
	// engine errors, not a refusal to report.
	engineErrors = append(engineErrors, ir.Validate(&graph, ir.ValidateOptions{
		MaxNodes: cfg.MaxNodes,
		MaxEdges: cfg.MaxEdges,
	})...)

	// Model load + enrichment.
	arch, modelErrors := e.loadModel(cfg)
	engineErrors = append(engineErrors, modelErrors...)
	if arch != nil {
		graph = e.enrichSafely(graph, arch, &engineErrors)
	}

	// Rules.
	ruleSet, ruleErrors := e.loadRules(cfg)
	engineErrors = append(engineErrors, ruleErrors...)

	violations := e.evaluateSafely(graph, ruleSet, &engineErrors)

	// Snapshot with violations included, for baseline comparison.
	snap := e.snapBuilder.Build(graph, snapshot.Meta{
		RepoRoot:    cfg.RepoRoot,
		Commit:      git.Commit,
		Branch:      git.Branch,
		ToolVersion: version.Version,
	}, violations)

	var diff *snapshot.Diff
	var baseCounts snapshot.BaselineCounts
	if cfg.Baseline != "" {
		if base, err := store.Load(cfg.Baseline); err == nil {
			d := e.diffEngine.Diff(base, snap, false)
			diff = &d
			violations, baseCounts = e.baseline.MarkStatus(violations, &base)
		} else {
			engineErrors = append(engineErrors, report.EngineError{
				Type:    report.ErrConfig,
				Message: fmt.Sprintf("Baseline snapshot not found: %s", cfg.Baseline),
				Details: map[string]any{
					"hint": "Create a baseline with `archlint scan --save-ref <name>`",
				},
			})
			violations, baseCounts = e.baseline.MarkStatus(violations, nil)
		}
	} else {
		violations, baseCounts = e.baseline.MarkStatus(violations, nil)
	}

	var saved *snapshot.SaveResult
	if cfg.SaveSnapshot {
		refs := []string{"latest"}
		if cfg.SaveRef != "" {
			refs = append(refs, cfg.SaveRef)
		}
		res, err := store.Save(snap, refs...)
		if err != nil {
			engineErrors = append(engineErrors, report.EngineError{
				Type:    report.ErrRuntime,
				Message: "Failed to save snapshot",
				Details: map[string]any{"error": err.Error()},
			})
		} else {
			saved = &res
		}
	}

	rep := report.Build(report.RunInfo{
		RepoRoot:    cfg.RepoRoot,
		Commit:      git.Commit,
		Branch:      git.Branch,
		ModelFile:   cfg.ModelFile,
		RulesFiles:  cfg.RulesFiles,
		BaselineRef: cfg.Baseline,
		Mode:        "full",
		CreatedAt:   started.UTC().Format(time.RFC3339),
		ToolVersion: version.Version,
	}, violations, engineErrors)
	if diff != nil {
		rep.Diff = &report.DiffSummary{
			NodesAdded:   diff.NodesAdded,
			NodesRemoved: diff.NodesRemoved,
			EdgesAdded:   diff.EdgesAdded,
			EdgesRemoved: diff.EdgesRemoved,
		}
	}

	result := &ScanResult{
		Report:   rep,
		Snapshot: snap,
		Diff:     diff,
		Saved:    saved,
		Baseline: baseCounts,
	}
	e.recordHistory(cfg, result, git, time.Since(started))
	return result, nil
}

// BuildGraph runs only analysis, normalization and enrichment. Unlike
// Scan, failures here are terminal.
func (e *Engine) BuildGraph(ctx context.Context, cfg Config) (ir.ArchitectureIR, error) {
	selected := e.registry.BestForRepo(cfg.RepoRoot)
	if len(selected) == 0 {
		return ir.ArchitectureIR{}, errors.New(errors.NoAnalyzer,
			"No analyzers matched this repository", nil)
	}

	acfg := e.analyzeConfig(cfg)
	var graphs []ir.ArchitectureIR
	var failures []string
	for _, entry := range selected {
		g, err := entry.Analyzer.Analyze(ctx, acfg)
		if err != nil {
			if ctx.Err() != nil {
				return ir.ArchitectureIR{}, ctx.Err()
			}
			failures = append(failures, fmt.Sprintf("%s: %v", entry.Analyzer.PluginID(), err))
			continue
		}
		graphs = append(graphs, g)
	}
	if len(graphs) == 0 {
		return ir.ArchitectureIR{}, errors.New(errors.AnalyzerFailed,
			"All analyzers failed", nil).WithDetails(failures)
	}

	merged, err := e.merger.Merge(graphs)
	if err != nil {
		return ir.ArchitectureIR{}, errors.New(errors.InternalError, "Failed to merge graphs", err)
	}
	graph := e.normalizer.Normalize(merged)

	if cfg.ModelFile != "" {
		if _, err := os.Stat(cfg.ModelFile); err == nil {
			arch, err := e.modelLoader.Load(cfg.ModelFile)
			if err != nil {
				return ir.ArchitectureIR{}, errors.New(errors.ModelInvalid,
					"Failed to load architecture model", err)
			}
			for _, ve := range e.modelValidator.Validate(arch) {
				e.logger.Warn("model validation", map[string]interface{}{
					"message": ve.Message,
				})
			}
			graph = e.enricher.Enrich(graph, e.modelResolver.Resolve(arch))
		}
	}
	return graph, nil
}

func (e *Engine) storeFor(cfg Config) *snapshot.Store {
	if cfg.SnapshotDir != "" {
		return snapshot.NewStoreAt(cfg.SnapshotDir)
	}
	return snapshot.NewStore(cfg.RepoRoot)
}

func (e *Engine) analyzeConfig(cfg Config) analyzer.Config {
	return analyzer.Config{
		RepoRoot: cfg.RepoRoot,
		Target: analyzer.Target{
			IncludePaths: cfg.IncludePaths,
			ExcludeGlobs: cfg.ExcludeGlobs,
		},
		Deterministic:    cfg.Deterministic,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
}

// analyze runs every matching analyzer and merges the results. Analyzer
// failures are isolated per plugin.
func (e *Engine) analyze(ctx context.Context, cfg Config) (ir.ArchitectureIR, []report.EngineError, error) {
	var engineErrors []report.EngineError

	selected := e.registry.BestForRepo(cfg.RepoRoot)
	if len(selected) == 0 {
		engineErrors = append(engineErrors, report.EngineError{
			Type:    report.ErrConfig,
			Message: "No analyzers matched this repository",
			Details: map[string]any{
				"hint": "Ensure source files exist under the repository root.",
			},
		})
		return e.normalizer.Normalize(ir.Empty(cfg.RepoRoot)), engineErrors, nil
	}

	acfg := e.analyzeConfig(cfg)
	var graphs []ir.ArchitectureIR
	for _, entry := range selected {
		g, err := entry.Analyzer.Analyze(ctx, acfg)
		if err != nil {
			if ctx.Err() != nil {
				return ir.ArchitectureIR{}, nil, ctx.Err()
			}
			engineErrors = append(engineErrors, report.EngineError{
				Type:    report.ErrRuntime,
				Message: fmt.Sprintf("Analyzer '%s' failed", entry.Analyzer.PluginID()),
				Details: map[string]any{
					"analyzer": entry.Analyzer.PluginID(),
					"error":    err.Error(),
				},
			})
			continue
		}
		graphs = append(graphs, g)
	}

	combined := ir.Empty(cfg.RepoRoot)
	if len(graphs) > 0 {
		merged, err := e.merger.Merge(graphs)
		if err != nil {
			return ir.ArchitectureIR{}, nil, err
		}
		combined = merged
	}
	return e.normalizer.Normalize(combined), engineErrors, nil
}

// loadModel loads, validates and resolves the architecture model. A
// missing or broken model degrades to config errors; the scan continues
// without enrichment.
func (e *Engine) loadModel(cfg Config) (*model.ArchitectureModel, []report.EngineError) {
	if cfg.ModelFile == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.ModelFile); err != nil {
		e.logger.Warn("architecture model not found, skipping enrichment", map[string]interface{}{
			"path": cfg.ModelFile,
		})
		return nil, nil
	}

	arch, err := e.modelLoader.Load(cfg.ModelFile)
	if err != nil {
		ee := report.EngineError{
			Type:     report.ErrConfig,
			Message:  "Failed to load architecture model",
			Location: &report.Location{File: cfg.ModelFile, Line: 1, Column: 1},
			Details:  map[string]any{"error": err.Error()},
		}
		if le, ok := err.(*model.LoadError); ok {
			ee.Details["code"] = le.Code
		}
		return nil, []report.EngineError{ee}
	}

	engineErrors := e.modelValidator.Validate(arch)
	return e.modelResolver.Resolve(arch), engineErrors
}

// loadRules parses and compiles every configured rules file. Parse and
// compile failures are scoped to the file or rule that caused them.
func (e *Engine) loadRules(cfg Config) (rules.RuleSet, []report.EngineError) {
	var engineErrors []report.EngineError
	var docs []rules.Document

	for _, path := range cfg.RulesFiles {
		if _, err := os.Stat(path); err != nil {
			engineErrors = append(engineErrors, report.EngineError{
				Type:    report.ErrRules,
				Message: fmt.Sprintf("Rules file not found: %s", path),
			})
			continue
		}
		doc, err := e.parser.ParseFile(path)
		if err != nil {
			if re, ok := err.(*rules.Error); ok {
				engineErrors = append(engineErrors, re.AsEngineError())
			} else {
				engineErrors = append(engineErrors, report.EngineError{
					Type:    report.ErrParse,
					Message: fmt.Sprintf("Failed to parse rules file %s", path),
					Details: map[string]any{"error": err.Error()},
				})
			}
			continue
		}
		docs = append(docs, doc)
	}

	set, compileErrors := e.compiler.Compile(rules.ConcatDocuments(docs))
	for _, ce := range compileErrors {
		engineErrors = append(engineErrors, ce.AsEngineError())
	}
	return set, engineErrors
}

func (e *Engine) enrichSafely(g ir.ArchitectureIR, arch *model.ArchitectureModel, engineErrors *[]report.EngineError) (out ir.ArchitectureIR) {
	out = g
	defer func() {
		if r := recover(); r != nil {
			*engineErrors = append(*engineErrors, report.EngineError{
				Type:    report.ErrRuntime,
				Message: "Failed to enrich graph with architecture model mapping",
				Details: map[string]any{"error": fmt.Sprint(r)},
			})
			out = g
		}
	}()
	return e.enricher.Enrich(g, arch)
}

func (e *Engine) evaluateSafely(g ir.ArchitectureIR, set rules.RuleSet, engineErrors *[]report.EngineError) (out []report.Violation) {
	defer func() {
		if r := recover(); r != nil {
			*engineErrors = append(*engineErrors, report.EngineError{
				Type:    report.ErrRuntime,
				Message: "Rule evaluation failed",
				Details: map[string]any{"error": fmt.Sprint(r)},
			})
			out = nil
		}
	}()
	return e.evaluator.Evaluate(ir.BuildIndex(g), set)
}

// recordHistory appends the run to the history database. History failures
// are logged, never fatal.
func (e *Engine) recordHistory(cfg Config, result *ScanResult, git vcs.Info, elapsed time.Duration) {
	if cfg.HistoryPath == "" {
		return
	}

	db, err := storage.Open(cfg.HistoryPath, e.logger)
	if err != nil {
		e.logger.Warn("run history unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer db.Close()

	rec := storage.RunRecord{
		Commit:         git.Commit,
		Branch:         git.Branch,
		NodeCount:      len(result.Snapshot.Nodes),
		EdgeCount:      len(result.Snapshot.Edges),
		ViolationCount: result.Report.Summary.TotalViolations,
		NewCount:       result.Baseline.New,
		ExistingCount:  result.Baseline.Existing,
		FixedCount:     result.Baseline.Fixed,
		ErrorCount:     len(result.Report.EngineErrors),
		DurationMs:     elapsed.Milliseconds(),
	}
	if result.Saved != nil {
		rec.SnapshotHash = result.Saved.ObjectHash
	}

	stored, err := db.RecordRun(rec)
	if err != nil {
		e.logger.Warn("failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	result.Run = &stored
	result.Report.Run.RunID = stored.RunID
}
