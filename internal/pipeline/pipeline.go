// Package pipeline orchestrates the extract, transform, load, and deploy
// phases of a run and reports their outcomes through the output sinks.
package pipeline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"etldocs/internal/config"
	"etldocs/internal/dataset"
	"etldocs/internal/extract"
	"etldocs/internal/faults"
	"etldocs/internal/load"
	"etldocs/internal/logging"
	"etldocs/internal/output"
	"etldocs/internal/report"
	"etldocs/internal/site"
	"etldocs/internal/transform"
)

const reportFileName = "data_report.md"

func exitCodeForRun(pipelineFailed, deployFailed bool) int {
	// Exit code contract:
	// 0 = pipeline and deploy completed
	// 1 = pipeline failed (extract/transform/load)
	// 2 = deploy failed (data outputs were written and kept)
	// 3 = invalid invocation (reserved for the CLI layer)
	if pipelineFailed {
		return 1
	}
	if deployFailed {
		return 2
	}
	return 0
}

// SetupSinks builds the output manager from the sink configuration.
func SetupSinks(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Sinks.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Sinks.ConsoleFormat)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	for _, emit := range cfg.Sinks.Emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Sinks.Out != "" {
		fs, err := output.NewFileSink(cfg.Sinks.Out, cfg.Sinks.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

type Pipeline struct {
	cfg *config.Config
	log *logging.Logger
	out *output.Manager

	runID   string
	summary map[string]any
	dataset *dataset.Dataset
}

func New(cfg *config.Config, log *logging.Logger, out *output.Manager) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, out: out}
}

// Summary returns the accumulated per-phase run summary.
func (p *Pipeline) Summary() map[string]any { return p.summary }

// Run executes the pipeline once and returns the process exit code.
func (p *Pipeline) Run() int {
	p.runID = uuid.NewString()
	p.summary = make(map[string]any)

	p.log.Debugf("starting run %s", p.runID)
	p.emit(output.Event{Type: "run.started", RunID: p.runID})

	pipelineFailed := !p.runDataPhases()

	deployFailed := false
	switch {
	case !p.cfg.Deploy.Enable:
		// Deploy is opt-in; record that it was skipped.
		p.report(output.PhaseResult{Phase: "deploy", Status: output.StatusSkipped, Message: "deployment not enabled"})
	case pipelineFailed:
		p.report(output.PhaseResult{Phase: "deploy", Status: output.StatusSkipped, Message: "pipeline failed"})
	default:
		deployFailed = !p.runDeploy()
	}

	code := exitCodeForRun(pipelineFailed, deployFailed)
	p.emit(output.Event{Type: "run.finished", RunID: p.runID, ExitCode: code})
	return code
}

// runDataPhases runs extract, transform, and load. Returns false as soon as
// one of them fails.
func (p *Pipeline) runDataPhases() bool {
	var ds *dataset.Dataset

	ok := p.phase("extract", func() (map[string]string, error) {
		var err error
		ds, err = extract.FromSource(p.cfg.Source.Path, p.cfg.Source.Type)
		if err != nil {
			return nil, err
		}
		p.summary["extract"] = map[string]any{
			"source_path":       p.cfg.Source.Path,
			"rows_extracted":    ds.Rows(),
			"columns_extracted": ds.ColumnCount(),
		}
		return map[string]string{
			"rows":    strconv.Itoa(ds.Rows()),
			"columns": strconv.Itoa(ds.ColumnCount()),
		}, nil
	})
	if !ok {
		return false
	}

	if p.cfg.Transform.Disable {
		p.summary["transform"] = map[string]any{
			"transformations_applied": []string{"none - transformations skipped"},
		}
		p.report(output.PhaseResult{Phase: "transform", Status: output.StatusSkipped, Message: "transformations disabled"})
	} else {
		ok = p.phase("transform", func() (map[string]string, error) {
			conditions, err := config.ParseFilterConditions(p.cfg.Transform.Filter)
			if err != nil {
				return nil, faults.InvalidInput(err)
			}
			res, err := transform.Apply(ds, toConditions(conditions))
			if err != nil {
				return nil, err
			}
			ds = res.Dataset
			p.summary["transform"] = map[string]any{
				"transformations_applied": res.Applied,
				"final_rows":              ds.Rows(),
				"final_columns":           ds.ColumnCount(),
			}
			return map[string]string{"rows": strconv.Itoa(ds.Rows())}, nil
		})
		if !ok {
			return false
		}
	}

	return p.phase("load", func() (map[string]string, error) {
		if err := load.Save(ds, p.cfg.Output.Path, p.cfg.Output.Format); err != nil {
			return nil, err
		}
		summaryPath := p.cfg.Output.SummaryPath
		if summaryPath == "" {
			summaryPath = load.SummaryPath(p.cfg.Output.Path)
		}
		if err := load.WriteSummary(ds, summaryPath, p.runID); err != nil {
			return nil, err
		}
		p.summary["load"] = map[string]any{
			"output_path":  p.cfg.Output.Path,
			"summary_path": summaryPath,
			"final_rows":   ds.Rows(),
			"status":       "success",
		}
		p.dataset = ds
		return map[string]string{"output": p.cfg.Output.Path, "summary": summaryPath}, nil
	})
}

func (p *Pipeline) runDeploy() bool {
	projectName := p.cfg.Deploy.ProjectName
	if projectName == "" {
		projectName = "ETL Results"
	}
	siteName := p.cfg.Deploy.SiteName
	if siteName == "" {
		siteName = projectName + " Documentation"
	}
	siteDescription := p.cfg.Deploy.SiteDescription
	if siteDescription == "" {
		siteDescription = fmt.Sprintf("Automatically generated documentation for %s", projectName)
	}

	return p.phase("deploy", func() (map[string]string, error) {
		gen := report.NewGenerator(p.log)
		gen.PreviewRows = p.cfg.Deploy.PreviewRows
		md, err := gen.Render(p.dataset, p.summary, projectName)
		if err != nil {
			return nil, err
		}

		asm := site.NewAssembler(p.log)
		if err := asm.Assemble(p.cfg.Deploy.DocsDir, siteName, siteDescription, map[string]string{
			reportFileName: md,
		}); err != nil {
			return nil, err
		}

		siteCfg := site.NewConfig(siteName, siteDescription, p.cfg.Deploy.DocsDir, p.cfg.Deploy.Repo)
		if err := siteCfg.Write(p.cfg.Deploy.ConfigPath); err != nil {
			return nil, err
		}

		deploySummary := map[string]any{"status": "success"}
		details := map[string]string{"docs_dir": p.cfg.Deploy.DocsDir, "site_config": p.cfg.Deploy.ConfigPath}
		if siteCfg.SiteURL != "" {
			deploySummary["docs_url"] = siteCfg.SiteURL
			details["docs_url"] = siteCfg.SiteURL
		}
		p.summary["deploy"] = deploySummary
		return details, nil
	})
}

// phase runs fn at a failure boundary: any returned error or panic becomes a
// FAILED PhaseResult with a classified kind plus a logged diagnostic, and
// never propagates.
func (p *Pipeline) phase(name string, fn func() (map[string]string, error)) (ok bool) {
	details, err := runRecovered(fn)
	if err != nil {
		p.log.Errorf("%s failed: %v", name, err)
		if s, exists := p.summary[name]; !exists || s == nil {
			p.summary[name] = map[string]any{"status": "failed"}
		}
		p.report(output.PhaseResult{
			Phase:   name,
			Status:  output.StatusFailed,
			Kind:    string(faults.KindOf(err)),
			Message: err.Error(),
		})
		return false
	}

	p.report(output.PhaseResult{Phase: name, Status: output.StatusOK, Details: details})
	return true
}

func runRecovered(fn func() (map[string]string, error)) (details map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (p *Pipeline) report(r output.PhaseResult) {
	if err := p.out.Write(r); err != nil {
		p.log.Warnf("failed to write phase result: %v", err)
	}
}

func (p *Pipeline) emit(e output.Event) {
	if err := p.out.Write(e); err != nil {
		p.log.Warnf("failed to write event: %v", err)
	}
}

func toConditions(in []config.FilterCondition) []transform.Condition {
	out := make([]transform.Condition, len(in))
	for i, c := range in {
		out[i] = transform.Condition{Column: c.Column, Value: c.Value}
	}
	return out
}
