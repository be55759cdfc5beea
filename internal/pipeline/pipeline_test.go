package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"etldocs/internal/config"
	"etldocs/internal/logging"
	"etldocs/internal/output"
)

// captureSink records everything written to it.
type captureSink struct {
	results []output.PhaseResult
	events  []output.Event
}

func (s *captureSink) Write(v any) error {
	switch t := v.(type) {
	case output.PhaseResult:
		s.results = append(s.results, t)
	case output.Event:
		s.events = append(s.events, t)
	}
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) result(phase string) (output.PhaseResult, bool) {
	for _, r := range s.results {
		if r.Phase == phase {
			return r, true
		}
	}
	return output.PhaseResult{}, false
}

func newTestPipeline(t *testing.T, cfg *config.Config) (*Pipeline, *captureSink) {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	sink := &captureSink{}
	mgr := output.NewManager()
	if err := mgr.AddSink(sink); err != nil {
		t.Fatalf("AddSink returned error: %v", err)
	}
	log := logging.New(&strings.Builder{}, false)
	return New(cfg, log, mgr), sink
}

func baseConfig(t *testing.T, csvContent string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(source, []byte(csvContent), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	cfg := config.New()
	cfg.Source.Path = source
	cfg.Output.Path = filepath.Join(dir, "out", "clean.csv")
	return cfg, dir
}

func TestRun_Success(t *testing.T) {
	cfg, dir := baseConfig(t, "Age,Name\n25,A\n30,B\n")
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	for _, phase := range []string{"extract", "transform", "load"} {
		r, ok := sink.result(phase)
		if !ok {
			t.Fatalf("no result for phase %s", phase)
		}
		if r.Status != output.StatusOK {
			t.Errorf("%s status = %s, want OK", phase, r.Status)
		}
	}
	if r, _ := sink.result("deploy"); r.Status != output.StatusSkipped {
		t.Errorf("deploy status = %s, want SKIPPED", r.Status)
	}

	if _, err := os.Stat(filepath.Join(dir, "out", "clean.csv")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "clean_summary.json")); err != nil {
		t.Errorf("summary file missing: %v", err)
	}
}

func TestRun_LifecycleEvents(t *testing.T) {
	cfg, _ := baseConfig(t, "a\n1\n")
	p, sink := newTestPipeline(t, cfg)

	code := p.Run()

	if len(sink.events) != 2 {
		t.Fatalf("got %d events, want 2", len(sink.events))
	}
	if sink.events[0].Type != "run.started" || sink.events[0].RunID == "" {
		t.Errorf("first event = %+v", sink.events[0])
	}
	last := sink.events[1]
	if last.Type != "run.finished" || last.ExitCode != code {
		t.Errorf("last event = %+v, run exit = %d", last, code)
	}
	if last.RunID != sink.events[0].RunID {
		t.Error("run id changed between events")
	}
}

func TestRun_ExtractFailure(t *testing.T) {
	cfg, _ := baseConfig(t, "")
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.csv")
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	r, ok := sink.result("extract")
	if !ok || r.Status != output.StatusFailed {
		t.Fatalf("extract result = %+v", r)
	}
	if r.Kind != "io_failure" {
		t.Errorf("extract kind = %q, want io_failure", r.Kind)
	}
	if _, ok := sink.result("transform"); ok {
		t.Error("transform ran after extract failure")
	}
	if r, _ := sink.result("deploy"); r.Status != output.StatusSkipped {
		t.Errorf("deploy status = %s, want SKIPPED", r.Status)
	}
}

func TestRun_InvalidSourceDataIsExit1(t *testing.T) {
	cfg, _ := baseConfig(t, "a,b\n1\n") // ragged row
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	r, _ := sink.result("extract")
	if r.Kind != "invalid_input" {
		t.Errorf("extract kind = %q, want invalid_input", r.Kind)
	}
}

func TestRun_TransformDisabled(t *testing.T) {
	cfg, _ := baseConfig(t, "a\n1\n")
	cfg.Transform.Disable = true
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	r, _ := sink.result("transform")
	if r.Status != output.StatusSkipped {
		t.Errorf("transform status = %s, want SKIPPED", r.Status)
	}

	ts, ok := p.Summary()["transform"].(map[string]any)
	if !ok {
		t.Fatal("transform summary missing")
	}
	applied, _ := ts["transformations_applied"].([]string)
	if len(applied) != 1 || !strings.Contains(applied[0], "skipped") {
		t.Errorf("transformations_applied = %v", applied)
	}
}

func TestRun_FilterShrinksOutput(t *testing.T) {
	cfg, dir := baseConfig(t, "status,name\nactive,A\ninactive,B\nactive,C\n")
	cfg.Transform.Filter = []string{"status=active"}
	p, _ := newTestPipeline(t, cfg)

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	b, err := os.ReadFile(filepath.Join(dir, "out", "clean.csv"))
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if strings.Contains(string(b), "inactive") {
		t.Errorf("filtered row survived:\n%s", b)
	}
	if lines := strings.Count(strings.TrimSpace(string(b)), "\n"); lines != 2 {
		t.Errorf("output has %d data lines, want 2", lines)
	}
}

func TestRun_UnknownFilterColumnIsExit1(t *testing.T) {
	cfg, _ := baseConfig(t, "a\n1\n")
	cfg.Transform.Filter = []string{"nope=x"}
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	r, _ := sink.result("transform")
	if r.Status != output.StatusFailed || r.Kind != "invalid_input" {
		t.Errorf("transform result = %+v", r)
	}
}

func TestRun_DeploySuccess(t *testing.T) {
	cfg, dir := baseConfig(t, "Age,Name\n25,A\n30,B\n")
	cfg.Deploy.Enable = true
	cfg.Deploy.ProjectName = "Sales Data"
	cfg.Deploy.DocsDir = filepath.Join(dir, "docs")
	cfg.Deploy.ConfigPath = filepath.Join(dir, "mkdocs.yml")
	cfg.Deploy.Repo = "acme/sales"
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	r, _ := sink.result("deploy")
	if r.Status != output.StatusOK {
		t.Fatalf("deploy result = %+v", r)
	}
	if r.Details["docs_url"] != "https://acme.github.io/sales/" {
		t.Errorf("docs_url = %q", r.Details["docs_url"])
	}

	reportBytes, err := os.ReadFile(filepath.Join(dir, "docs", "data_report.md"))
	if err != nil {
		t.Fatalf("report missing: %v", err)
	}
	if !strings.Contains(string(reportBytes), "# Sales Data") {
		t.Errorf("report missing title:\n%s", reportBytes)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs", "index.md")); err != nil {
		t.Errorf("index.md missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mkdocs.yml")); err != nil {
		t.Errorf("mkdocs.yml missing: %v", err)
	}
}

func TestRun_DeployFailureKeepsDataAndExits2(t *testing.T) {
	cfg, dir := baseConfig(t, "a\n1\n")
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	cfg.Deploy.Enable = true
	cfg.Deploy.DocsDir = filepath.Join(blocker, "docs") // uncreatable
	cfg.Deploy.ConfigPath = filepath.Join(dir, "mkdocs.yml")
	p, sink := newTestPipeline(t, cfg)

	if code := p.Run(); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}

	r, _ := sink.result("deploy")
	if r.Status != output.StatusFailed || r.Kind != "io_failure" {
		t.Errorf("deploy result = %+v", r)
	}
	// Data outputs from the successful pipeline phases are kept.
	if _, err := os.Stat(filepath.Join(dir, "out", "clean.csv")); err != nil {
		t.Errorf("output file missing after deploy failure: %v", err)
	}
}

func TestExitCodeForRun(t *testing.T) {
	cases := []struct {
		pipelineFailed, deployFailed bool
		want                         int
	}{
		{false, false, 0},
		{true, false, 1},
		{false, true, 2},
		{true, true, 1},
	}
	for _, c := range cases {
		if got := exitCodeForRun(c.pipelineFailed, c.deployFailed); got != c.want {
			t.Errorf("exitCodeForRun(%v, %v) = %d, want %d", c.pipelineFailed, c.deployFailed, got, c.want)
		}
	}
}

func TestSetupSinks(t *testing.T) {
	cfg := config.New()
	mgr, err := SetupSinks(cfg)
	if err != nil {
		t.Fatalf("SetupSinks returned error: %v", err)
	}
	if mgr == nil {
		t.Fatal("manager is nil")
	}

	cfg = config.New()
	cfg.Sinks.Emit = []string{"xml"}
	if _, err := SetupSinks(cfg); err == nil {
		t.Error("expected error for bad emit format")
	}

	cfg = config.New()
	cfg.Sinks.Out = filepath.Join(t.TempDir(), "events.ndjson")
	mgr, err = SetupSinks(cfg)
	if err != nil {
		t.Fatalf("SetupSinks with --out returned error: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
