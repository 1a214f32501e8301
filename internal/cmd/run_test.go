package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/brentsnook/rspec-core/internal/config"
	"github.com/brentsnook/rspec-core/internal/dsl"
	"github.com/brentsnook/rspec-core/internal/reporter"
	"github.com/brentsnook/rspec-core/internal/spec"
)

// Helper function to declare groups in the default registry for one test
func declareDefault(t *testing.T, define func(g *dsl.Group)) {
	t.Helper()
	dsl.DefaultRegistry.Reset()
	t.Cleanup(dsl.DefaultRegistry.Reset)
	dsl.Describe("Widget", define)
}

// Helper function to execute the run command with args
func executeRunCommand(t *testing.T, args []string) (string, error) {
	t.Helper()

	rootCmd := &cobra.Command{Use: "rspec"}
	rootCmd.AddCommand(NewRunCommand())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunCommand_PassingExamples(t *testing.T) {
	declareDefault(t, func(g *dsl.Group) {
		g.It("renders", nil)
	})

	out, err := executeRunCommand(t, []string{"run", "--color", "never"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "PASS Widget renders") {
		t.Errorf("expected a PASS line, got:\n%s", out)
	}
	if !strings.Contains(out, "1 examples, 0 failures") {
		t.Errorf("expected a summary line, got:\n%s", out)
	}
}

func TestRunCommand_FailureExitsNonZero(t *testing.T) {
	declareDefault(t, func(g *dsl.Group) {
		g.It("breaks", func(*spec.Example) error {
			return errors.New("boom")
		})
	})

	out, err := executeRunCommand(t, []string{"run", "--color", "never"})
	if err == nil {
		t.Fatal("expected an error for a failing run")
	}
	if !strings.Contains(err.Error(), "1 of 1 examples failed") {
		t.Errorf("unexpected error %v", err)
	}
	if !strings.Contains(out, "FAIL Widget breaks (boom)") {
		t.Errorf("expected a FAIL line, got:\n%s", out)
	}
}

func TestRunCommand_DryRun(t *testing.T) {
	ran := false
	declareDefault(t, func(g *dsl.Group) {
		g.It("would fail", func(*spec.Example) error {
			ran = true
			return errors.New("boom")
		})
	})

	_, err := executeRunCommand(t, []string{"run", "--dry-run", "--color", "never"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if ran {
		t.Error("dry-run must not execute bodies")
	}
}

func TestRunCommand_InvalidColorMode(t *testing.T) {
	declareDefault(t, func(g *dsl.Group) {
		g.It("renders", nil)
	})

	_, err := executeRunCommand(t, []string{"run", "--color", "sometimes"})
	if err == nil || !strings.Contains(err.Error(), "invalid color mode") {
		t.Errorf("expected an invalid color mode error, got %v", err)
	}
}

func TestRunCommand_WritesJSONReport(t *testing.T) {
	declareDefault(t, func(g *dsl.Group) {
		g.It("renders", nil)
	})
	path := filepath.Join(t.TempDir(), "report.json")

	_, err := executeRunCommand(t, []string{"run", "--color", "never", "--report", path})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report was not written: %v", err)
	}
	var report reporter.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Summary.Total != 1 {
		t.Errorf("expected 1 example in the report, got %d", report.Summary.Total)
	}
}

func TestRunCommand_ConfigFileFlag(t *testing.T) {
	declareDefault(t, func(g *dsl.Group) {
		g.It("would fail", func(*spec.Example) error {
			return errors.New("boom")
		})
	})
	cfgPath := filepath.Join(t.TempDir(), config.DefaultFileName)
	if err := os.WriteFile(cfgPath, []byte("dry_run: true\ncolor: never\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := executeRunCommand(t, []string{"run", "-c", cfgPath})
	if err != nil {
		t.Fatalf("expected dry-run from config to suppress the failure, got %v", err)
	}
}

func TestRunGroups_WritesHTMLReport(t *testing.T) {
	reg := dsl.NewRegistry()
	reg.Describe("Widget", func(g *dsl.Group) {
		g.It("renders", nil)
	})
	cfg := config.DefaultConfig()
	cfg.Color = "never"
	cfg.HTMLReportPath = filepath.Join(t.TempDir(), "report.html")

	var buf bytes.Buffer
	summary, err := runGroups(cfg, reg.Groups(), &buf)
	if err != nil {
		t.Fatalf("runGroups() error = %v", err)
	}
	if summary.Examples != 1 || summary.Failures != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}

	data, err := os.ReadFile(cfg.HTMLReportPath)
	if err != nil {
		t.Fatalf("HTML report was not written: %v", err)
	}
	if !strings.Contains(string(data), "Widget renders") {
		t.Error("HTML report is missing the example entry")
	}
	if !strings.Contains(buf.String(), "1 examples, 0 failures") {
		t.Error("console summary missing when report reporters are composed")
	}
}
