package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/brentsnook/rspec-core/internal/config"
	"github.com/brentsnook/rspec-core/internal/dsl"
	"github.com/brentsnook/rspec-core/internal/reporter"
	"github.com/brentsnook/rspec-core/internal/runner"
	"github.com/brentsnook/rspec-core/internal/spec"
)

// NewRunCommand creates the run subcommand.
func NewRunCommand() *cobra.Command {
	var (
		configPath string
		dryRun     bool
		colorMode  string
		reportPath string
		htmlPath   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all declared example groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override file configuration.
			if dryRun {
				cfg.DryRun = true
			}
			if colorMode != "" {
				cfg.Color = colorMode
			}
			if reportPath != "" {
				cfg.ReportPath = reportPath
			}
			if htmlPath != "" {
				cfg.HTMLReportPath = htmlPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			summary, err := runGroups(cfg, dsl.DefaultRegistry.Groups(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if summary.Failures > 0 {
				return fmt.Errorf("%d of %d examples failed", summary.Failures, summary.Examples)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to .rspec.yaml (default: current directory)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "start and finish examples without executing them")
	cmd.Flags().StringVar(&colorMode, "color", "", "color output: auto, always, or never")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report to this path")
	cmd.Flags().StringVar(&htmlPath, "html-report", "", "write an HTML report to this path")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfigFromDir(dir)
}

// runGroups composes the configured reporters, executes the groups, and
// writes any requested report files.
func runGroups(cfg *config.Config, groups []*dsl.Group, out io.Writer) (reporter.RunSummary, error) {
	console := reporter.NewConsole(out, cfg.Color)
	reporters := []spec.Reporter{console}

	var fileRep *reporter.File
	if cfg.ReportPath != "" {
		fileRep = reporter.NewFile(cfg.ReportPath)
		reporters = append(reporters, fileRep)
	}
	var htmlRep *reporter.HTML
	if cfg.HTMLReportPath != "" {
		htmlRep = reporter.NewHTML(cfg.HTMLReportPath)
		reporters = append(reporters, htmlRep)
	}

	var rep spec.Reporter = console
	if len(reporters) > 1 {
		rep = reporter.NewMulti(reporters...)
	}

	summary := runner.New(cfg).Run(groups, rep)
	if rep != console {
		// Multi does not forward summaries; the console renders its own.
		console.RunFinished(summary)
	}

	if fileRep != nil {
		if err := fileRep.WriteReport(); err != nil {
			return summary, fmt.Errorf("failed to write JSON report: %w", err)
		}
	}
	if htmlRep != nil {
		if err := htmlRep.WriteReport(); err != nil {
			return summary, fmt.Errorf("failed to write HTML report: %w", err)
		}
	}
	return summary, nil
}
