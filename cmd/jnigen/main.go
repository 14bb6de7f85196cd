package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jnigen/jnigen/gen"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate JNI entry points for annotated functions."`
	Check   CheckCmd   `cmd:"" help:"Validate bindings without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan (default: current directory)."`
	Out      string   `help:"Write all generated files under this directory instead of next to their templates." short:"o"`
	Dir      string   `help:"Working directory for package loading." default:"."`
	DryRun   bool     `help:"Report what would be generated without writing."`
}

func (c *GenCmd) Run(logger *slog.Logger) error {
	report, err := run(logger, c.Dir, c.Packages, c.Out, c.DryRun)
	if err != nil {
		return err
	}

	if c.DryRun {
		for _, path := range report.Written {
			fmt.Printf("would write %s\n", path)
		}
	}
	return reportDiagnostics(report)
}

type CheckCmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan (default: current directory)."`
	Dir      string   `help:"Working directory for package loading." default:"."`
}

func (c *CheckCmd) Run(logger *slog.Logger) error {
	report, err := run(logger, c.Dir, c.Packages, "", true)
	if err != nil {
		return err
	}

	if len(report.Diagnostics) == 0 {
		fmt.Printf("✓ %d binding file(s) OK\n", len(report.Written))
		return nil
	}
	return reportDiagnostics(report)
}

func run(logger *slog.Logger, dir string, patterns []string, out string, dryRun bool) (*gen.Report, error) {
	cfg, err := gen.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	return gen.Run(cfg, patterns, gen.RunOptions{
		Dir:    dir,
		OutDir: out,
		DryRun: dryRun,
		Logger: logger,
	})
}

func reportDiagnostics(report *gen.Report) error {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if n := len(report.Diagnostics); n > 0 {
		return fmt.Errorf("%d binding(s) failed", n)
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("jnigen"),
		kong.Description("Generate JNI-mangled native entry points for Go functions."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
