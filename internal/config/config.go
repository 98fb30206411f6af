// Package config provides CLI configuration and application logic for
// kumitate.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/nitohi/kumitate/internal/kumitate"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI is the root command configuration with subcommands.
type CLI struct {
	LogLevel string           `kong:"short='l',help='Log level',enum='debug,info,warn,error',default='info'"`
	Generate GenerateCmd      `kong:"cmd,default='withargs',help='Generate component constructors (default)'"`
	Verify   VerifyCmd        `kong:"cmd,help='Check component graphs without writing files'"`
	Version  kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
}

// GenerateCmd is the default command for generating construction code.
type GenerateCmd struct {
	Output   string   `kong:"short='o',default='kumitate_gumi.go',help='Generated file name'"`
	Patterns []string `kong:"arg,optional,help='Go package patterns to scan',default='./'"`
}

// Run executes the generate command.
func (c *GenerateCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)

	slog.Info("Generating component constructors", "patterns", c.Patterns)

	processor := kumitate.NewProcessor(c.Output)
	return processor.ProcessPatterns(c.Patterns)
}

// VerifyCmd is the command for checking component graphs.
type VerifyCmd struct {
	Patterns []string `kong:"arg,optional,help='Go package patterns to check',default='./'"`
}

// Run executes the verify command.
func (c *VerifyCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)

	slog.Info("Checking component graphs", "patterns", c.Patterns)

	processor := kumitate.NewProcessor("")
	return processor.VerifyPatterns(c.Patterns)
}

func Run() error {
	var cli CLI
	kongCtx := kong.Parse(&cli,
		kong.Name("kumitate"),
		kong.Description("A declarative dependency injection code generator for Go"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s) released on %s", version, commit, date),
		},
	)

	return kongCtx.Run(&cli)
}

func setupLogger(level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
