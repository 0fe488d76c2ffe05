// Package logging sets up the go-ethereum logger for the nodebase commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	VerbosityFlag = &cli.IntFlag{
		Name:    "verbosity",
		Usage:   "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value:   3,
		EnvVars: []string{"NODEBASE_VERBOSITY"},
	}
	LogFormatFlag = &cli.StringFlag{
		Name:    "log-format",
		Usage:   "Log format: terminal or json",
		Value:   "terminal",
		EnvVars: []string{"NODEBASE_LOG_FORMAT"},
	}
	LogFileFlag = &cli.StringFlag{
		Name:    "log-file",
		Usage:   "Also write logs to this file, rotated at 100MB",
		EnvVars: []string{"NODEBASE_LOG_FILE"},
	}
)

var Flags = []cli.Flag{VerbosityFlag, LogFormatFlag, LogFileFlag}

// Setup installs the default logger. It is meant to run as the app's Before
// hook.
func Setup(c *cli.Context) error {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

	level := log.FromLegacyLevel(c.Int(VerbosityFlag.Name))

	var output io.Writer = colorable.NewColorableStderr()
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	if path := c.String(LogFileFlag.Name); path != "" {
		output = io.MultiWriter(output, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 10,
			Compress:   true,
		})
		useColor = false
	}

	handler, err := newHandler(c.String(LogFormatFlag.Name), output, level, useColor)
	if err != nil {
		return err
	}

	log.SetDefault(log.NewLogger(handler))
	return nil
}

func newHandler(format string, w io.Writer, level slog.Level, useColor bool) (slog.Handler, error) {
	switch format {
	case "terminal", "":
		return log.NewTerminalHandlerWithLevel(w, level, useColor), nil
	case "json":
		return log.JSONHandlerWithLevel(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
