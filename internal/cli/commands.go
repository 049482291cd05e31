// Package cli implements the wordlebot command line: playing a game and
// inspecting the recorded history.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/util"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errUsage = errors.New("usage error")

// CLI runs one wordlebot command.
type CLI struct {
	stdout io.Writer
	stderr io.Writer
}

// New creates a CLI writing results to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{stdout: stdout, stderr: stderr}
}

// Run executes the command named by args[0] and returns the process exit
// code. Without a known command name the arguments are treated as "play".
func (c *CLI) Run(ctx context.Context, args []string) int {
	cmd, rest := "play", args
	if len(args) > 0 {
		switch name := strings.ToLower(args[0]); name {
		case "play", "history", "show", "serve", "help", "version":
			cmd, rest = name, args[1:]
		case "-h", "-help", "--help":
			cmd, rest = "help", nil
		}
	}

	var err error
	switch cmd {
	case "play":
		err = c.cmdPlay(ctx, rest)
	case "history":
		err = c.cmdHistory(rest)
	case "show":
		err = c.cmdShow(rest)
	case "serve":
		err = c.cmdServe(ctx, rest)
	case "version":
		fmt.Fprintf(c.stdout, "wordlebot %s\n", config.AppVersion)
	case "help":
		c.printHelp()
	}

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.stderr, "wordlebot: %v\n\n", err)
		c.printHelp()
		return ExitUsage
	default:
		fmt.Fprintf(c.stderr, "wordlebot: %v\n", err)
		return ExitFailure
	}
}

// printHelp displays available commands.
func (c *CLI) printHelp() {
	fmt.Fprint(c.stderr, `Usage:
  wordlebot [play] [-p port] [-s] [-w words] [-c config] [-strategy first|random] <hostname> <username>
  wordlebot history [-c config] [-n limit]
  wordlebot show [-c config] <game-id>
  wordlebot serve [-c config] [-addr :8080]
  wordlebot version
  wordlebot help

Play prints only the reward flag on stdout. Logs go to stderr.
`)
}

// usagef builds an error that makes Run print the help text.
func usagef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// newFlagSet creates a flag set that reports errors instead of exiting.
func (c *CLI) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parseInterleaved parses flags that may appear before, between or after
// the positional arguments.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// loadConfig reads the config file, .env and environment, then sets up
// logging from the result.
func loadConfig(path string, verbose bool) (*config.Config, error) {
	config.LoadDotEnv()

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	app := cfg.GetApplicationData()
	logCfg := util.LogConfig{
		Level:      app.Logging.Level,
		Directory:  app.Logging.Directory,
		MaxBackups: app.Logging.MaxBackups,
		Console:    true,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if err := util.InitLogger(logCfg); err != nil {
		log.Warn().Err(err).Msg("failed to configure logger, using defaults")
	}

	return cfg, nil
}

// checkValidation logs warnings and returns the first error.
func checkValidation(result *config.ValidationResult) error {
	for _, w := range result.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}
	for _, e := range result.Errors {
		log.Debug().Str("field", e.Field).Msg(e.Message)
	}
	return result.Err()
}
