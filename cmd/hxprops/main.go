package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/pthm/hxprops"
	"github.com/pthm/hxprops/internal/logger"
	"github.com/pthm/hxprops/lib/config"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, styles.err.Render("error:"), err)
		os.Exit(1)
	}
}

// errFailed means the command already reported its problems.
var errFailed = errors.New("failed")

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errFailed
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "lint":
		return runLint(rest)
	case "check":
		return runCheck(rest)
	case "generate":
		return runGenerate(rest)
	case "clean":
		return runClean(rest)
	case "watch":
		return runWatch(rest)
	case "version", "--version":
		fmt.Printf("hxprops version %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return errFailed
	}
}

func printUsage() {
	fmt.Println(`hxprops - component props, attributes and slots for Go templates

Usage:
  hxprops <command> [flags] [arguments]

Commands:
  lint [templates]       Parse every {# props #} declaration and report errors
  check <template>       Resolve one template against --attr values and print the scope
  generate               Write typed props structs (*_hx.go) for declaring templates
  clean                  Remove generated files (*_hx.go)
  watch                  Re-lint templates as they change
  version                Print version
  help                   Show this help

Common flags:
  --config PATH          Config file (default: $HXPROPS_CONFIG or ./hxprops.yaml)
  --log-level LEVEL      debug, info, warn or error (overrides logging.level)
  --log-format FORMAT    text, json or auto (overrides logging.format)

Examples:
  hxprops lint
  hxprops check card.html --attr title=Hello --attr variant=primary --body '<p>hi</p>'
  hxprops generate --out ./components --package components
  hxprops generate --dry-run`)
}

// common holds flags shared by every command.
type common struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newFlagSet(name string) (*pflag.FlagSet, *common) {
	c := &common{}
	fs := pflag.NewFlagSet("hxprops "+name, pflag.ContinueOnError)
	fs.StringVar(&c.configPath, "config", "", "config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level")
	fs.StringVar(&c.logFormat, "log-format", "", "log format")
	return fs, c
}

// setup loads configuration, installs the logger and builds an engine
// reading templates from the configured root. watch overrides cache.watch:
// the watch command turns it on and the one-shot commands turn it off.
func (c *common) setup(watch bool, opts ...hxprops.Option) (*config.Config, *hxprops.Engine, error) {
	cfg, err := config.Load(c.configPath, os.Getenv)
	if err != nil {
		return nil, nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logger.Init(logCfg)

	cfg.Cache.Watch = watch
	engine, err := hxprops.NewEngine(cfg, append([]hxprops.Option{hxprops.WithLogger(logger.ForComponent("engine"))}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("config loaded", "root", cfg.Templates.Root, "base", cfg.BaseDir)
	return cfg, engine, nil
}
