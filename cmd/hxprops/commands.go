package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"

	"github.com/pthm/hxprops"
	"github.com/pthm/hxprops/internal/logger"
	"github.com/pthm/hxprops/lib/config"
	"github.com/pthm/hxprops/lib/generator"
)

func parse(fs *pflag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// templates lists the named templates, or every template under the
// configured root.
func templates(cfg *config.Config, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	return generator.FindTemplates(os.DirFS(cfg.Templates.Root), cfg.Templates.Include, cfg.Templates.Ignore)
}

// lint parses every template's declaration and reports the ones that fail.
func lint(engine *hxprops.Engine, names []string) int {
	failed := 0
	for _, name := range names {
		specs, err := engine.Specs(name, nil, nil)
		if err != nil {
			reportError(stdout, name, err)
			failed++
			continue
		}
		reportSpecs(stdout, name, specs)
	}
	return failed
}

func runLint(args []string) error {
	fs, c := newFlagSet("lint")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	cfg, engine, err := c.setup(false)
	if err != nil {
		return err
	}

	names, err := templates(cfg, fs.Args())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(stdout, styles.dim.Render("no templates found under "+cfg.Templates.Root))
		return nil
	}

	if failed := lint(engine, names); failed > 0 {
		fmt.Fprintf(stdout, "\n%s %d of %d templates\n", styles.err.Render("failed:"), failed, len(names))
		return errFailed
	}
	fmt.Fprintf(stdout, "\n%s %d templates\n", styles.ok.Render("ok:"), len(names))
	return nil
}

func runCheck(args []string) error {
	fs, c := newFlagSet("check")
	var (
		rawAttrs []string
		body     string
		outer    string
	)
	fs.StringArrayVar(&rawAttrs, "attr", nil, "call-site assignment key=value (repeatable)")
	fs.StringVar(&body, "body", "", "content passed between the component tags")
	fs.StringVar(&outer, "outer", "", "component tag name (default: template base name)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("check: expected exactly one template")
	}
	_, engine, err := c.setup(false)
	if err != nil {
		return err
	}

	name := fs.Arg(0)
	assigns, err := hxprops.ParseAssignments(rawAttrs)
	if err != nil {
		return err
	}
	if outer == "" {
		outer = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}

	res, err := engine.Resolve(hxprops.Request{
		Template: name,
		Attrs:    assigns,
		Outer:    outer,
		HTML:     body,
	})
	if err != nil {
		reportError(stdout, name, err)
		return errFailed
	}
	reportResolution(stdout, res)
	return nil
}

func newGenerator(cfg *config.Config, engine *hxprops.Engine, dryRun bool, out, pkg string) *generator.Generator {
	if pkg == "" && out == "" {
		pkg = cfg.Templates.Package
	}
	return generator.New(generator.Options{
		DryRun:  dryRun,
		Root:    cfg.Templates.Root,
		Include: cfg.Templates.Include,
		Ignore:  cfg.Templates.Ignore,
		OutDir:  out,
		Package: pkg,
		Parser:  engine.Parser(),
		Log:     stdout,
	})
}

func runGenerate(args []string) error {
	fs, c := newFlagSet("generate")
	var (
		dryRun bool
		out    string
		pkg    string
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be generated")
	fs.StringVar(&out, "out", "", "output directory (default: template root)")
	fs.StringVar(&pkg, "package", "", "package name for generated files")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	cfg, engine, err := c.setup(false)
	if err != nil {
		return err
	}
	return newGenerator(cfg, engine, dryRun, out, pkg).Generate()
}

func runClean(args []string) error {
	fs, c := newFlagSet("clean")
	var dryRun bool
	var out string
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be removed")
	fs.StringVar(&out, "out", "", "output directory (default: template root)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	cfg, engine, err := c.setup(false)
	if err != nil {
		return err
	}
	return newGenerator(cfg, engine, dryRun, out, "").Clean()
}

func included(key string, include []string) bool {
	for _, pattern := range include {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return true
		}
	}
	return false
}

func runWatch(args []string) error {
	fs, c := newFlagSet("watch")
	var regenerate bool
	fs.BoolVar(&regenerate, "generate", false, "regenerate props code after each change")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	changed := make(chan string, 64)
	cfg, engine, err := c.setup(true, hxprops.WithOnChange(func(key string) {
		select {
		case changed <- key:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer engine.Close()
	log := logger.ForComponent("watch")

	names, err := templates(cfg, nil)
	if err != nil {
		return err
	}
	lint(engine, names)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watching templates", slog.String("root", cfg.Templates.Root))
	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-changed:
			relint(cfg, engine, key, regenerate, log)
		}
	}
}

func relint(cfg *config.Config, engine *hxprops.Engine, key string, regenerate bool, log *slog.Logger) {
	if !included(key, cfg.Templates.Include) {
		return
	}
	if _, err := os.Stat(filepath.Join(cfg.Templates.Root, filepath.FromSlash(key))); err != nil {
		log.Info("template removed", "template", key)
		return
	}
	if lint(engine, []string{key}) > 0 || !regenerate {
		return
	}
	if err := newGenerator(cfg, engine, false, "", "").Generate(); err != nil {
		log.Error("generate failed", "error", err)
	}
}
