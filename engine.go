package hxprops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/pthm/hxprops/internal/logger"
	"github.com/pthm/hxprops/lib/attrs"
	"github.com/pthm/hxprops/lib/coerce"
	"github.com/pthm/hxprops/lib/config"
	"github.com/pthm/hxprops/lib/paramspec"
	"github.com/pthm/hxprops/lib/slots"
	"github.com/pthm/hxprops/lib/speccache"
)

// Engine resolves component instantiations: it looks up the component's
// parameter declaration, binds and validates call-site values, routes the
// remaining attributes into an attribute set and splits the body into slots.
//
// An Engine is safe for concurrent use. The only state shared between calls
// is the declaration cache; everything a call produces is fresh.
type Engine struct {
	cfg        *config.Config
	parser     *paramspec.Parser
	cache      *speccache.Cache
	attrOpts   []attrs.Option
	syntax     slots.Syntax
	cutoff     float64
	validators map[string]paramspec.ValidatorFactory
	loader     speccache.Loader
	probe      speccache.Probe
	log        *slog.Logger

	onChange  func(template string)
	watcher   *speccache.Watcher
	stopWatch context.CancelFunc
	watchDone chan struct{}
	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to logger.ForComponent("hxprops").
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithCache injects a declaration cache, for sharing one cache between
// engines or pre-warming it. The cache's own parser is used for misses.
func WithCache(c *speccache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithValidators registers custom validators usable in type annotations,
// e.g. str(slug).
func WithValidators(v map[string]paramspec.ValidatorFactory) Option {
	return func(e *Engine) {
		if e.validators == nil {
			e.validators = make(map[string]paramspec.ValidatorFactory)
		}
		maps.Copy(e.validators, v)
	}
}

// WithLoader sets the loader and freshness probe used when a Request
// carries none.
func WithLoader(load speccache.Loader, probe speccache.Probe) Option {
	return func(e *Engine) {
		e.loader = load
		e.probe = probe
	}
}

// WithOnChange registers fn to run after the template watcher invalidates
// a template. It only fires when cache.watch is enabled.
func WithOnChange(fn func(template string)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// NewEngine creates an engine from cfg. A nil cfg means config.Defaults().
// Without WithLoader, templates are read from cfg.Templates.Root. When
// cfg.Cache.Watch is set the engine watches that root and drops cached
// declarations as files change; call Close to stop it.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg: cfg,
		attrOpts: []attrs.Option{
			attrs.WithMarkers(cfg.Attrs.AppendMarker, cfg.Attrs.PrependMarker),
		},
		syntax: slots.Syntax{
			ComponentPrefix: cfg.Slots.ComponentPrefix,
			SlotPrefix:      cfg.Slots.SlotPrefix,
		},
		cutoff: cfg.Enum.SuggestionCutoff,
	}
	if len(cfg.Attrs.Passthrough) > 0 {
		e.attrOpts = append(e.attrOpts, attrs.WithPassthrough(cfg.Attrs.Passthrough...))
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.ForComponent("hxprops")
	}

	e.parser = paramspec.NewParser(paramspec.Options{
		ReservedPrefix: cfg.Params.ReservedPrefix,
		ReservedNames:  cfg.Params.ReservedNames,
		HyphenPrefixes: cfg.Params.HyphenPrefixes,
		Validators:     e.validators,
	})
	if e.cache == nil {
		cache, err := speccache.New(e.parser, cfg.Cache.Size, speccache.WithLogger(e.log))
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	if e.loader == nil {
		fsys := os.DirFS(cfg.Templates.Root)
		e.loader, e.probe = speccache.FSLoader(fsys), speccache.ModTimeProbe(fsys)
	}
	if cfg.Cache.Watch {
		if err := e.watch(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) watch() error {
	w, err := speccache.NewWatcher(e.cache, speccache.WatcherConfig{
		Root:     e.cfg.Templates.Root,
		Ignore:   e.cfg.Templates.Ignore,
		OnChange: e.onChange,
		Logger:   e.log,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", e.cfg.Templates.Root, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.watcher, e.stopWatch = w, cancel
	e.watchDone = make(chan struct{})
	go func() {
		defer close(e.watchDone)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Warn("template watcher stopped", "error", err)
		}
	}()
	e.log.Debug("watching templates", "root", e.cfg.Templates.Root)
	return nil
}

// Close stops the template watcher. It is a no-op when cache.watch is off
// and safe to call more than once.
func (e *Engine) Close() error {
	if e.watcher == nil {
		return nil
	}
	var err error
	e.closeOnce.Do(func() {
		e.stopWatch()
		err = e.watcher.Close()
		<-e.watchDone
	})
	return err
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Parser returns the declaration parser.
func (e *Engine) Parser() *paramspec.Parser { return e.parser }

// Cache returns the declaration cache.
func (e *Engine) Cache() *speccache.Cache { return e.cache }

// Syntax returns the component and slot tag prefixes.
func (e *Engine) Syntax() slots.Syntax { return e.syntax }

// Attrs returns an empty attribute set configured like the ones Resolve
// builds.
func (e *Engine) Attrs() *attrs.Set { return attrs.New(e.attrOpts...) }

// Request describes one component instantiation.
type Request struct {
	// Template identifies the component's template in the cache.
	Template string
	// Loader and Probe override the engine's loader for this template.
	Loader speccache.Loader
	Probe  speccache.Probe

	// Attrs are the call-site assignments, in call order.
	Attrs []Assignment
	// Fallbacks are component-level attribute defaults applied where the
	// call site did not set the attribute.
	Fallbacks []attrs.Pair
	// Check runs once after every field has bound cleanly.
	Check coerce.CrossCheck

	// Outer is the component tag name whose close tag ends the body.
	Outer string
	// Body supplies the caller's content as tokens. When nil, HTML is
	// scanned instead; when both are empty the capture is empty.
	Body slots.Source
	HTML string
}

// Specs returns the parsed declaration for template, using load and probe
// or the engine's defaults.
func (e *Engine) Specs(template string, load speccache.Loader, probe speccache.Probe) (*paramspec.List, error) {
	if load == nil {
		load, probe = e.loader, e.probe
	}
	specs, err := e.cache.Get(template, load, probe)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", template, wrapError(err))
	}
	return specs, nil
}

// Resolve runs one instantiation. Template-level problems (a malformed
// declaration, an unterminated slot) are reported before call-site
// problems; call-site problems are reported together as one error.
func (e *Engine) Resolve(req Request) (*Resolution, error) {
	specs, err := e.Specs(req.Template, req.Loader, req.Probe)
	if err != nil {
		return nil, err
	}

	capture, err := e.scan(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Template, wrapError(err))
	}

	out := coerce.Validate(specs, req.Attrs, coerce.Options{Cutoff: e.cutoff, Check: req.Check})
	if !out.OK() {
		e.log.Debug("props rejected", "template", req.Template, "errors", len(out.Errors))
		return nil, fmt.Errorf("%s: %w", req.Template, wrapError(out.Err()))
	}

	set := e.Attrs()
	for _, a := range out.Extra {
		set.Set(a.Key, a.Value)
	}
	if len(req.Fallbacks) > 0 {
		set = set.MergeWithFallbacks(req.Fallbacks)
	}

	return &Resolution{
		Template: req.Template,
		Values:   out.Values,
		Flags:    out.Flags,
		Attrs:    set,
		Slots:    capture,
	}, nil
}

func (e *Engine) scan(req Request) (*slots.Capture, error) {
	sc := slots.Scanner{OnDuplicate: func(name string) {
		e.log.Debug("duplicate slot replaced", "template", req.Template, "slot", name)
	}}
	switch {
	case req.Body != nil:
		return sc.Scan(req.Outer, req.Body)
	case req.HTML != "":
		return sc.ScanHTML(req.Outer, req.HTML, e.syntax)
	default:
		return &slots.Capture{Named: make(map[string]slots.Run)}, nil
	}
}

// Resolution is the outcome of one instantiation.
type Resolution struct {
	Template string
	// Values holds every declared parameter, coerced.
	Values map[string]any
	// Flags holds true for every selected enum token; unselected tokens
	// are absent.
	Flags map[string]bool
	// Attrs holds the assignments that matched no parameter.
	Attrs *attrs.Set
	Slots *slots.Capture
}

// Scope flattens the resolution into a render scope: every value and flag
// by name, plus "attrs" and "contents".
func (r *Resolution) Scope() map[string]any {
	scope := make(map[string]any, len(r.Values)+len(r.Flags)+2)
	for k, v := range r.Values {
		scope[k] = v
	}
	for k, v := range r.Flags {
		scope[k] = v
	}
	scope["attrs"] = r.Attrs
	scope["contents"] = r.Slots
	return scope
}

// Bind loads the resolution into a generated props struct.
func (r *Resolution) Bind(dst Binder) error {
	return dst.LoadBindings(r.Values, r.Flags)
}

// Attr returns a resolved attribute.
func (r *Resolution) Attr(key string) (any, error) {
	v, err := r.Attrs.Get(key)
	return v, wrapError(err)
}

// Slot returns a named slot's content, or the default content for "".
func (r *Resolution) Slot(name string) slots.Run {
	run, _ := r.Slots.Slot(name)
	return run
}
