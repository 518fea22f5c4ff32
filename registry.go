package hxprops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// DefaultPrefix is where Handler expects to be mounted.
const DefaultPrefix = "/_hx/"

// Registry holds named components and renders call sites against them.
type Registry struct {
	mu         sync.RWMutex
	engine     *Engine
	encoder    *Encoder
	encrypt    bool
	prefix     string
	components map[string]*Component
	log        *slog.Logger

	// OnError is called when the re-render handler fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRegistry creates a registry resolving through engine. The token secret
// comes from the engine's config (tokens.secret); when it is empty, Token
// and Handler are disabled.
func NewRegistry(engine *Engine) *Registry {
	reg := &Registry{
		engine:     engine,
		prefix:     DefaultPrefix,
		components: make(map[string]*Component),
		log:        engine.log,
	}

	if secret := engine.cfg.Tokens.Secret; secret != "" {
		enc, err := NewEncoder([]byte(secret))
		if err != nil {
			panic(fmt.Sprintf("hxprops: failed to create encoder: %v", err))
		}
		reg.encoder = enc
		reg.encrypt = engine.cfg.Tokens.Encrypt
	}

	// Default error handler
	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsTokenError(err):
			http.Error(w, "Bad request", http.StatusBadRequest)
		case errors.Is(err, ErrUnknownComponent):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsValidationError(err):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}

	return reg
}

// Engine returns the registry's engine.
func (reg *Registry) Engine() *Engine {
	return reg.engine
}

// Mount sets the path prefix Handler is mounted at. URLs built by URL,
// Lazy and Defer use it.
func (reg *Registry) Mount(prefix string) *Registry {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	reg.prefix = prefix
	return reg
}

// Add registers components. Panics on a duplicate name, since that is a
// wiring mistake rather than a runtime condition.
func (reg *Registry) Add(components ...*Component) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, c := range components {
		if _, exists := reg.components[c.name]; exists {
			panic(fmt.Sprintf("hxprops: duplicate component %q", c.name))
		}
		reg.components[c.name] = c
	}
}

// Get returns the component registered as name.
func (reg *Registry) Get(name string) (*Component, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	c, ok := reg.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return c, nil
}

// Names returns the registered component names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.components))
	for name := range reg.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a call site without rendering it.
func (reg *Registry) Resolve(name string, assigns []Assignment, content string) (*Resolution, error) {
	c, err := reg.Get(name)
	if err != nil {
		return nil, err
	}
	return reg.engine.Resolve(c.request(assigns, content))
}

// Instantiate returns a templ component rendering name called with assigns
// and content, the markup between the component's open and close tags.
// Resolution errors surface from Render.
//
//	@reg.Instantiate("card", []hxprops.Assignment{hxprops.Attr("title", "Hi")}, "")
func (reg *Registry) Instantiate(name string, assigns []Assignment, content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := reg.render(ctx, w, name, assigns, content)
		return err
	})
}

// InstantiateProps is Instantiate for a generated props struct.
func (reg *Registry) InstantiateProps(p Props, content string) templ.Component {
	return reg.Instantiate(p.ComponentName(), p.Assignments(), content)
}

func (reg *Registry) render(ctx context.Context, w io.Writer, name string, assigns []Assignment, content string) (*Resolution, error) {
	c, err := reg.Get(name)
	if err != nil {
		return nil, err
	}
	res, err := reg.engine.Resolve(c.request(assigns, content))
	if err != nil {
		return nil, err
	}
	if c.render == nil {
		return res, nil
	}
	return res, c.render(ctx, res).Render(ctx, w)
}

// Token seals a call site so Handler can re-render it later. Content is not
// carried; re-rendered components see empty slots.
func (reg *Registry) Token(name string, assigns []Assignment) (string, error) {
	c, err := reg.Get(name)
	if err != nil {
		return "", err
	}
	if reg.encoder == nil {
		return "", errors.New("hxprops: tokens disabled, set tokens.secret")
	}
	return reg.encoder.Seal(Call{Component: name, Attrs: toPairs(assigns)}, reg.encrypt || c.sensitive)
}

// URL returns the re-render URL for a call site.
func (reg *Registry) URL(name string, assigns []Assignment) (string, error) {
	token, err := reg.Token(name, assigns)
	if err != nil {
		return "", err
	}
	return reg.prefix + url.PathEscape(name) + "?p=" + token, nil
}

// Lazy returns a placeholder that loads the call site when scrolled into
// view (hx-trigger "intersect once").
//
//	@reg.Lazy("comments", []hxprops.Assignment{hxprops.Attr("post", id)}, spinner())
func (reg *Registry) Lazy(name string, assigns []Assignment, placeholder templ.Component) templ.Component {
	return reg.deferred(name, assigns, placeholder, "intersect once")
}

// Defer returns a placeholder that loads the call site after page load.
func (reg *Registry) Defer(name string, assigns []Assignment, placeholder templ.Component) templ.Component {
	return reg.deferred(name, assigns, placeholder, "load")
}

func (reg *Registry) deferred(name string, assigns []Assignment, placeholder templ.Component, trigger string) templ.Component {
	u, err := reg.URL(name, assigns)
	if err != nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error { return err })
	}
	return lazyComponent(u, placeholder, trigger)
}

// Handler serves re-render requests: GET {prefix}{name}?p={token}.
// Mount it at the registry's prefix:
//
//	http.Handle("/_hx/", reg.Handler())
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if reg.encoder == nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, reg.prefix)
		call, err := reg.encoder.Open(r.URL.Query().Get("p"))
		if err == nil && call.Component != name {
			err = fmt.Errorf("%w: token for %q used on %q", ErrInvalidToken, call.Component, name)
		}
		if err != nil {
			reg.fail(w, r, wrapError(err))
			return
		}

		var buf bytes.Buffer
		if _, err := reg.render(r.Context(), &buf, name, fromPairs(call.Attrs), ""); err != nil {
			reg.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Add("Vary", "HX-Request")
		buf.WriteTo(w)
	})
}

func (reg *Registry) fail(w http.ResponseWriter, r *http.Request, err error) {
	reg.log.Debug("re-render failed", "path", r.URL.Path, "error", err)
	reg.OnError(w, r, err)
}
