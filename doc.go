// Package hxprops resolves component call sites for server-rendered Go
// templates: typed parameters, merged HTML attributes and named slots.
//
// A component declares its parameters in a compact mini-language, either in
// a template comment or directly in Go:
//
//	{# props title size:int=3 note:str? variant=primary,secondary,ghost tags:list[str]=[] #}
//
// Each token is name[:type][=default]. A parameter without a default is
// required. A bare comma-separated default declares an enum; it is required
// when its first slot is non-empty (",sm,lg" makes it optional).
//
// # Core Concepts
//
// The Engine turns one call site into a Resolution:
//
//   - Values: every declared parameter, coerced to its type
//   - Flags: true for each selected enum token (variant=primary binds
//     variantPrimary); unselected tokens are absent, not false
//   - Attrs: every assignment that matched no parameter, routed into an
//     attrs.Set that understands nested groups (hx.get), conditional class
//     tokens (class:active=true) and append/prepend markers ("& extra")
//   - Slots: the caller's content split into a default run and named
//     <content:name> runs, with nested components left intact
//
// Errors are collected, not raised one by one. A call with a bad int and a
// bad email reports both:
//
//	res, err := engine.Resolve(req)
//	for _, fe := range hxprops.FieldErrors(err) {
//	    fmt.Println(fe.Field, fe.Kind, fe.Message, fe.Suggestion)
//	}
//
// Sentinels (ErrMissingRequired, ErrEnumRejected, ErrParamSyntax, ...) match
// with errors.Is; structured details are available through errors.As.
//
// # Registration and Rendering
//
// Components are registered explicitly with a Registry:
//
//	engine, _ := hxprops.NewEngine(cfg)
//	reg := hxprops.NewRegistry(engine)
//	reg.Add(hxprops.New("card", `title variant=primary,ghost`, renderCard))
//
//	@reg.Instantiate("card", []hxprops.Assignment{hxprops.Attr("title", "Hi")}, "")
//
// With tokens.secret configured, call sites can be sealed into signed (or,
// for Sensitive components, encrypted) tokens and re-rendered over HTTP:
//
//	http.Handle("/_hx/", reg.Handler())
//	@reg.Lazy("comments", attrs, spinner())
//
// # Declaration Cache
//
// Parsed declarations are cached per template in a bounded LRU and
// re-parsed when the loader's freshness probe reports a change. The
// speccache.Watcher invalidates entries as files change on disk.
//
// # Code Generation
//
// Run 'hxprops generate' to produce a typed props struct for each template
// that declares parameters. The struct implements Binder and Props, so
// resolutions load into typed fields and structs render as call sites.
package hxprops
