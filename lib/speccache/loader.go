package speccache

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pthm/hxprops/lib/paramspec"
)

// FSLoader reads templates from fsys, keyed by slash-separated path. A
// template without a declaration yields an empty parameter list.
func FSLoader(fsys fs.FS) Loader {
	return func(key string) (Entry, error) {
		data, err := fs.ReadFile(fsys, key)
		if err != nil {
			return Entry{}, err
		}
		version, err := statVersion(fsys, key)
		if err != nil {
			return Entry{}, err
		}
		src, _ := paramspec.Extract(string(data))
		return Entry{Source: src, Version: version}, nil
	}
}

// ModTimeProbe treats an entry as fresh while the file's modification time
// and size are unchanged.
func ModTimeProbe(fsys fs.FS) Probe {
	return func(key, version string) bool {
		current, err := statVersion(fsys, key)
		return err == nil && current == version
	}
}

func statVersion(fsys fs.FS, key string) (string, error) {
	info, err := fs.Stat(fsys, key)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36), nil
}

// MapLoader serves templates held in memory. Every template has version
// "0", so pair it with AlwaysFresh.
func MapLoader(templates map[string]string) Loader {
	return func(key string) (Entry, error) {
		tmpl, ok := templates[key]
		if !ok {
			return Entry{}, fmt.Errorf("template %q: %w", key, fs.ErrNotExist)
		}
		src, _ := paramspec.Extract(tmpl)
		return Entry{Source: src, Version: "0"}, nil
	}
}
