// Package i18n provides display labels for module titles, column headers,
// option codes and form messages. Label sets are YAML files, one per
// locale, with nested keys flattened to dotted form ("column.date").
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

//go:embed locales/*.yaml
var embedded embed.FS

// ErrNoLocales is returned when a catalog source holds no label sets.
var ErrNoLocales = errors.New("no locales found")

// Catalog holds the label sets of every loaded locale.
type Catalog struct {
	tags    []language.Tag
	labels  []map[string]string
	matcher language.Matcher
}

// Default returns the catalog built into the binary.
func Default() *Catalog {
	c, err := Load(embedded, "locales")
	if err != nil {
		panic(fmt.Sprintf("loading embedded locales: %v", err))
	}
	return c
}

// Load reads every <locale>.yaml file in dir of fsys.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	c := &Catalog{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", name, err)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		labels, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		c.tags = append(c.tags, tag)
		c.labels = append(c.labels, labels)
	}
	if len(c.tags) == 0 {
		return nil, ErrNoLocales
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Parse decodes one YAML label set into dotted keys.
func Parse(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, out)
		case nil:
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}

// Locales returns the loaded locale tags.
func (c *Catalog) Locales() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Translator returns the translator for the locale closest to tag. Regional
// variants fall back to their base language ("es-EC" uses "es"). A locale
// with no match gets the identity translator. Keys missing from the label
// set are returned unchanged.
func (c *Catalog) Translator(tag language.Tag) types.Translator {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return types.IdentityTranslator
	}
	labels := c.labels[idx]
	return types.TranslatorFunc(func(key string) string {
		if s, ok := labels[key]; ok {
			return s
		}
		return key
	})
}

// Keys returns the sorted label keys of the locale closest to tag.
func (c *Catalog) Keys(tag language.Tag) []string {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return nil
	}
	keys := make([]string, 0, len(c.labels[idx]))
	for k := range c.labels[idx] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
