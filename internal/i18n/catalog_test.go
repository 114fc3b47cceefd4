package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	tags := c.Locales()
	require.Len(t, tags, 2)
	assert.Equal(t, "en", tags[0].String())
	assert.Equal(t, "es", tags[1].String())

	es := c.Translator(language.Spanish)
	assert.Equal(t, "Fecha", es.T("column.date"))
	assert.Equal(t, "Digital", es.T("option.Online"))
	assert.Equal(t, "Guardado", es.T("form.saved"))

	en := c.Translator(language.English)
	assert.Equal(t, "Date", en.T("column.date"))
	assert.Equal(t, "Press log", en.T("module.press_logs"))
}

func TestLocalesShareKeys(t *testing.T) {
	c := Default()
	assert.Equal(t, c.Keys(language.English), c.Keys(language.Spanish))
}

func TestTranslatorFallbacks(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{"regional variant uses base language", "es-EC", "column.amount", "Monto"},
		{"unknown key returns key", "es", "column.nope", "column.nope"},
		{"unsupported locale returns key", "ja", "column.date", "column.date"},
		{"prefix alone is not a label", "en", "column", "column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := c.Translator(language.MustParse(tt.locale))
			assert.Equal(t, tt.want, tr.T(tt.key))
		})
	}
}

func TestParseFlattensNestedKeys(t *testing.T) {
	labels, err := Parse([]byte("a:\n  b:\n    c: deep\n  d: 3\nempty:\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.b.c": "deep", "a.d": "3"}, labels)
}

func TestLoad(t *testing.T) {
	t.Run("reads yaml files only", func(t *testing.T) {
		fsys := fstest.MapFS{
			"l/fr.yaml":  {Data: []byte("column:\n  date: Date\n")},
			"l/notes.md": {Data: []byte("ignored")},
		}
		c, err := Load(fsys, "l")
		require.NoError(t, err)
		require.Len(t, c.Locales(), 1)
		assert.Equal(t, "Date", c.Translator(language.French).T("column.date"))
	})

	t.Run("empty directory", func(t *testing.T) {
		fsys := fstest.MapFS{"l/readme.txt": {Data: []byte("x")}}
		_, err := Load(fsys, "l")
		assert.ErrorIs(t, err, ErrNoLocales)
	})

	t.Run("bad locale name", func(t *testing.T) {
		fsys := fstest.MapFS{"l/not a tag.yaml": {Data: []byte("a: b\n")}}
		_, err := Load(fsys, "l")
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		fsys := fstest.MapFS{"l/en.yaml": {Data: []byte("a: [\n")}}
		_, err := Load(fsys, "l")
		assert.Error(t, err)
	})
}
