package view

import "github.com/mesh-intelligence/boardroom/pkg/types"

// Accessor extracts the value a chart groups or sums by.
type Accessor func(types.Record) any

// Field returns an accessor for the raw value of key.
func Field(key string) Accessor {
	return func(r types.Record) any {
		return r[key]
	}
}

// Translated returns an accessor that maps the stringified value of key
// through tr, so chart groups carry display labels instead of codes.
func Translated(key string, tr types.Translator) Accessor {
	if tr == nil {
		tr = types.IdentityTranslator
	}
	return func(r types.Record) any {
		s := types.Stringify(r[key])
		if s == "" {
			return ""
		}
		return tr.T(s)
	}
}

// Number returns an accessor for the numeric value of key; missing or
// non-numeric values read as 0.
func Number(key string) Accessor {
	return func(r types.Record) any {
		f, _ := types.ToNumber(r[key])
		return f
	}
}

// OptionPrefix namespaces the translation keys of enum option codes.
const OptionPrefix = "option."

// OptionLabels returns a translator for enum option codes. A code without a
// translation is shown as is.
func OptionLabels(tr types.Translator) types.Translator {
	if tr == nil {
		return types.IdentityTranslator
	}
	return types.TranslatorFunc(func(code string) string {
		key := OptionPrefix + code
		if label := tr.T(key); label != key {
			return label
		}
		return code
	})
}
