package types

// RoleAdmin is the only role allowed to write to admin-gated modules.
const RoleAdmin = "admin"

// Identity is the acting user as supplied by the identity provider.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Present reports whether the identity carries a user ID.
func (i *Identity) Present() bool {
	return i != nil && i.UserID != ""
}

// IsAdmin reports whether the identity has the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Present() && i.Role == RoleAdmin
}

// CanWrite reports whether the identity may write to a module. Modules that
// are not admin-gated accept any present identity.
func (i *Identity) CanWrite(adminOnly bool) bool {
	if !i.Present() {
		return false
	}
	return !adminOnly || i.IsAdmin()
}

// Translator maps a label key to display text for the active locale.
type Translator interface {
	T(key string) string
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(key string) string

func (f TranslatorFunc) T(key string) string { return f(key) }

// IdentityTranslator returns label keys unchanged.
var IdentityTranslator Translator = TranslatorFunc(func(key string) string { return key })
