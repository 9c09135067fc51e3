package di

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/pixie-sh/errors-go"
)

type keyKind uint8

const (
	kindNone keyKind = iota
	kindString
	kindSymbol
	kindType
)

// ServiceKey identifies a registration inside a container. It is a closed
// tagged union over the three supported identifier shapes: plain string
// tokens, symbolic tokens created via NewSymbol, and type identities.
//
// Two keys address the same registration iff their normalized forms are
// equal. Because type identities normalize to their declared type name, a
// string token spelled exactly like a registered type name collides with it;
// that is a documented limitation of name-based normalization, not an error.
type ServiceKey struct {
	kind keyKind
	str  string
	sym  *Symbol
	typ  reflect.Type
}

// StringKey wraps a plain string token as a ServiceKey.
func StringKey(token string) ServiceKey {
	return ServiceKey{kind: kindString, str: token}
}

// SymbolKey wraps a symbolic token as a ServiceKey.
func SymbolKey(sym *Symbol) ServiceKey {
	return ServiceKey{kind: kindSymbol, sym: sym}
}

// TypeKey wraps a type identity as a ServiceKey. Pointer types are collapsed
// to their element type, so TypeKey(*Database) and TypeKey(Database) address
// the same registration.
func TypeKey(t reflect.Type) ServiceKey {
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return ServiceKey{kind: kindType, typ: t}
}

// TypeOf returns the ServiceKey for the type identity of T.
func TypeOf[T any]() ServiceKey {
	var t *T
	return TypeKey(reflect.TypeOf(t).Elem())
}

// AsKey coerces a heterogeneous identifier into a ServiceKey. It accepts a
// ServiceKey as-is, strings as string tokens, symbols as symbolic tokens and
// reflect.Type values as type identities. Any other value is keyed by its own
// dynamic type, so AsKey(Database{}) and TypeOf[Database]() are equivalent.
// A nil identifier yields the zero (invalid) key, rejected at registration.
func AsKey(key any) ServiceKey {
	switch v := key.(type) {
	case nil:
		return ServiceKey{}
	case ServiceKey:
		return v
	case string:
		return StringKey(v)
	case *Symbol:
		return SymbolKey(v)
	case reflect.Type:
		return TypeKey(v)
	default:
		return TypeKey(reflect.TypeOf(key))
	}
}

// IsZero reports whether the key carries no identifier at all.
func (k ServiceKey) IsZero() bool {
	return k.kind == kindNone
}

// Normalize renders the key into the canonical comparable form used as a map
// key throughout the engine. It is total and pure: string tokens normalize to
// themselves, symbolic tokens to their unique rendering, and type identities
// to the declared type name.
func (k ServiceKey) Normalize() string {
	switch k.kind {
	case kindString:
		return k.str
	case kindSymbol:
		return k.sym.String()
	case kindType:
		if k.typ == nil {
			return "<nil type>"
		}

		return k.typ.String()
	default:
		return ""
	}
}

// Equal reports whether both keys normalize to the same form.
func (k ServiceKey) Equal(other ServiceKey) bool {
	return k.Normalize() == other.Normalize()
}

func (k ServiceKey) String() string {
	return k.Normalize()
}

// typeName returns the name under which a declared type is looked up in the
// type-name index: the bare declared name for type identities, the normalized
// form for everything else.
func (k ServiceKey) typeName() string {
	if k.kind == kindType && k.typ != nil && k.typ.Name() != "" {
		return k.typ.Name()
	}

	return k.Normalize()
}

var symbolSeq atomic.Uint64

// Symbol is a symbolic token: a named identifier that never collides with
// any other key, including other symbols carrying the same name. Create one
// with NewSymbol and hold on to it; a symbol that goes out of scope can never
// be used to resolve its registration again.
type Symbol struct {
	name string
	id   uint64
}

// NewSymbol creates a unique symbolic token. The name must not be empty; it
// only serves the textual rendering, uniqueness comes from the token itself.
func NewSymbol(name string) *Symbol {
	if name == "" {
		errors.Must(errors.New("symbol name cannot be empty", InvalidRegistrationErrorCode))
	}

	return &Symbol{name: name, id: symbolSeq.Add(1)}
}

// String returns the unique textual rendering of the symbol.
func (s *Symbol) String() string {
	return fmt.Sprintf("%s#%d", s.name, s.id)
}
