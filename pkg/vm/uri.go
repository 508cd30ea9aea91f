package vm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// ObjectURI is the identity of a property: a name plus an optional
// namespace (empty for AS2 members).
type ObjectURI struct {
	Name      string
	Namespace string
}

// URI builds the identity of an un-namespaced member.
func URI(name string) ObjectURI { return ObjectURI{Name: name} }

func (u ObjectURI) String() string {
	if u.Namespace == "" {
		return u.Name
	}
	return u.Namespace + "::" + u.Name
}

// Well-known member names.
var (
	uriProto        = URI("__proto__")
	uriResolve      = URI("__resolve")
	uriConstructor  = URI("constructor")
	uriCtorInternal = URI("__constructor__")
	uriPrototype    = URI("prototype")
	uriValueOf      = URI("valueOf")
	uriToString     = URI("toString")
	uriName         = URI("name")
	uriMessage      = URI("message")
	uriLength       = URI("length")
)

// foldKey indexes properties case-insensitively.
type foldKey struct {
	name string
	ns   string
}

func foldURI(u ObjectURI) foldKey {
	return foldKey{name: foldName(u.Name), ns: u.Namespace}
}

// foldName lowers ASCII names directly and uses Unicode case folding for
// anything else.
func foldName(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(s)
	}
	return cases.Fold().String(s)
}
