// Package policy holds the acceptance rules applied to an upload: the
// extension and MIME type allow-lists and the byte ceiling.
//
// A Policy is not safe for concurrent mutation. Owners that share one across
// goroutines guard it themselves and hand each upload a Clone.
package policy

import (
	"regexp"
	"strings"

	"github.com/kbukum/streamupload/util"
)

// Policy is the set of acceptance rules evaluated against an upload.
type Policy struct {
	extensions []string
	derived    []string
	explicit   []string
	allowed    []allowedType
	maxSize    uint64
	hasMax     bool
}

type allowedType struct {
	raw     string
	pattern *regexp.Regexp
}

// New returns an empty policy that accepts every type and size.
func New() *Policy {
	return &Policy{}
}

// SetExtensions replaces the allowed extensions and re-derives the MIME types
// they map to. Extensions without a known type are kept in the extension list
// but contribute no type. An empty list leaves the policy unchanged.
func (p *Policy) SetExtensions(exts []string) []string {
	exts = util.Unique(util.Filter(util.Map(exts, NormalizeExtension), nonEmpty))
	if len(exts) == 0 {
		return p.Extensions()
	}

	p.extensions = exts
	p.derived = p.derived[:0]
	for _, ext := range exts {
		if t := TypeByExtension(ext); t != "" {
			p.derived = append(p.derived, t)
		}
	}
	p.rebuild()
	return p.Extensions()
}

// SetTypes adds explicit MIME types, which may be regular expressions such as
// "image/.*", to the allow-list. Previously derived or added types are kept.
// It returns the full allow-list.
func (p *Policy) SetTypes(types []string) []string {
	types = util.Filter(util.Map(types, strings.TrimSpace), nonEmpty)
	if len(types) > 0 {
		p.explicit = util.Unique(append(p.explicit, types...))
		p.rebuild()
	}
	return p.Types()
}

// SetMaxSize sets the byte ceiling. Negative sizes are ignored and the
// previous ceiling is returned unchanged.
func (p *Policy) SetMaxSize(size int64) (uint64, bool) {
	if size >= 0 {
		p.maxSize = uint64(size)
		p.hasMax = true
	}
	return p.MaxSize()
}

// ClearMaxSize removes the byte ceiling.
func (p *Policy) ClearMaxSize() {
	p.maxSize, p.hasMax = 0, false
}

// Extensions returns a copy of the allowed extensions.
func (p *Policy) Extensions() []string {
	return append([]string(nil), p.extensions...)
}

// Types returns a copy of the allowed MIME types.
func (p *Policy) Types() []string {
	return util.Map(p.allowed, func(a allowedType) string { return a.raw })
}

// MaxSize returns the byte ceiling and whether one is set.
func (p *Policy) MaxSize() (uint64, bool) {
	return p.maxSize, p.hasMax
}

// CheckType reports whether declaredType is acceptable for filename.
//
// When filename is non-empty, the type derived from its extension must equal
// declaredType exactly. Then, if the allow-list is non-empty, declaredType
// must contain one of its entries or match it as a regular expression.
func (p *Policy) CheckType(declaredType, filename string) bool {
	if filename != "" && TypeByFilename(filename) != declaredType {
		return false
	}
	if len(p.allowed) == 0 {
		return true
	}
	for _, a := range p.allowed {
		if strings.Contains(declaredType, a.raw) {
			return true
		}
		if a.pattern != nil && a.pattern.MatchString(declaredType) {
			return true
		}
	}
	return false
}

// CheckSize reports whether n bytes are within the ceiling.
func (p *Policy) CheckSize(n uint64) bool {
	return !p.hasMax || n <= p.maxSize
}

// Clone returns an independent copy of p.
func (p *Policy) Clone() *Policy {
	return &Policy{
		extensions: append([]string(nil), p.extensions...),
		derived:    append([]string(nil), p.derived...),
		explicit:   append([]string(nil), p.explicit...),
		allowed:    append([]allowedType(nil), p.allowed...),
		maxSize:    p.maxSize,
		hasMax:     p.hasMax,
	}
}

func (p *Policy) rebuild() {
	raw := util.Unique(append(append([]string(nil), p.derived...), p.explicit...))
	p.allowed = util.Map(raw, func(s string) allowedType {
		// Entries that are not valid expressions still match as substrings.
		re, _ := regexp.Compile(s)
		return allowedType{raw: s, pattern: re}
	})
}

func nonEmpty(s string) bool { return s != "" }
