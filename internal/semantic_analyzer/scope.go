package semantic_analyzer

import (
	"github.com/kendroooo/rustic/internal/source"
	"github.com/kendroooo/rustic/internal/types"
)

type bindingKind int

const (
	localBinding bindingKind = iota
	paramBinding
	loopBinding
	globalBinding
)

type binding struct {
	Kind    bindingKind
	Type    types.Type
	Mutable bool
	Span    source.Span

	global *Global
}

type scope struct {
	parent   *scope
	bindings map[string]*binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: make(map[string]*binding)}
}

func (s *scope) lookup(name string) (*binding, bool) {
	b, ok := s.bindings[name]
	if ok {
		return b, true
	}

	if s.parent != nil {
		return s.parent.lookup(name)
	}

	return nil, false
}

// define adds a binding and reports false when the name already exists in this very scope.
func (s *scope) define(name string, b *binding) bool {
	if _, ok := s.bindings[name]; ok {
		return false
	}
	s.bindings[name] = b
	return true
}
