package types

import "fmt"

// ListType is List<Elem>. A nil Elem is the type of the empty literal `[]`.
type ListType struct {
	Elem Type
}

func (l *ListType) String() string {
	if l.Elem == nil {
		return "List<?>"
	}
	return fmt.Sprintf("List<%s>", l.Elem.String())
}

func (l *ListType) SameAs(t Type) bool {
	listType, ok := t.(*ListType)
	if !ok {
		return false
	}

	if l.Elem == nil || listType.Elem == nil {
		return l.Elem == nil && listType.Elem == nil
	}
	return l.Elem.SameAs(listType.Elem)
}
