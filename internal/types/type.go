package types

type Type interface {
	String() string
	SameAs(t Type) bool
}

// AssignableTo reports whether a value of type from may be stored where to is expected.
// The empty list literal fits every list type, also when nested in a list literal.
func AssignableTo(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}

	if fromList, ok := from.(*ListType); ok {
		if toList, ok := to.(*ListType); ok {
			if fromList.Elem == nil {
				return true
			}
			if toList.Elem == nil {
				return false
			}
			return AssignableTo(fromList.Elem, toList.Elem)
		}
	}

	return from.SameAs(to)
}

// IsInferred reports whether every list inside t has a known element type.
func IsInferred(t Type) bool {
	if listType, ok := t.(*ListType); ok {
		return listType.Elem != nil && IsInferred(listType.Elem)
	}
	return true
}

// IsNumeric reports whether t is Int or Float.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case *IntType, *FloatType:
		return true
	}
	return false
}

// IsCopy reports whether values of t can be duplicated without an explicit clone.
func IsCopy(t Type) bool {
	switch t.(type) {
	case *IntType, *FloatType, *BoolType, *VoidType:
		return true
	}
	return false
}

var (
	Int   Type = &IntType{}
	Float Type = &FloatType{}
	Str   Type = &StrType{}
	Bool  Type = &BoolType{}
	Void  Type = &VoidType{}
)
