package types

type IntType struct{}

func (*IntType) String() string {
	return "Int"
}

func (*IntType) SameAs(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}
