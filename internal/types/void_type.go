package types

type VoidType struct{}

func (*VoidType) String() string {
	return "Void"
}

func (*VoidType) SameAs(t Type) bool {
	_, ok := t.(*VoidType)
	return ok
}
