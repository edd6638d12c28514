package types

type BoolType struct{}

func (*BoolType) String() string {
	return "Bool"
}

func (*BoolType) SameAs(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}
