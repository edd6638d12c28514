package types

type FloatType struct{}

func (*FloatType) String() string {
	return "Float"
}

func (*FloatType) SameAs(t Type) bool {
	_, ok := t.(*FloatType)
	return ok
}
