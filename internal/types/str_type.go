package types

type StrType struct{}

func (*StrType) String() string {
	return "Str"
}

func (*StrType) SameAs(t Type) bool {
	_, ok := t.(*StrType)
	return ok
}
