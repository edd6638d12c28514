package types

type Field struct {
	Name string
	Type Type
}

// StructType keeps fields in declaration order. Two struct types are the same iff their names match.
type StructType struct {
	Name   string
	Fields []Field
}

func (s *StructType) String() string {
	return s.Name
}

func (s *StructType) SameAs(t Type) bool {
	structType, ok := t.(*StructType)
	if !ok {
		return false
	}
	return s.Name == structType.Name
}

func (s *StructType) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *StructType) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
