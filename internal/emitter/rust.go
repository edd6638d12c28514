package emitter

import (
	"fmt"
	"strings"

	"github.com/kendroooo/rustic/internal/types"
)

const globalPrefix = "__rustic_g_"

// rustKeywords are identifiers Rustic allows but Rust reserves.
var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "continue": true, "dyn": true,
	"enum": true, "extern": true, "false": true, "impl": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"static": true, "trait": true, "true": true, "type": true, "unsafe": true, "use": true,
	"where": true, "while": true, "abstract": true, "become": true, "box": true, "do": true,
	"final": true, "macro": true, "override": true, "priv": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true, "try": true, "gen": true,
	"fn": true, "for": true, "if": true, "else": true, "in": true, "return": true,
	"struct": true, "const": true,
}

// preludeNames are names generated code uses unqualified. A user item with
// one of these names would shadow the prelude item inside the module.
var preludeNames = map[string]bool{
	"Vec": true, "String": true, "Option": true, "Result": true, "Box": true,
	"Some": true, "None": true, "Ok": true, "Err": true,
	"Clone": true, "Debug": true, "PartialEq": true,
	"i64": true, "f64": true, "bool": true, "str": true,
}

// rustIdent maps a Rustic identifier to a valid Rust identifier.
func rustIdent(name string) string {
	switch name {
	case "self", "Self", "super", "crate", "_":
		return name + "_"
	}
	if preludeNames[name] {
		return name + "_"
	}
	if rustKeywords[name] {
		return "r#" + name
	}
	return name
}

func globalIdent(name string) string {
	return globalPrefix + name
}

func rustType(t types.Type) string {
	switch tt := t.(type) {
	case *types.IntType:
		return "i64"
	case *types.FloatType:
		return "f64"
	case *types.StrType:
		return "String"
	case *types.BoolType:
		return "bool"
	case *types.VoidType:
		return "()"
	case *types.ListType:
		if tt.Elem == nil {
			return "Vec<_>"
		}
		return fmt.Sprintf("Vec<%s>", rustType(tt.Elem))
	case *types.StructType:
		return rustIdent(tt.Name)
	}
	panic(fmt.Sprintf("rustType(): unexpected type %T", t))
}

// rustStringLiteral quotes s as a Rust string literal.
func rustStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func rustFloatLiteral(raw string) string {
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw + "f64"
}

// ModuleIdent returns the name a generated module is declared under in the crate root.
// Module files keep their name, so only keywords are escaped.
func ModuleIdent(name string) string {
	if preludeNames[name] {
		return name
	}
	return rustIdent(name)
}
