package semantic_analyzer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/parser"
	"github.com/kendroooo/rustic/internal/types"
)

func analyze(t *testing.T, src string) (*ast.Program, *Info, compiler_errors.ErrorHandler, error) {
	t.Helper()
	eh := compiler_errors.NewErrorHandler(&bytes.Buffer{})

	tokens, err := lexer.NewLexer([]byte(src), "test.rsc", eh).Tokenize()
	require.NoError(t, err)
	program, err := parser.NewParser(lexer.NewTokenScanner(tokens), eh).Parse()
	require.NoError(t, err)

	info, err := NewSemanticAnalyzer(eh, program).Analyze()
	return program, info, eh, err
}

func messages(eh compiler_errors.ErrorHandler, severity compiler_errors.Severity) []string {
	out := make([]string, 0)
	for _, diag := range eh.Diagnostics() {
		if diag.GetSeverity() == severity {
			out = append(out, diag.GetMessage())
		}
	}
	return out
}

func requireErrors(t *testing.T, src string, expected ...string) {
	t.Helper()
	_, _, eh, err := analyze(t, src)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Equal(t, expected, messages(eh, compiler_errors.Error))
}

func TestAnalyzeValidProgram(t *testing.T) {
	program, info, eh, err := analyze(t, `
import "std/io";

struct Point { x: Int, y: Int }
struct Line { from: Point, to: Point, tags: List<Str> }

const ORIGIN_X: Int = 0;
var count: Int = 0;

fn dist(a: Point, b: Point = Point { x: ORIGIN_X, y: 0 }) -> Int {
	let dx: Int = a.x - b.x;
	return dx * dx;
}

fn main() {
	var p: Point = Point { y: 2, x: 1 };
	p.x = dist(p);
	count = count + 1;
	let names: List<Str> = ["a", "b"];
	for n in names {
		print(n + "!");
	}
	try {
		let q: Int = 10 / p.x;
	} catch (DivisionByZero) {
		print("div");
	} catch (Exception) {}
}
`)
	require.NoError(t, err)
	assert.Zero(t, eh.ErrorCount())

	require.Len(t, info.Structs, 2)
	assert.Equal(t, "Point", info.Structs[0].Name)
	line := info.StructByName["Line"]
	assert.Equal(t, []string{"from", "to", "tags"}, line.FieldNames())

	dist := info.FuncByName["dist"]
	assert.Equal(t, 1, dist.RequiredParams())
	assert.True(t, dist.Return.SameAs(types.Int))
	assert.True(t, info.HasMain())
	assert.True(t, info.UsesTry)

	require.Len(t, info.Globals, 2)
	assert.True(t, info.Globals[0].Const)
	assert.True(t, info.Globals[1].Mutable)

	main := program.Items[5].(*ast.FuncDeclStmt)
	assign := main.Body.Stmts[2].(*ast.AssignStmt)
	target := assign.Target.(*ast.IdentExpr)
	assert.Same(t, info.GlobalByName["count"], info.GlobalRefs[target])

	decl := main.Body.Stmts[0].(*ast.VarDeclStmt)
	assert.Equal(t, "Point", info.TypeOf(decl.Value).String())
}

func TestAnalyzeForwardReferences(t *testing.T) {
	_, _, eh, err := analyze(t, `
fn main() { let o: Outer = Outer { inner: Inner { v: helper() } }; }
struct Outer { inner: Inner }
struct Inner { v: Int }
fn helper() -> Int { return 1; }
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeTypeMismatches(t *testing.T) {
	requireErrors(t, `let x: Int = "hi";`, "type mismatch: expected Int, found Str")
	requireErrors(t, `let xs: List<Int> = [1, "a"];`, "type mismatch: expected Int, found Str")
	requireErrors(t, `let xs: List<Int> = [1.5];`, "type mismatch: expected List<Int>, found List<Float>")
	requireErrors(t, `fn f() -> Int { return "s"; }`, "type mismatch: expected Int, found Str")
	requireErrors(t, `fn f() { if 1 { } }`, "type mismatch: expected Bool, found Int")
}

func TestAnalyzeEmptyListFitsAnyListType(t *testing.T) {
	_, _, eh, err := analyze(t, `
let a: List<Int> = [];
let b: List<List<Str>> = [[], ["x"]];
fn f(xs: List<Float> = []) {}
fn main() { f([]); }
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeUndefinedNames(t *testing.T) {
	requireErrors(t, `fn main() { print(y); }`, "undefined name 'y'")
	requireErrors(t, `fn main() { nope(); }`, "undefined name 'nope'")
	requireErrors(t, `fn main() { let x: Int = main; }`, "function 'main' cannot be used as a value")
	requireErrors(t, `fn main() { let x: Int = 1; x(); }`, "'x' is not a function")
	requireErrors(t, `let p: Ghost = Ghost {};`, "unknown type 'Ghost'", "unknown struct 'Ghost'")
}

func TestAnalyzeScopes(t *testing.T) {
	requireErrors(t, `fn main() { if true { let a: Int = 1; } print(a); }`, "undefined name 'a'")
	requireErrors(t, `fn main() { let a: Int = 1; let a: Int = 2; }`, "'a' is already declared in this scope")
	requireErrors(t, `fn f(a: Int) { let a: Int = 2; }`, "'a' is already declared in this scope")

	_, _, eh, err := analyze(t, `fn main() { let a: Int = 1; if true { let a: Str = "s"; } }`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeAssignments(t *testing.T) {
	requireErrors(t, `fn main() { let x: Int = 1; x = 2; }`, "cannot assign to immutable binding 'x'")
	requireErrors(t, `let g: Int = 1; fn main() { g = 2; }`, "cannot assign to immutable binding 'g'")
	requireErrors(t, `fn f(a: Int) { a = 2; }`, "cannot assign to immutable binding 'a'")
	requireErrors(t, `fn main() { for i in [1] { i = 2; } }`, "cannot assign to immutable binding 'i'")
	requireErrors(t, `
struct P { x: Int }
fn main() { let p: P = P { x: 1 }; p.x = 2; }
`, "cannot assign to immutable binding 'p'")
	requireErrors(t, `fn main() { var x: Int = 1; x = "s"; }`, "type mismatch: expected Int, found Str")

	_, _, eh, err := analyze(t, `
struct P { x: Int }
var g: P = P { x: 0 };
fn main() { var p: P = P { x: 1 }; p.x = 2; g.x = p.x; }
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeCalls(t *testing.T) {
	const fns = "fn f(a: Int, b: Int = 2) -> Int { return a + b; }\n"

	requireErrors(t, fns+`fn main() { f(1, 2, 3); }`, "too many arguments to 'f': expected at most 2, found 3")
	requireErrors(t, fns+`fn main() { f(); }`, "missing argument for parameter 'a' of 'f'")
	requireErrors(t, fns+`fn main() { f("x"); }`, "type mismatch: expected Int, found Str")
	requireErrors(t, `fn main() { print(1); }`, "type mismatch: expected Str, found Int")

	_, _, eh, err := analyze(t, fns+`fn main() { let x: Int = f(1) + f(1, 5); }`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeParamDefaults(t *testing.T) {
	requireErrors(t, `var v: Int = 1; fn f(a: Int = v) {}`, "default value of parameter 'a' must be a constant expression")
	requireErrors(t, `fn g() -> Int { return 1; } fn f(a: Int = g()) {}`, "default value of parameter 'a' must be a constant expression")
	requireErrors(t, `fn f(a: Int = "s") {}`, "type mismatch: expected Int, found Str")
	requireErrors(t, `fn f(a: Int = 1, b: Int) {}`, "parameter 'b' without a default follows a parameter with a default")
	requireErrors(t, `fn f(a: Int, a: Int) {}`, "duplicate parameter 'a' in function 'f'")
}

func TestAnalyzeStructInitializers(t *testing.T) {
	const decl = "struct P { x: Int, y: Int }\n"

	requireErrors(t, decl+`let p: P = P { x: 1 };`, "struct 'P' initializer is missing field 'y'")
	requireErrors(t, decl+`let p: P = P { x: 1, y: 2, z: 3, a: 4 };`,
		"struct 'P' has no field 'z'",
		"struct 'P' has no field 'a'",
	)
	requireErrors(t, decl+`let p: P = P { x: 1, y: "2" };`, "type mismatch: expected Int, found Str")
	requireErrors(t, decl+`fn main() { let p: P = P { x: 1, y: 2 }; print(p.z); }`, "struct 'P' has no field 'z'")
	requireErrors(t, `fn main() { let x: Int = 1; print(x.y); }`, "cannot access field 'y' on value of type Int")
}

func TestAnalyzeStructInitializerDiagnosticsAreDeterministic(t *testing.T) {
	src := "struct P { a: Int, b: Int, c: Int }\nlet p: P = P { e: 1, d: 2, f: 3 };"

	_, _, first, _ := analyze(t, src)
	expected := messages(first, compiler_errors.Error)
	for i := 0; i < 20; i++ {
		_, _, eh, _ := analyze(t, src)
		require.Equal(t, expected, messages(eh, compiler_errors.Error))
	}
	assert.Equal(t, []string{
		"struct 'P' initializer is missing field 'a'",
		"struct 'P' initializer is missing field 'b'",
		"struct 'P' initializer is missing field 'c'",
		"struct 'P' has no field 'e'",
		"struct 'P' has no field 'd'",
		"struct 'P' has no field 'f'",
	}, expected)
}

func TestAnalyzeStructCycles(t *testing.T) {
	requireErrors(t, "struct A { b: B }\nstruct B { a: A }", "struct 'A' recursively contains itself: A -> B -> A")
	requireErrors(t, "struct Node { next: Node }", "struct 'Node' recursively contains itself: Node -> Node")

	_, _, eh, err := analyze(t, "struct Tree { children: List<Tree> }")
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeForLoops(t *testing.T) {
	requireErrors(t, `fn main() { for x in 5 { } }`, "for loop expects List<T>, found Int")
	requireErrors(t, `fn main() { for x in [] { } }`, "cannot infer element type of empty list")
	requireErrors(t, `fn main() { for x in [1, 2] { let s: Str = x; } }`, "type mismatch: expected Str, found Int")
}

func TestAnalyzeEmptyListWithoutContext(t *testing.T) {
	requireErrors(t, `fn main() { let b: Bool = [] == []; }`, "cannot infer element type of empty list")
	requireErrors(t, `fn main() { let b: Bool = [[]] != [[], []]; }`, "cannot infer element type of empty list")
	requireErrors(t, `fn main() { []; }`, "cannot infer element type of empty list")
	requireErrors(t, `fn main() { [[]]; }`, "cannot infer element type of empty list")
	requireErrors(t, `fn main() { for x in [[]] { } }`, "cannot infer element type of empty list")

	_, info, eh, err := analyze(t, `
fn main() {
	let xs: List<Int> = [1];
	let a: Bool = xs == [];
	let b: Bool = [] != xs;
	let c: Bool = [[]] == [[1]];
	[1];
}
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
	assert.NotNil(t, info)
}

func TestAnalyzeTryCatch(t *testing.T) {
	requireErrors(t, `fn main() { try {} catch (Foo) {} }`, "unknown exception type 'Foo'")
	requireErrors(t, `fn main() { try {} catch (Overflow) {} catch (Overflow) {} }`,
		"duplicate catch clause for 'Overflow'")

	_, _, eh, err := analyze(t, `
struct Oops { code: Int }
fn main() { try {} catch (IndexOutOfBounds) {} catch (Int) {} catch (Oops) {} catch (Exception) {} }
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeReturns(t *testing.T) {
	requireErrors(t, `fn f() -> Int { }`, "function 'f' must return a value of type Int on every path")
	requireErrors(t, `fn f(b: Bool) -> Int { if b { return 1; } }`,
		"function 'f' must return a value of type Int on every path")
	requireErrors(t, `fn f() -> Int { return; }`, "function 'f' must return a value of type Int")
	requireErrors(t, `fn f() { return 1; }`, "function 'f' returns Void and cannot return a value")

	_, _, eh, err := analyze(t, `
fn f(b: Bool) -> Int { if b { return 1; } else { return 2; } }
fn g() -> Int { try { return 1; } catch (Exception) { return 2; } }
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeUnreachableCodeIsAWarning(t *testing.T) {
	_, _, eh, err := analyze(t, `fn f() -> Int { return 1; print("a"); print("b"); }`)
	require.NoError(t, err)

	assert.Equal(t, 1, eh.WarningCount())
	assert.Equal(t, []string{"unreachable code"}, messages(eh, compiler_errors.Warning))
}

func TestAnalyzeOperators(t *testing.T) {
	requireErrors(t, `let x: Int = 1 + 1.5;`, "invalid operands for '+': Int and Float")
	requireErrors(t, `let x: Bool = true < false;`, "invalid operands for '<': Bool and Bool")
	requireErrors(t, `let x: Bool = 1 && true;`, "invalid operands for '&&': Int and Bool")
	requireErrors(t, `let x: Bool = -true;`, "invalid operand for '-': Bool")
	requireErrors(t, `let x: Int = !1;`, "invalid operand for '!': Int")

	_, _, eh, err := analyze(t, `
let s: Str = "a" + "b";
let f: Float = 1.5 * -2.0 % 3.0;
let c: Bool = "a" < "b" && [1] == [] || !(1 != 2);
`)
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())
}

func TestAnalyzeItemNames(t *testing.T) {
	requireErrors(t, "fn a() {}\nstruct a { }", "'a' is already declared")
	requireErrors(t, "fn print(s: Str) {}", "'print' is a builtin and cannot be redeclared")
	requireErrors(t, "struct P { x: Int, x: Str }", "duplicate field 'x' in struct 'P'")
	requireErrors(t, "let v: Void = 1;", "Void is only allowed as a return type")
	requireErrors(t, "fn f(xs: List<Void>) {}", "Void is only allowed as a return type")
}

func TestAnalyzeDuplicateImportIsAWarning(t *testing.T) {
	_, _, eh, err := analyze(t, "import \"a\";\nimport \"a\";")
	require.NoError(t, err)
	assert.Equal(t, []string{"duplicate import 'a'"}, messages(eh, compiler_errors.Warning))
}

func TestAnalyzeGlobalsMustBeDeclaredBeforeUse(t *testing.T) {
	requireErrors(t, "let a: Int = b;\nlet b: Int = 1;", "undefined name 'b'")
}

func TestAnalyzeReportsEveryError(t *testing.T) {
	requireErrors(t, `
fn main() {
	let a: Int = "x";
	print(missing);
	let b: Bool = 1;
}
`,
		"type mismatch: expected Int, found Str",
		"undefined name 'missing'",
		"type mismatch: expected Bool, found Int",
	)
}

func TestAnalyzeRecordsContextualTypeOfEmptyLists(t *testing.T) {
	program, info, _, err := analyze(t, `
let a: List<List<Int>> = [[], [1]];
let b: Bool = [] == ["x"];
`)
	require.NoError(t, err)

	outer := program.Items[0].(*ast.VarDeclStmt).Value.(*ast.ListExpr)
	assert.Equal(t, "List<List<Int>>", info.TypeOf(outer).String())
	assert.Equal(t, "List<Int>", info.TypeOf(outer.Elems[0]).String())

	cmp := program.Items[1].(*ast.VarDeclStmt).Value.(*ast.BinaryExpr)
	assert.Equal(t, "List<Str>", info.TypeOf(cmp.Left).String())
}
