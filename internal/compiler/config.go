package compiler

// Config holds everything the facade needs besides the diagnostics handle and logger.
// Field names double as TOML keys.
type Config struct {
	Compiler CompilerConfig
	Build    BuildConfig
}

type CompilerConfig struct {
	OutputDir string
	// KeepGoing compiles every module of a directory even after one fails.
	KeepGoing bool
	Extension string
}

type BuildConfig struct {
	Cargo       string
	PackageName string
	Edition     string
	// ExtraSources are Rust files copied next to the generated modules and
	// declared in the crate root.
	ExtraSources []string `toml:",omitempty"`
}

var DefaultConfig = Config{
	Compiler: CompilerConfig{
		OutputDir: "target/generated",
		KeepGoing: false,
		Extension: ".rsc",
	},
	Build: BuildConfig{
		Cargo:        "cargo",
		PackageName:  "rustic-generated",
		Edition:      "2021",
		ExtraSources: []string{},
	},
}
