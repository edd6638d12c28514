package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/olekukonko/tablewriter"
	"github.com/sanity-io/litter"
	"gopkg.in/urfave/cli.v1"

	"github.com/kendroooo/rustic/internal/compiler"
	"github.com/kendroooo/rustic/internal/compiler_errors"
)

const version = "0.1.0"

var (
	app = cli.NewApp()

	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Directory for generated Rust files",
		Value: compiler.DefaultConfig.Compiler.OutputDir,
	}
	compileFlag = cli.BoolFlag{
		Name:  "compile, c",
		Usage: "Build a native binary with cargo after generating Rust code",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "Print progress and a summary of generated files",
	}
	keepGoingFlag = cli.BoolFlag{
		Name:  "keep-going",
		Usage: "Compile every module of a directory even after a failure",
	}
	emitFlag = cli.StringFlag{
		Name:  "emit",
		Usage: "What to produce: tokens, ast or rust (tokens and ast print a single file to stdout)",
		Value: "rust",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored diagnostics",
	}
)

func init() {
	// -v belongs to --verbose.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	app.Name = "rustic"
	app.Usage = "compile Rustic sources to Rust"
	app.ArgsUsage = "<file.rsc | directory>"
	app.Version = version
	app.Action = rustic
	app.Commands = []cli.Command{
		dumpConfigCommand,
	}
	app.Flags = []cli.Flag{
		outputFlag,
		compileFlag,
		verboseFlag,
		keepGoingFlag,
		emitFlag,
		configFileFlag,
		noColorFlag,
	}

	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx.GlobalBool(flagName(verboseFlag)))
		if ctx.GlobalBool(flagName(noColorFlag)) {
			color.NoColor = true
		}
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// rustic is the main entry point into the system if no special subcommand is ran.
func rustic(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		cli.ShowAppHelp(ctx)
		return errors.New("expected exactly one input path")
	}
	input := ctx.Args().First()

	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	opts := make([]compiler_errors.Option, 0)
	if ctx.GlobalBool(flagName(noColorFlag)) {
		opts = append(opts, compiler_errors.WithColor(false))
	}
	eh := compiler_errors.NewErrorHandler(os.Stderr, opts...)
	defer eh.EmitAll()

	c := compiler.New(eh, cfg, log15.Root())
	verbose := ctx.GlobalBool(flagName(verboseFlag))

	switch mode := ctx.GlobalString(flagName(emitFlag)); mode {
	case "tokens":
		return dumpTokens(c, input)
	case "ast":
		return dumpAST(c, input)
	case "rust":
	default:
		return fmt.Errorf("unknown --emit mode '%s', expected tokens, ast or rust", mode)
	}

	if verbose {
		printBanner(input, cfg.Compiler.OutputDir)
	}

	outputs, err := compile(c, input, cfg.Compiler.OutputDir)
	if verbose {
		printSummary(c)
	}
	if err != nil {
		return err
	}

	if ctx.GlobalBool(flagName(compileFlag)) {
		binary, err := c.CompileToNative(context.Background(), outputs, cfg.Compiler.OutputDir)
		if err != nil {
			return err
		}
		fmt.Println(binary)
	}
	return nil
}

func compile(c *compiler.Compiler, input, outputDir string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, &compiler.IOError{Op: "stat", Path: input, Err: err}
	}
	if info.IsDir() {
		return c.CompileDirectory(input, outputDir)
	}
	return c.CompileFile(input, outputDir)
}

func dumpTokens(c *compiler.Compiler, input string) error {
	tokens, err := c.Tokenize(input)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		fmt.Println(token.String())
	}
	return nil
}

func dumpAST(c *compiler.Compiler, input string) error {
	program, err := c.Parse(input)
	if err != nil {
		return err
	}
	litter.Dump(program)
	return nil
}

func printBanner(input, outputDir string) {
	bold := color.New(color.Bold)
	bold.Printf("rustic %s\n", version)
	fmt.Printf("  input:  %s\n", input)
	fmt.Printf("  output: %s\n", outputDir)
}

func printSummary(c *compiler.Compiler) {
	modules := c.Modules()
	if len(modules) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Module", "Source", "Output", "Bytes"})
	for _, m := range modules {
		if m.Output == "" {
			continue
		}
		size := "-"
		if stat, err := os.Stat(m.Output); err == nil {
			size = strconv.FormatInt(stat.Size(), 10)
		}
		table.Append([]string{m.Name, m.Path, filepath.ToSlash(m.Output), size})
	}
	table.Render()
}
