package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/kendroooo/rustic/internal/compiler"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Description: `The dumpconfig command shows the effective configuration after the config file and flags are applied.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// flagName returns the long name of a flag declared as "long, short".
// The parsed flag set only knows the individual names.
func flagName(f cli.Flag) string {
	name, _, _ := strings.Cut(f.GetName(), ",")
	return strings.TrimSpace(name)
}

func loadConfig(file string, cfg *compiler.Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the defaults, then the config file, then the flags.
func makeConfig(ctx *cli.Context) (compiler.Config, error) {
	cfg := compiler.DefaultConfig
	cfg.Build.ExtraSources = append([]string{}, cfg.Build.ExtraSources...)

	if file := ctx.GlobalString(flagName(configFileFlag)); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
		log15.Debug("Loaded config file", "path", file)
	}

	if ctx.GlobalIsSet(flagName(outputFlag)) {
		cfg.Compiler.OutputDir = ctx.GlobalString(flagName(outputFlag))
	}
	if ctx.GlobalIsSet(flagName(keepGoingFlag)) {
		cfg.Compiler.KeepGoing = ctx.GlobalBool(flagName(keepGoingFlag))
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
