// Command gentable reads a declarative TOML table schema and emits the Go
// source implementing it (row struct, builder constructor, append function),
// the same shape a call to package tablegen's TableBuilder API produces by
// hand. It exists for callers who would rather keep a table's column list
// out of source and regenerate it on change.
package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/dolthub/tracecolumn/tablegen"
)

var cli struct {
	Schema string `arg:"" help:"Path to the TOML table schema." type:"existingfile"`
	Out    string `short:"o" help:"Output Go source path. Defaults to stdout." type:"path"`
}

func main() {
	kong.Parse(&cli, kong.Description("Generate a tablegen-based table implementation from a TOML schema."))
	if err := run(); err != nil {
		kong.FatalIfErrorf(err)
	}
}

func run() error {
	var spec tablegen.Spec
	if _, err := toml.DecodeFile(cli.Schema, &spec); err != nil {
		return errors.Wrapf(err, "gentable: decoding schema %q", cli.Schema)
	}

	src, err := tablegen.Generate(spec)
	if err != nil {
		return errors.Wrapf(err, "gentable: generating %q", spec.Name)
	}

	if cli.Out == "" {
		_, err := os.Stdout.WriteString(src)
		return errors.Wrap(err, "gentable: writing to stdout")
	}
	if err := os.WriteFile(cli.Out, []byte(src), 0o644); err != nil {
		return errors.Wrapf(err, "gentable: writing %q", cli.Out)
	}
	return nil
}
