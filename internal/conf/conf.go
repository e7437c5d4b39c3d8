// Package conf contains the configuration of a sorting run.
package conf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// Decimal places | Decimal degrees | Comment
// 0              | 1.0             | country or large region
// 1              | .1              | large city or district
// 2              | .01             | town or village
// 3              | .001            | neighborhood, street
// 4              | .0001           | individual street, land parcel
// 5              | .00001          | individual trees, door entrance
// 6              | .000001         | individual humans
// 7              | .0000001        | practical limit of commercial surveying
// 8              | .00000001       | specialized surveying
const (
	DefaultPrecision = 5
	MaxPrecision     = 10
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Conf is the configuration of a sorting run.
type Conf struct {
	Root      string
	Output    string
	Precision int
	Recursive bool
	DryRun    bool
	Debug     bool
	LogFormat string
	Report    string
}

// Default returns the default configuration rooted at root.
func Default(root string) Conf {
	return Conf{
		Root:      root,
		Precision: DefaultPrecision,
		LogFormat: LogFormatConsole,
	}
}

// OutputDir returns the directory that receives the location folders.
func (c Conf) OutputDir() string {
	if c.Output != "" {
		return c.Output
	}
	return c.Root
}

// Validate checks the configuration.
func (c Conf) Validate() error {
	if c.Root == "" {
		return errors.New("root directory is empty")
	}
	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, c.Precision)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format '%s'", c.LogFormat)
	}
	return nil
}

// YAML is a kong configuration loader reading a flat YAML document.
// Keys match flag names; underscores may replace dashes.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML configuration: %w", err)
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (interface{}, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := values[key]; ok && v != nil {
				return fmt.Sprint(v), nil
			}
		}
		return nil, nil
	}), nil
}
