package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// Format is the encoding of a configuration file.
type Format int

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// Names are the file names searched for in each configuration directory, in
// order of preference.
var Names = []string{"rjsonc.toml", "rjsonc.yaml", "rjsonc.yml"}

// Config holds the settings shared by every command. Command line flags
// override values loaded from a file.
type Config struct {
	Roots          []string `toml:"roots" yaml:"roots"`
	MaxConcurrency int      `toml:"max_concurrency" yaml:"max_concurrency"`
	Document       bool     `toml:"document" yaml:"document"`
	CheckLists     bool     `toml:"check_lists" yaml:"check_lists"`
	TokenFormat    string   `toml:"token_format" yaml:"token_format"`
	WriteTree      bool     `toml:"write_tree" yaml:"write_tree"`
	Verbose        bool     `toml:"verbose" yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Roots:       []string{"."},
		TokenFormat: "text",
		WriteTree:   true,
	}
}

// Tokens resolves the configured token format.
func (c *Config) Tokens() (lang.TokenFormat, error) {
	switch strings.ToLower(c.TokenFormat) {
	case "", "text":
		return lang.TokenFormatText, nil
	case "binary":
		return lang.TokenFormatBinary, nil
	case "none":
		return lang.TokenFormatNone, nil
	default:
		return lang.TokenFormatNone, fmt.Errorf("unknown token format %q", c.TokenFormat)
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode overlays the content onto Default. Unknown keys are rejected.
func Decode(content []byte, format Format) (*Config, error) {
	c := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		md, err := toml.Decode(string(content), c)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown configuration key %q", undecoded[0].String())
		}
	}
	if c.MaxConcurrency < 0 {
		return nil, errors.New("max_concurrency must not be negative")
	}
	if _, err := c.Tokens(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and decodes the file at path.
func Load(path string, format Format) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
		}
		return nil, exc.WrapUnknown(exc.Location{URI: path}, err)
	}
	if format == FormatAuto {
		format = DetectFormat(path)
	}
	c, err := Decode(content, format)
	if err != nil {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeUnsupportedFileFormat, err.Error())
	}
	return c, nil
}

// Discover returns the first configuration file found in dirs.
func Discover(dirs []string) (string, bool) {
	for _, dir := range dirs {
		for _, name := range Names {
			p := filepath.Join(dir, name)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// Resolve loads the explicit path when one is given. Otherwise it searches
// the working directory and then the platform configuration directories, and
// falls back to Default when nothing is found.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, string, error) {
	if path != "" {
		c, err := Load(path, FormatAuto)
		return c, path, err
	}
	dirs := append([]string{"."}, DefaultDirs(lookup)...)
	if found, ok := Discover(dirs); ok {
		c, err := Load(found, FormatAuto)
		return c, found, err
	}
	return Default(), "", nil
}
