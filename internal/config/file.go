package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// File is a launch profile file. Every field is optional; anything left
// out keeps its default.
type File struct {
	Executable string                 `yaml:"executable" json:"executable"`
	Roles      map[string]FileProfile `yaml:"roles" json:"roles"`
}

// FileProfile overrides parts of a role's profile.
type FileProfile struct {
	Port     *int    `yaml:"port" json:"port"`
	Connect  *string `yaml:"connect" json:"connect"`
	Nickname *string `yaml:"nickname" json:"nickname"`
}

// hclFile mirrors File for HCL, where roles are labelled blocks:
//
//	role "listener" {
//	  port = 9000
//	}
type hclFile struct {
	Executable *string    `hcl:"executable,optional"`
	Roles      []*hclRole `hcl:"role,block"`
}

type hclRole struct {
	Name     string  `hcl:"name,label"`
	Port     *int    `hcl:"port,optional"`
	Connect  *string `hcl:"connect,optional"`
	Nickname *string `hcl:"nickname,optional"`
}

// LoadFile reads a profile file. The format follows the extension:
// .yaml/.yml, .json/.jsonc or .hcl.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return parseYAML(data, path)
	case ".json", ".jsonc":
		return parseJSONC(data, path)
	case ".hcl":
		return parseHCL(data, path)
	default:
		return nil, fmt.Errorf("%w: unsupported profile file extension %q", ErrInvalidConfig, ext)
	}
}

func parseYAML(data []byte, path string) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		// An empty document is a valid "no overrides" file.
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

func parseJSONC(data []byte, path string) (*File, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

func parseHCL(data []byte, path string) (*File, error) {
	parser := hclparse.NewParser()
	hf, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var decoded hclFile
	if diags := gohcl.DecodeBody(hf.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	f := &File{Roles: make(map[string]FileProfile, len(decoded.Roles))}
	if decoded.Executable != nil {
		f.Executable = *decoded.Executable
	}
	for _, r := range decoded.Roles {
		if _, dup := f.Roles[r.Name]; dup {
			return nil, fmt.Errorf("%w: role %q declared twice in %s", ErrInvalidConfig, r.Name, path)
		}
		f.Roles[r.Name] = FileProfile{Port: r.Port, Connect: r.Connect, Nickname: r.Nickname}
	}
	return f, nil
}

// Apply returns a copy of t with the file's role overrides merged in.
// Role names go through ParseRole, so "alice" and "Listener" both work.
func (f *File) Apply(t Table) (Table, error) {
	out := t.Clone()
	if f == nil {
		return out, nil
	}
	for name, fp := range f.Roles {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		p := out[r]
		if fp.Port != nil {
			p.Port = *fp.Port
		}
		if fp.Connect != nil {
			p.Connect = *fp.Connect
		}
		if fp.Nickname != nil {
			p.Nickname = *fp.Nickname
		}
		out[r] = p
	}
	return out, nil
}
