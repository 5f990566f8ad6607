package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format names a definition encoding.
type Format string

// Supported definition formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported definition file extension: %s", ext)
	}
}

// LoadDefinition reads and validates a definition file, auto-detecting
// the format by extension.
func LoadDefinition(path string) (Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition file: %w", err)
	}
	return ParseDefinition(data, format, path)
}

// ParseDefinition decodes and validates a definition. filename is only
// used in HCL diagnostics.
func ParseDefinition(data []byte, format Format, filename string) (Definition, error) {
	var (
		def Definition
		err error
	)
	switch format {
	case FormatYAML:
		if err = yaml.Unmarshal(data, &def); err != nil {
			err = fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err = json.Unmarshal(data, &def); err != nil {
			err = fmt.Errorf("parse json: %w", err)
		}
	case FormatHCL:
		def, err = parseHCL(data, filename)
	default:
		err = fmt.Errorf("unsupported definition format: %q", format)
	}
	if err != nil {
		return Definition{}, err
	}

	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid definition: %w", err)
	}
	return def, nil
}

// hclFile is the top-level structure of an HCL definition.
type hclFile struct {
	Name       string     `hcl:"name"`
	Start      string     `hcl:"start,optional"`
	Parameters *hclValues `hcl:"parameters,block"`
	Nodes      []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	ID       string     `hcl:"id,label"`
	Kind     string     `hcl:"kind"`
	Name     string     `hcl:"name,optional"`
	Delay    string     `hcl:"delay,optional"`
	Wait     *bool      `hcl:"wait,optional"`
	Unscaled bool       `hcl:"unscaled,optional"`
	Policy   string     `hcl:"policy,optional"`
	Next     []string   `hcl:"next,optional"`
	Params   *hclValues `hcl:"params,block"`
}

// hclValues is a block of free-form attributes.
type hclValues struct {
	Body hcl.Body `hcl:",remain"`
}

func parseHCL(data []byte, filename string) (Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Definition{}, fmt.Errorf("parse hcl %s: %w", filename, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return Definition{}, fmt.Errorf("decode hcl %s: %w", filename, diags)
	}

	def := Definition{
		Name:  raw.Name,
		Start: raw.Start,
		Nodes: make([]NodeDef, 0, len(raw.Nodes)),
	}

	var err error
	if def.Parameters, err = raw.Parameters.values(); err != nil {
		return Definition{}, fmt.Errorf("parameters: %w", err)
	}

	for _, n := range raw.Nodes {
		params, err := n.Params.values()
		if err != nil {
			return Definition{}, fmt.Errorf("node %s params: %w", n.ID, err)
		}
		def.Nodes = append(def.Nodes, NodeDef{
			ID:       n.ID,
			Kind:     n.Kind,
			Name:     n.Name,
			Delay:    n.Delay,
			Wait:     n.Wait,
			Unscaled: n.Unscaled,
			Policy:   n.Policy,
			Next:     n.Next,
			Params:   params,
		})
	}
	return def, nil
}

// values evaluates the attributes of the block into plain Go values
// (string, float64, bool, []any, map[string]any), the same shapes the
// YAML and JSON decoders produce.
func (v *hclValues) values() (map[string]any, error) {
	if v == nil || v.Body == nil {
		return nil, nil
	}
	attrs, diags := v.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		encoded, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		var decoded any
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = decoded
	}
	return out, nil
}
