package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PropConfigFile names a YAML file of further properties.
const PropConfigFile = "config_file"

// Load parses name=value arguments and any config files they reference.
// Values given on the command line take precedence over file values, and a
// file takes precedence over the files it chains to.
func Load(args []string) (Properties, error) {
	props := Properties{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: command line arguments must be 'name=value', got %q", ErrMalformed, arg)
		}
		props[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	seen := map[string]bool{}
	for props.Has(PropConfigFile) {
		path := props[PropConfigFile]
		delete(props, PropConfigFile)
		if seen[path] {
			return nil, fmt.Errorf("%w: config file %q is loaded twice", ErrMalformed, path)
		}
		seen[path] = true

		slog.Debug("loading properties", "path", path)
		fileProps, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		// A chained config_file is picked up here since ours was removed.
		for k, v := range fileProps {
			if _, exists := props[k]; !exists {
				props[k] = v
			}
		}
	}
	return props, nil
}

// LoadFile reads a YAML document of properties. Nested mappings are
// flattened with dots, so
//
//	survivalprob:
//	  model: sigmoid
//
// yields survivalprob.model=sigmoid.
func LoadFile(path string) (Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into properties.
func Parse(data []byte) (Properties, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrMalformed, err)
	}
	props := Properties{}
	if err := flatten("", raw, props); err != nil {
		return nil, err
	}
	return props, nil
}

func flatten(prefix string, m map[string]any, out Properties) error {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(name, val, out); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("%w: '%s' must be a scalar, not a list", ErrMalformed, name)
		case nil:
			out[name] = ""
		default:
			out[name] = fmt.Sprint(val)
		}
	}
	return nil
}
