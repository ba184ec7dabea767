// Package config loads and validates simulation properties.
// Properties are flat name=value pairs; they come from the command line and
// from YAML files named by the config_file property.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrMissing    = errors.New("required property not specified")
	ErrMalformed  = errors.New("malformed property value")
	ErrOutOfRange = errors.New("property value out of range")
)

// Properties is a flat set of named string values.
type Properties map[string]string

// Has reports whether a non-blank value is present.
func (p Properties) Has(name string) bool {
	v, ok := p[name]
	return ok && strings.TrimSpace(v) != ""
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a required string property.
func (p Properties) String(name string) (string, error) {
	if !p.Has(name) {
		return "", fmt.Errorf("%w: '%s'", ErrMissing, name)
	}
	return strings.TrimSpace(p[name]), nil
}

// StringDefault returns a string property or def when absent.
func (p Properties) StringDefault(name, def string) string {
	if !p.Has(name) {
		return def
	}
	return strings.TrimSpace(p[name])
}

// Int returns a required integer property.
func (p Properties) Int(name string) (int, error) {
	s, err := p.String(name)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not an integer: %q", ErrMalformed, name, s)
	}
	return i, nil
}

// IntDefault returns an integer property or def when absent.
func (p Properties) IntDefault(name string, def int) (int, error) {
	if !p.Has(name) {
		return def, nil
	}
	return p.Int(name)
}

// Float returns a required number property.
func (p Properties) Float(name string) (float64, error) {
	s, err := p.String(name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a number: %q", ErrMalformed, name, s)
	}
	return f, nil
}

// FloatDefault returns a number property or def when absent.
func (p Properties) FloatDefault(name string, def float64) (float64, error) {
	if !p.Has(name) {
		return def, nil
	}
	return p.Float(name)
}

// Probability returns a required number in [0, 1].
func (p Properties) Probability(name string) (float64, error) {
	f, err := p.Float(name)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: '%s' is a probability and must be in [0..1], got %v", ErrOutOfRange, name, f)
	}
	return f, nil
}

// BoolDefault returns a boolean property or def when absent.
func (p Properties) BoolDefault(name string, def bool) (bool, error) {
	if !p.Has(name) {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(p[name]))
	if err != nil {
		return false, fmt.Errorf("%w: '%s' is not a boolean: %q", ErrMalformed, name, p[name])
	}
	return b, nil
}

// IntOrAll returns a required integer, or all=true when the value is "all".
func (p Properties) IntOrAll(name string) (n int, all bool, err error) {
	s, err := p.String(name)
	if err != nil {
		return 0, false, err
	}
	if strings.EqualFold(s, "all") {
		return 0, true, nil
	}
	n, err = p.Int(name)
	return n, false, err
}
