// Package format writes command output as json, edn or yaml.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON Format = "json"
	EDN  Format = "edn"
	YAML Format = "yaml"
)

// Parse accepts the --format flag value; empty means json.
func Parse(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", JSON:
		return JSON, nil
	case EDN, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json|edn|yaml)", s)
	}
}

// Write encodes v in format f. Structs go through their json tags for every
// format so field names match across outputs.
func Write(w io.Writer, v any, f Format, pretty bool) error {
	switch f {
	case "", JSON:
		return writeJSON(w, v, pretty)
	case EDN:
		x, err := generic(v)
		if err != nil {
			return err
		}
		var sb strings.Builder
		ednValue(&sb, x, pretty, 0)
		sb.WriteByte('\n')
		_, err = io.WriteString(w, sb.String())
		return err
	case YAML:
		x, err := generic(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(x); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// generic round-trips v through JSON into maps, slices and scalars.
func generic(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}
