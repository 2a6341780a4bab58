package util

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadYAML parses a YAML file into a generic value (maps, sequences, scalars).
// An empty file yields nil.
func ReadYAML(path string) (any, error) {
	var v any
	if err := LoadYAML(path, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadYAML loads a YAML file into the provided structure
func LoadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrap("LoadYAML", path, KindIO, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return wrap("LoadYAML", path, KindParse, err)
	}
	return nil
}

// SaveYAML saves a structure to a YAML file, overwriting any existing one
func SaveYAML(path string, v any) error {
	return WriteYAML(path, v, false)
}

// WriteYAML serializes v to path, creating parent directories as needed.
// With replace set, an existing file is removed before the new one is written.
func WriteYAML(path string, v any, replace bool) error {
	data, err := marshalYAML(v)
	if err != nil {
		return wrap("WriteYAML", path, KindSerialize, err)
	}

	if replace {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return wrap("WriteYAML", path, KindIO, err)
		}
	}
	if err := ensureParentDir(path); err != nil {
		return wrap("WriteYAML", path, KindIO, err)
	}
	if err := writeFile(path, data); err != nil {
		return wrap("WriteYAML", path, KindIO, err)
	}
	return nil
}

// marshalYAML converts the panic yaml.v3 raises for unsupported kinds
// (funcs, channels) into an error
func marshalYAML(v any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return yaml.Marshal(v)
}
