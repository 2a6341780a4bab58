package util

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// objectMagic prefixes every serialized object file, followed by the Go type
// name of the stored value and a newline.
const objectMagic = "GOBOBJ/1"

// RegisterType adds the concrete type of v to the set of types that can be
// stored behind interface-typed fields (e.g. inside map[string]any).
func RegisterType(v any) {
	gob.Register(v)
}

// SaveObject serializes obj to path, creating parent directories as needed
func SaveObject(path string, obj any) error {
	log := getLogger()
	log.Info().Str("path", path).Msg("Entered the SaveObject method of util")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %T\n", objectMagic, obj)
	if err := gob.NewEncoder(&buf).Encode(obj); err != nil {
		return wrap("SaveObject", path, KindSerialize, err)
	}

	if err := ensureParentDir(path); err != nil {
		return wrap("SaveObject", path, KindIO, err)
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return wrap("SaveObject", path, KindIO, err)
	}

	log.Info().Str("path", path).Msg("Exited the SaveObject method of util")
	return nil
}

// LoadObject decodes the object stored at path into obj, which must be a
// pointer to a type compatible with the stored one.
func LoadObject(path string, obj any) error {
	log := getLogger()
	log.Info().Str("path", path).Msg("Entered the LoadObject method of util")

	f, err := os.Open(path)
	if err != nil {
		return wrap("LoadObject", path, KindIO, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if _, err := readObjectHeader(r); err != nil {
		if isReadError(err) {
			return wrap("LoadObject", path, KindIO, err)
		}
		return wrap("LoadObject", path, KindDeserialize, err)
	}
	if err := gob.NewDecoder(r).Decode(obj); err != nil {
		return wrap("LoadObject", path, KindDeserialize, err)
	}

	log.Info().Str("path", path).Msg("Exited the LoadObject method of util")
	return nil
}

// ObjectType returns the Go type name recorded when the object at path was saved
func ObjectType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", wrap("ObjectType", path, KindIO, err)
	}
	defer f.Close()

	typeName, err := readObjectHeader(bufio.NewReader(f))
	if err != nil {
		if isReadError(err) {
			return "", wrap("ObjectType", path, KindIO, err)
		}
		return "", wrap("ObjectType", path, KindDeserialize, err)
	}
	return typeName, nil
}

var errBadObjectHeader = errors.New("not a serialized object file")

func readObjectHeader(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", errBadObjectHeader
		}
		return "", err
	}
	magic, typeName, ok := strings.Cut(strings.TrimSuffix(line, "\n"), " ")
	if !ok || magic != objectMagic || typeName == "" {
		return "", errBadObjectHeader
	}
	return typeName, nil
}

// isReadError separates filesystem failures from payload problems
func isReadError(err error) bool {
	return err != errBadObjectHeader
}
