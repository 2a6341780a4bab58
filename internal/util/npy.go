package util

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DType is a NumPy type code without the byte-order prefix (e.g. "f8")
type DType string

const (
	Float64 DType = "f8"
	Float32 DType = "f4"
	Int64   DType = "i8"
	Int32   DType = "i4"
	Int16   DType = "i2"
	Int8    DType = "i1"
	Uint64  DType = "u8"
	Uint32  DType = "u4"
	Uint16  DType = "u2"
	Uint8   DType = "u1"
	Bool    DType = "b1"
)

// Element is the set of Go types an Array can hold
type Element interface {
	float64 | float32 | int64 | int32 | int16 | int8 | uint64 | uint32 | uint16 | uint8 | bool
}

// Array is an n-dimensional array stored as a flat slice in row-major
// order (column-major when FortranOrder is set).
type Array struct {
	DType        DType
	Shape        []int
	FortranOrder bool
	Data         any
}

// NewArray builds an Array of the given shape over data. An empty shape
// describes a 0-d array holding exactly one element.
func NewArray[T Element](shape []int, data []T) (*Array, error) {
	dtype, err := dtypeOf(data)
	if err != nil {
		return nil, err
	}
	arr := &Array{
		DType: dtype,
		Shape: append([]int{}, shape...),
		Data:  data,
	}
	if err := arr.Validate(); err != nil {
		return nil, err
	}
	return arr, nil
}

// Values returns the array data as a []T
func Values[T Element](a *Array) ([]T, error) {
	v, ok := a.Data.([]T)
	if !ok {
		return nil, fmt.Errorf("array holds %T, not %T", a.Data, v)
	}
	return v, nil
}

// NDim returns the number of dimensions
func (a *Array) NDim() int {
	return len(a.Shape)
}

// Len returns the number of elements implied by Shape. It fails on a
// negative dimension or when the product does not fit in an int.
func (a *Array) Len() (int, error) {
	return elements(a.Shape)
}

func elements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension in shape %v", shape)
		}
		if d == 0 {
			n = 0
		}
	}
	if n == 0 {
		return 0, nil
	}
	for _, d := range shape {
		if n > math.MaxInt/d {
			return 0, fmt.Errorf("shape %v overflows the element count", shape)
		}
		n *= d
	}
	return n, nil
}

// Validate checks that DType matches Data and that Shape covers it exactly
func (a *Array) Validate() error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	dtype, err := dtypeOf(a.Data)
	if err != nil {
		return err
	}
	if dtype != a.DType {
		return fmt.Errorf("dtype %s does not match data of type %T", a.DType, a.Data)
	}
	if got := sliceLen(a.Data); got != n {
		return fmt.Errorf("shape %v needs %d elements, data has %d", a.Shape, n, got)
	}
	return nil
}

// SaveArray writes arr to path in the .npy format, creating parent
// directories as needed.
func SaveArray(path string, arr *Array) error {
	if arr == nil {
		return wrap("SaveArray", path, KindSerialize, errors.New("nil array"))
	}
	if err := arr.Validate(); err != nil {
		return wrap("SaveArray", path, KindSerialize, err)
	}

	if err := ensureParentDir(path); err != nil {
		return wrap("SaveArray", path, KindIO, err)
	}
	err := writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if _, err := bw.Write(npyPreamble(arr)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, arr.Data); err != nil {
			return err
		}
		return bw.Flush()
	})
	if err != nil {
		return wrap("SaveArray", path, KindIO, err)
	}
	return nil
}

// LoadArray reads a .npy file written by SaveArray or by NumPy
func LoadArray(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrap("LoadArray", path, KindIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, wrap("LoadArray", path, KindIO, err)
	}

	arr, err := readNpy(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, wrap("LoadArray", path, KindIO, err)
	}
	return arr, nil
}

const (
	npyMagic = "\x93NUMPY"
	npyAlign = 64
)

// npyPreamble renders magic, version, header length and the padded header dict
func npyPreamble(arr *Array) []byte {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': %s, }",
		descrOf(arr.DType), pyBool(arr.FortranOrder), pyShape(arr.Shape))

	// version 1.0 stores the header length in 2 bytes, 2.0 in 4
	major, lenSize := byte(1), 2
	if pad(len(npyMagic)+2+lenSize, len(dict)) > 0xffff {
		major, lenSize = 2, 4
	}
	header := pad(len(npyMagic)+2+lenSize, len(dict))

	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.WriteByte(major)
	buf.WriteByte(0)
	if lenSize == 2 {
		binary.Write(&buf, binary.LittleEndian, uint16(header))
	} else {
		binary.Write(&buf, binary.LittleEndian, uint32(header))
	}
	buf.WriteString(dict)
	buf.WriteString(strings.Repeat(" ", header-len(dict)-1))
	buf.WriteByte('\n')
	return buf.Bytes()
}

// pad returns the header length (dict + spaces + newline) that aligns the
// data offset to npyAlign
func pad(preamble, dictLen int) int {
	total := preamble + dictLen + 1
	return dictLen + 1 + (npyAlign-total%npyAlign)%npyAlign
}

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// readNpy decodes an npy stream of size bytes. Header and data lengths are
// checked against size before anything is allocated.
func readNpy(r io.Reader, size int64) (*Array, error) {
	magic := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read npy magic: %w", err)
	}
	if string(magic[:len(npyMagic)]) != npyMagic {
		return nil, errors.New("not a npy file")
	}

	var headerLen int64
	offset := int64(len(magic))
	switch major := magic[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen, offset = int64(n), offset+2
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen, offset = int64(n), offset+4
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	if headerLen > size-offset {
		return nil, fmt.Errorf("npy header length %d exceeds file size %d", headerLen, size)
	}
	offset += headerLen

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	arr, order, err := parseNpyHeader(string(header))
	if err != nil {
		return nil, err
	}

	n, err := arr.Len()
	if err != nil {
		return nil, err
	}
	if remaining := size - offset; int64(n) > remaining/int64(itemSize(arr.DType)) {
		return nil, fmt.Errorf("npy shape %v needs %d elements of %d bytes, file holds %d data bytes",
			arr.Shape, n, itemSize(arr.DType), remaining)
	}

	arr.Data = makeSlice(arr.DType, n)
	if err := binary.Read(r, order, arr.Data); err != nil {
		return nil, fmt.Errorf("failed to read npy data: %w", err)
	}
	return arr, nil
}

func parseNpyHeader(header string) (*Array, binary.ByteOrder, error) {
	m := descrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, nil, errors.New("npy header has no descr")
	}
	descr := m[1]

	var order binary.ByteOrder = binary.LittleEndian
	if len(descr) > 0 && strings.ContainsRune("<>|=", rune(descr[0])) {
		if descr[0] == '>' {
			order = binary.BigEndian
		}
		descr = descr[1:]
	}
	dtype := DType(descr)
	if makeSlice(dtype, 0) == nil {
		return nil, nil, fmt.Errorf("unsupported dtype %q", m[1])
	}

	m = fortranRe.FindStringSubmatch(header)
	if m == nil {
		return nil, nil, errors.New("npy header has no fortran_order")
	}

	s := shapeRe.FindStringSubmatch(header)
	if s == nil {
		return nil, nil, errors.New("npy header has no shape")
	}
	shape := []int{}
	for _, part := range strings.Split(s[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || d < 0 {
			return nil, nil, fmt.Errorf("invalid npy shape %q", s[1])
		}
		shape = append(shape, d)
	}

	return &Array{DType: dtype, Shape: shape, FortranOrder: m[1] == "True"}, order, nil
}

// itemSize is the byte width encoded in the type code ("f8" -> 8)
func itemSize(dtype DType) int {
	n, err := strconv.Atoi(string(dtype[1:]))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func descrOf(dtype DType) string {
	if strings.HasSuffix(string(dtype), "1") {
		return "|" + string(dtype)
	}
	return "<" + string(dtype)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func pyShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func dtypeOf(data any) (DType, error) {
	switch data.(type) {
	case []float64:
		return Float64, nil
	case []float32:
		return Float32, nil
	case []int64:
		return Int64, nil
	case []int32:
		return Int32, nil
	case []int16:
		return Int16, nil
	case []int8:
		return Int8, nil
	case []uint64:
		return Uint64, nil
	case []uint32:
		return Uint32, nil
	case []uint16:
		return Uint16, nil
	case []uint8:
		return Uint8, nil
	case []bool:
		return Bool, nil
	}
	return "", fmt.Errorf("unsupported array data type %T", data)
}

// makeSlice returns nil for an unknown dtype
func makeSlice(dtype DType, n int) any {
	switch dtype {
	case Float64:
		return make([]float64, n)
	case Float32:
		return make([]float32, n)
	case Int64:
		return make([]int64, n)
	case Int32:
		return make([]int32, n)
	case Int16:
		return make([]int16, n)
	case Int8:
		return make([]int8, n)
	case Uint64:
		return make([]uint64, n)
	case Uint32:
		return make([]uint32, n)
	case Uint16:
		return make([]uint16, n)
	case Uint8:
		return make([]uint8, n)
	case Bool:
		return make([]bool, n)
	}
	return nil
}

func sliceLen(data any) int {
	switch v := data.(type) {
	case []float64:
		return len(v)
	case []float32:
		return len(v)
	case []int64:
		return len(v)
	case []int32:
		return len(v)
	case []int16:
		return len(v)
	case []int8:
		return len(v)
	case []uint64:
		return len(v)
	case []uint32:
		return len(v)
	case []uint16:
		return len(v)
	case []uint8:
		return len(v)
	case []bool:
		return len(v)
	}
	return -1
}
