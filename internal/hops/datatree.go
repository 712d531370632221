package hops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// FirstBranch is the path every output is written to.
const FirstBranch = "{0}"

// Item is one value in a DataTree branch. Data holds JSON text.
type Item struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// UnmarshalJSON accepts data both as a string of JSON text and as an inline
// JSON value.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.Type = raw.Type
	data := bytes.TrimSpace(raw.Data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &it.Data)
	}
	it.Data = string(data)
	return nil
}

// DataTree is a named tree of items keyed by branch path.
type DataTree struct {
	ParamName string            `json:"ParamName"`
	InnerTree map[string][]Item `json:"InnerTree"`
}

// first returns the first item of the first branch and how many items were
// ignored. Branch "{0}" is preferred; otherwise paths are taken in lexical
// order.
func (t DataTree) first() (Item, int, bool) {
	if items := t.InnerTree[FirstBranch]; len(items) > 0 {
		return items[0], t.count() - 1, true
	}
	paths := make([]string, 0, len(t.InnerTree))
	for p := range t.InnerTree {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if items := t.InnerTree[p]; len(items) > 0 {
			return items[0], t.count() - 1, true
		}
	}
	return Item{}, 0, false
}

func (t DataTree) count() int {
	n := 0
	for _, items := range t.InnerTree {
		n += len(items)
	}
	return n
}

// itemValue turns item data into a cty value for the dispatcher. JSON text
// keeps its structure; anything else is passed on as a plain string and left
// to the dispatcher's conversion rules.
func itemValue(data string) (cty.Value, error) {
	b := []byte(data)
	if !json.Valid(b) && len(bytes.TrimSpace(b)) > 0 {
		return cty.StringVal(data), nil
	}
	return component.FromJSON(b)
}

// encodeItem renders a dispatcher result in Hops form.
func encodeItem(p component.Param, v cty.Value) (Item, error) {
	item := Item{Type: p.Type.ResultType()}
	switch p.Type {
	case component.Number:
		f, err := component.NumberValue(v)
		if err != nil {
			return Item{}, err
		}
		item.Data = PythonFloat(f)
	case component.Point, component.Vector:
		x, y, z, err := component.TripleValue(v)
		if err != nil {
			return Item{}, err
		}
		item.Data = fmt.Sprintf(`{"X":%s,"Y":%s,"Z":%s}`, PythonFloat(x), PythonFloat(y), PythonFloat(z))
	case component.Curve, component.Surface:
		b, err := component.GeometryJSON(v)
		if err != nil {
			return Item{}, err
		}
		item.Data = string(b)
	default:
		return Item{}, fmt.Errorf("unsupported output type %s", p.Type)
	}
	return item, nil
}

// PythonFloat formats f like Python's repr: shortest round-trip digits,
// always with a fractional part or an exponent, and exponent notation
// outside 1e-4 <= |f| < 1e16.
func PythonFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if f != 0 && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
