package query

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/oakwood-commons/jview/pkg/jsonvalue"
)

// maxResultDepth guards against cyclic or runaway results.
const maxResultDepth = 10000

// converter moves values between jsonvalue and CEL. It remembers which Go
// maps and slices it built for which source values, so a result that is a
// sub-tree of the input converts back to the original value.
type converter struct {
	maps   map[uintptr]*jsonvalue.Value
	slices map[uintptr]*jsonvalue.Value
}

func newConverter() *converter {
	return &converter{
		maps:   make(map[uintptr]*jsonvalue.Value),
		slices: make(map[uintptr]*jsonvalue.Value),
	}
}

func (c *converter) toNative(v *jsonvalue.Value) any {
	switch v.Kind() {
	case jsonvalue.Bool:
		return v.Bool()
	case jsonvalue.Number:
		return number(v.Number())
	case jsonvalue.String:
		return v.Str()
	case jsonvalue.Array:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = c.toNative(it)
		}
		if len(out) > 0 {
			c.slices[reflect.ValueOf(out).Pointer()] = v
		}
		return out
	case jsonvalue.Object:
		members := v.Members()
		out := make(map[string]any, len(members))
		for _, m := range members {
			out[m.Key] = c.toNative(m.Value)
		}
		c.maps[reflect.ValueOf(out).Pointer()] = v
		return out
	}
	return nil
}

// number picks int64 for integral literals so CEL integer arithmetic and
// indexing work, and float64 otherwise.
func number(lit string) any {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return f
}

func (c *converter) fromCEL(val ref.Val, depth int) (*jsonvalue.Value, error) {
	if depth > maxResultDepth {
		return nil, fmt.Errorf("result nests deeper than %d levels", maxResultDepth)
	}
	switch v := val.(type) {
	case nil, types.Null:
		return jsonvalue.NewNull(), nil
	case types.Bool:
		return jsonvalue.NewBool(bool(v)), nil
	case types.Int:
		return jsonvalue.NewNumber(strconv.FormatInt(int64(v), 10)), nil
	case types.Uint:
		return jsonvalue.NewNumber(strconv.FormatUint(uint64(v), 10)), nil
	case types.Double:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%v is not a JSON number", f)
		}
		return jsonvalue.NewNumber(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case types.String:
		return jsonvalue.NewString(string(v)), nil
	case types.Bytes:
		return jsonvalue.NewString(base64.StdEncoding.EncodeToString(v)), nil
	}

	if orig := c.original(val); orig != nil {
		return orig, nil
	}
	switch v := val.(type) {
	case traits.Lister:
		return c.fromList(v, depth)
	case traits.Mapper:
		return c.fromMap(v, depth)
	}

	if s, ok := val.ConvertToType(types.StringType).(types.String); ok {
		return jsonvalue.NewString(string(s)), nil
	}
	return nil, fmt.Errorf("cannot represent %s as JSON", val.Type())
}

func (c *converter) original(val ref.Val) *jsonvalue.Value {
	native := val.Value()
	switch n := native.(type) {
	case map[string]any:
		return c.maps[reflect.ValueOf(n).Pointer()]
	case []any:
		if len(n) > 0 {
			return c.slices[reflect.ValueOf(n).Pointer()]
		}
	}
	return nil
}

func (c *converter) fromList(l traits.Lister, depth int) (*jsonvalue.Value, error) {
	size, ok := l.Size().(types.Int)
	if !ok {
		return nil, fmt.Errorf("list has no size")
	}
	items := make([]*jsonvalue.Value, 0, int(size))
	for i := types.Int(0); i < size; i++ {
		item, err := c.fromCEL(l.Get(i), depth+1)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return jsonvalue.NewArray(items...), nil
}

func (c *converter) fromMap(m traits.Mapper, depth int) (*jsonvalue.Value, error) {
	type entry struct {
		key string
		val ref.Val
	}
	var entries []entry
	it := m.Iterator()
	for it.HasNext() == types.True {
		k := it.Next()
		key, ok := k.ConvertToType(types.StringType).(types.String)
		if !ok {
			return nil, fmt.Errorf("map key %v cannot be a JSON key", k)
		}
		entries = append(entries, entry{key: string(key), val: m.Get(k)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	members := make([]jsonvalue.Member, 0, len(entries))
	for _, e := range entries {
		v, err := c.fromCEL(e.val, depth+1)
		if err != nil {
			return nil, fmt.Errorf(".%s: %w", e.key, err)
		}
		members = append(members, jsonvalue.Member{Key: e.key, Value: v})
	}
	return jsonvalue.NewObject(members...), nil
}
