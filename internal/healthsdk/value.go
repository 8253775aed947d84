package healthsdk

import (
	"bytes"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var errMalformed = errors.New("malformed json value")

// value is a decoded JSON document. It holds nil, bool, float64, string,
// []value or *object, and renders the way JSON.stringify does.
type value struct {
	v any
}

// object keeps first-insertion order; a repeated key overwrites the earlier value in place.
type object struct {
	keys   []string
	values map[string]value
}

func newObject() *object {
	return &object{values: make(map[string]value)}
}

func (o *object) set(key string, v value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// orderedKeys lists array-index keys in ascending order, then the rest in insertion order.
func (o *object) orderedKeys() []string {
	type indexKey struct {
		key string
		n   uint64
	}
	var indexes []indexKey
	rest := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if n, ok := arrayIndex(k); ok {
			indexes = append(indexes, indexKey{k, n})
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].n < indexes[j].n })

	keys := make([]string, 0, len(o.keys))
	for _, ik := range indexes {
		keys = append(keys, ik.key)
	}
	return append(keys, rest...)
}

// arrayIndex reports whether key is a canonical integer below 2^32-1.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || len(key) > 10 || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}

func (v *value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errMalformed
	}

	switch data[0] {
	case '{':
		obj, err := decodeObject(data)
		if err != nil {
			return err
		}
		v.v = obj
	case '[':
		var items []value
		if err := jsonUnmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []value{}
		}
		v.v = items
	default:
		var scalar any
		if err := jsonUnmarshal(data, &scalar); err != nil {
			return err
		}
		v.v = scalar
	}
	return nil
}

// decodeObject walks the members of a JSON object so their order survives decoding.
func decodeObject(data []byte) (*object, error) {
	obj := newObject()
	i := skipSpace(data, 1)
	if i < len(data) && data[i] == '}' {
		return obj, nil
	}

	for {
		i = skipSpace(data, i)
		end, err := scanString(data, i)
		if err != nil {
			return nil, err
		}
		var key string
		if err := jsonUnmarshal(data[i:end], &key); err != nil {
			return nil, err
		}

		i = skipSpace(data, end)
		if i >= len(data) || data[i] != ':' {
			return nil, errMalformed
		}
		i = skipSpace(data, i+1)

		end, err = scanValue(data, i)
		if err != nil {
			return nil, err
		}
		var member value
		if err := jsonUnmarshal(data[i:end], &member); err != nil {
			return nil, err
		}
		obj.set(key, member)

		i = skipSpace(data, end)
		if i >= len(data) {
			return nil, errMalformed
		}
		switch data[i] {
		case ',':
			i++
		case '}':
			return obj, nil
		default:
			return nil, errMalformed
		}
	}
}

func skipSpace(data []byte, i int) int {
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// scanString returns the index just past the string literal starting at i.
func scanString(data []byte, i int) (int, error) {
	if i >= len(data) || data[i] != '"' {
		return 0, errMalformed
	}
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j + 1, nil
		}
	}
	return 0, errMalformed
}

// scanValue returns the index just past the value starting at i.
func scanValue(data []byte, i int) (int, error) {
	if i >= len(data) {
		return 0, errMalformed
	}

	switch data[i] {
	case '"':
		return scanString(data, i)
	case '{', '[':
		depth := 0
		for j := i; j < len(data); {
			switch data[j] {
			case '"':
				end, err := scanString(data, j)
				if err != nil {
					return 0, err
				}
				j = end
				continue
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					return j + 1, nil
				}
			}
			j++
		}
		return 0, errMalformed
	default:
		j := i
		for j < len(data) && !bytes.ContainsRune([]byte(",}] \t\n\r"), rune(data[j])) {
			j++
		}
		if j == i {
			return 0, errMalformed
		}
		return j, nil
	}
}

// stringify renders v like JSON.stringify(v, null, indent). An empty indent gives compact output.
func (v value) stringify(indent string) string {
	var b strings.Builder
	v.write(&b, indent, "")
	return b.String()
}

func (v value) write(b *strings.Builder, indent, prefix string) {
	inner := prefix + indent
	sep := ","
	colon := ":"
	if indent != "" {
		sep = ",\n" + inner
		colon = ": "
	}

	switch x := v.v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case float64:
		b.WriteString(formatNumber(x))
	case string:
		writeQuoted(b, x)
	case []value:
		if len(x) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		if indent != "" {
			b.WriteString("\n" + inner)
		}
		for i, item := range x {
			if i > 0 {
				b.WriteString(sep)
			}
			item.write(b, indent, inner)
		}
		if indent != "" {
			b.WriteString("\n" + prefix)
		}
		b.WriteByte(']')
	case *object:
		if len(x.keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		if indent != "" {
			b.WriteString("\n" + inner)
		}
		for i, k := range x.orderedKeys() {
			if i > 0 {
				b.WriteString(sep)
			}
			writeQuoted(b, k)
			b.WriteString(colon)
			x.values[k].write(b, indent, inner)
		}
		if indent != "" {
			b.WriteString("\n" + prefix)
		}
		b.WriteByte('}')
	}
}

// formatNumber gives the shortest round-trip form, switching to exponent
// notation outside [1e-6, 1e21) as JavaScript does.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const hexDigits = "0123456789abcdef"

// writeQuoted escapes only what JSON.stringify escapes.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
