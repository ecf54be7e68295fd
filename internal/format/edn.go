package format

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ednValue writes the subset of EDN that JSON-shaped data needs. Map keys
// become keywords with underscores turned into dashes.
func ednValue(sb *strings.Builder, v any, pretty bool, depth int) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case string:
		sb.WriteString(strconv.Quote(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			sb.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case []any:
		sb.WriteByte('[')
		for i, x := range t {
			ednSep(sb, pretty, depth+1, i == 0)
			ednValue(sb, x, pretty, depth+1)
		}
		ednClose(sb, pretty, depth, len(t) == 0)
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			ednSep(sb, pretty, depth+1, i == 0)
			sb.WriteString(Keyword(k))
			sb.WriteByte(' ')
			ednValue(sb, t[k], pretty, depth+1)
		}
		ednClose(sb, pretty, depth, len(keys) == 0)
		sb.WriteByte('}')
	default:
		sb.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func ednSep(sb *strings.Builder, pretty bool, depth int, first bool) {
	switch {
	case pretty:
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", depth))
	case !first:
		sb.WriteByte(' ')
	}
}

func ednClose(sb *strings.Builder, pretty bool, depth int, empty bool) {
	if pretty && !empty {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", depth))
	}
}

// Keyword turns a json field name into an EDN keyword.
func Keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.NewReplacer("_", "-", " ", "-").Replace(k)
	return ":" + k
}
