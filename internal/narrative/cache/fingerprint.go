package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/ridgeline/caseflow/internal/json"
)

// Fingerprint derives the deterministic cache key for a request: a digest
// of the endpoint name, the resolved model, and the request payload with
// object keys sorted recursively and cyclic references pruned. Two
// requests with the same logical content always collide to the same
// fingerprint regardless of field insertion order.
func Fingerprint(endpoint, modelID string, payload any) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('\n')
	b.WriteString(modelID)
	b.WriteByte('\n')
	writeCanonical(&b, payload, make(map[uintptr]struct{}))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// writeCanonical emits a stable textual form of v. Maps are sorted by
// key; already-visited maps and slices are elided so self-referential
// payloads terminate.
func writeCanonical(b *strings.Builder, v any, seen map[uintptr]struct{}) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case string:
		b.WriteString(strconv.Quote(val))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if _, ok := seen[ptr]; ok {
			b.WriteString("{}")
			return
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeCanonical(b, val[k], seen)
		}
		b.WriteByte('}')
	case []any:
		if len(val) > 0 {
			ptr := reflect.ValueOf(val).Pointer()
			if _, ok := seen[ptr]; ok {
				b.WriteString("[]")
				return
			}
			seen[ptr] = struct{}{}
			defer delete(seen, ptr)
		}
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item, seen)
		}
		b.WriteByte(']')
	default:
		// Typed structs have a fixed field order, so a plain marshal with
		// sorted map keys is already deterministic.
		if data, err := json.Marshal(val); err == nil {
			b.Write(data)
		} else {
			b.WriteString("null")
		}
	}
}
