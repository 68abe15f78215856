package recorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"pubops-backend/internal/domains/history/model"
)

// auditFields never appear in snapshots
var auditFields = []string{"id", "created_by", "created_at", "updated_by", "updated_at"}

// Snapshot projects v through its JSON encoding into a generic map.
// Audit fields and any extra names in exclude are dropped.
func Snapshot(v any, exclude ...string) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("snapshot: value is not a JSON object: %w", err)
	}

	for _, k := range auditFields {
		delete(out, k)
	}
	for _, k := range exclude {
		delete(out, k)
	}
	return out, nil
}

// Diff produces the edits turning before into after.
// A null value counts as absent, so null -> x is an add and x -> null a remove.
// Keys are visited in sorted order at every level. Arrays are compared
// element-wise: shared indexes are replaced, a longer after array adds its
// tail, a shorter one removes the tail from the highest index down.
func Diff(before, after map[string]any) []model.FieldEdit {
	var edits []model.FieldEdit
	diffObject("", before, after, &edits)
	return edits
}

func diffObject(prefix string, before, after map[string]any, edits *[]model.FieldEdit) {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		diffValue(prefix+"/"+EscapePointer(k), before[k], after[k], edits)
	}
}

func diffValue(path string, before, after any, edits *[]model.FieldEdit) {
	switch {
	case before == nil && after == nil:
		return
	case before == nil:
		*edits = append(*edits, model.FieldEdit{Path: path, Op: model.OpAdd, Value: after})
		return
	case after == nil:
		*edits = append(*edits, model.FieldEdit{Path: path, Op: model.OpRemove})
		return
	}

	if bm, ok := before.(map[string]any); ok {
		if am, ok := after.(map[string]any); ok {
			diffObject(path, bm, am, edits)
			return
		}
	}

	if ba, ok := before.([]any); ok {
		if aa, ok := after.([]any); ok {
			diffArray(path, ba, aa, edits)
			return
		}
	}

	if !reflect.DeepEqual(before, after) {
		*edits = append(*edits, model.FieldEdit{Path: path, Op: model.OpReplace, Value: after})
	}
}

func diffArray(path string, before, after []any, edits *[]model.FieldEdit) {
	shared := min(len(before), len(after))

	for i := 0; i < shared; i++ {
		elemPath := path + "/" + strconv.Itoa(i)
		// null elements keep their slot, so they are replaced rather than added or removed
		if (before[i] == nil) != (after[i] == nil) {
			*edits = append(*edits, model.FieldEdit{Path: elemPath, Op: model.OpReplace, Value: after[i]})
			continue
		}
		diffValue(elemPath, before[i], after[i], edits)
	}
	for i := shared; i < len(after); i++ {
		*edits = append(*edits, model.FieldEdit{Path: path + "/" + strconv.Itoa(i), Op: model.OpAdd, Value: after[i]})
	}
	for i := len(before) - 1; i >= shared; i-- {
		*edits = append(*edits, model.FieldEdit{Path: path + "/" + strconv.Itoa(i), Op: model.OpRemove})
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointer escapes a single JSON-Pointer reference token (RFC 6901)
func EscapePointer(token string) string {
	return pointerEscaper.Replace(token)
}
