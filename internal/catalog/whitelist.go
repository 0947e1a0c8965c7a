package catalog

import "slices"

// relationKeys maps a populated relation to the field that holds its
// foreign-key value. Course.instructor_id targets the user, so the
// instructor relation contributes user_id rather than its own id.
var relationKeys = map[string]string{
	"state":      "id",
	"instructor": "user_id",
	"course":     "id",
	"module":     "id",
	"user":       "id",
}

// Whitelist filters a free-form patch down to the allowed scalar fields.
// Nested objects and arrays are dropped. A populated relation ("state") is
// reduced to its foreign key ("state_id") when that key is allowed and not
// already present.
func Whitelist(patch map[string]any, allowed []string) map[string]any {
	out := make(map[string]any, len(patch))

	for key, value := range patch {
		if !slices.Contains(allowed, key) {
			continue
		}
		switch value.(type) {
		case map[string]any, []any:
			continue
		}
		out[key] = value
	}

	for relation, idField := range relationKeys {
		fk := relation + "_id"
		if _, set := out[fk]; set || !slices.Contains(allowed, fk) {
			continue
		}
		obj, ok := patch[relation].(map[string]any)
		if !ok {
			continue
		}
		if id, ok := obj[idField]; ok && id != nil {
			out[fk] = id
		}
	}
	return out
}
