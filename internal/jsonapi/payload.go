package jsonapi

import (
	"strings"

	"github.com/jobhunt-app/jobhunt/internal/coerce"
	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// ParsePayload validates a decoded JSON:API write payload against a
// descriptor and flattens it into a column map ready for the store. Only
// declared, writable attributes survive; relationship linkage collapses to
// foreign key columns. All failures are ValidationErrors.
func ParsePayload(desc *resource.Descriptor, payload map[string]interface{}) (Entity, error) {
	raw, ok := payload["data"]
	if payload == nil || !ok {
		return nil, validationErrorf("JSON:API payload must contain 'data'")
	}
	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, validationErrorf("JSON:API payload must contain 'data'")
	}

	typeName, _ := data["type"].(string)
	if !desc.AcceptsTypeName(typeName) {
		accepted := desc.AcceptedTypeNames()
		return nil, validationErrorf("JSON:API type mismatch: expected one of '%s'", strings.Join(accepted, "', '"))
	}

	out := Entity{}
	if attrs, ok := data["attributes"].(map[string]interface{}); ok {
		for _, name := range desc.Attributes {
			if desc.IsReadOnly(name) {
				continue
			}
			v, present := attrs[name]
			if !present {
				continue
			}
			out[name] = v
		}
	}

	for _, name := range desc.DateTimeAttributes {
		v, present := out[name]
		if !present {
			continue
		}
		parsed := coerce.ParseDateTime(v)
		if parsed == nil {
			if !isEmptyValue(v) {
				return nil, validationErrorf("Invalid %s", name)
			}
			out[name] = nil
			continue
		}
		out[name] = *parsed
	}
	for _, name := range desc.DateAttributes {
		v, present := out[name]
		if !present {
			continue
		}
		if parsed := coerce.ParseDateLoose(v); parsed != nil {
			out[name] = *parsed
		} else {
			out[name] = nil
		}
	}

	if rels, ok := data["relationships"].(map[string]interface{}); ok {
		for relName, fk := range desc.RelationshipFKs {
			rel, ok := rels[relName].(map[string]interface{})
			if !ok {
				continue
			}
			linkage, present := rel["data"]
			if !present {
				continue
			}
			if linkage == nil {
				// Explicit null clears the association.
				out[fk] = nil
				continue
			}
			stub, ok := linkage.(map[string]interface{})
			if !ok {
				continue
			}
			id, ok := toInt64(stub["id"])
			if !ok {
				return nil, validationErrorf("Invalid id for relationship '%s'", relName)
			}
			out[fk] = id
		}
	}

	return out, nil
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
