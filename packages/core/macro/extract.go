package macro

import (
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Extract navigates raw along path, one object key per segment.
//
// Without a path the whole result is used: a JSON string yields its
// unquoted value, other JSON and non-JSON text are used as they are.
// A string leaf yields its unquoted value, any other leaf its JSON text.
func Extract(token, raw string, path []string) (string, error) {
	if len(path) == 0 {
		if gjson.Valid(raw) {
			if v := gjson.Parse(raw); v.Type == gjson.String {
				return v.Str, nil
			}
		}
		return raw, nil
	}

	if !gjson.Valid(raw) {
		return "", errs.New(errs.ErrJSONParse, token, nil)
	}

	current := gjson.Parse(raw)
	for _, segment := range path {
		next, ok := child(current, segment)
		if !ok {
			return "", errs.New(errs.ErrJSONPathNotFound, token,
				errors.Errorf("no key %q", segment))
		}
		current = next
	}

	if current.Type == gjson.String {
		return current.Str, nil
	}
	return current.Raw, nil
}

// child looks up an object key by exact name. gjson path syntax is not used
// so keys containing wildcards or escapes match literally.
func child(v gjson.Result, key string) (gjson.Result, bool) {
	if key == "" || !v.IsObject() {
		return gjson.Result{}, false
	}

	var (
		found gjson.Result
		ok    bool
	)
	v.ForEach(func(k, value gjson.Result) bool {
		if k.Str == key {
			found, ok = value, true
			return false
		}
		return true
	})
	return found, ok
}
