package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
)

// Value is a resolved field value. Its dynamic type depends on the field
// shape: string, []string, int, catalogs.Agent, []catalogs.Agent,
// catalogs.ContactPoint or map[string]any.
type Value any

// Fields is the flat result of resolving one project.
type Fields map[string]Value

// String returns a string-shaped field.
func (f Fields) String(name string) (string, bool) {
	v, ok := f[name].(string)
	return v, ok
}

// Strings returns a list-shaped field.
func (f Fields) Strings(name string) ([]string, bool) {
	v, ok := f[name].([]string)
	return v, ok
}

// Int returns an integer-shaped field.
func (f Fields) Int(name string) (int, bool) {
	v, ok := f[name].(int)
	return v, ok
}

// Agents returns an agent or agent list field as a list.
func (f Fields) Agents(name string) ([]catalogs.Agent, bool) {
	switch v := f[name].(type) {
	case []catalogs.Agent:
		return v, true
	case catalogs.Agent:
		return []catalogs.Agent{v}, true
	}
	return nil, false
}

// ContactPoint returns a contact point field.
func (f Fields) ContactPoint(name string) (catalogs.ContactPoint, bool) {
	v, ok := f[name].(catalogs.ContactPoint)
	return v, ok
}

// Object returns an object-shaped field.
func (f Fields) Object(name string) (map[string]any, bool) {
	v, ok := f[name].(map[string]any)
	return v, ok
}

// coerce converts a raw payload value into the given shape.
func coerce(shape Shape, raw any) (Value, error) {
	switch shape {
	case ShapeString:
		return toString(raw)
	case ShapeStringList:
		return toList(raw, toString)
	case ShapeURI:
		return toURI(raw)
	case ShapeURIList:
		return toList(raw, toURI)
	case ShapeInteger:
		return toInt(raw)
	case ShapeAgent:
		return toAgent(raw)
	case ShapeAgentList:
		return toList(raw, toAgent)
	case ShapeContactPoint:
		return toContactPoint(raw)
	case ShapeObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", raw)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown shape %q", shape)
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", fmt.Errorf("empty string")
		}
		return s, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	}
	return "", fmt.Errorf("expected a string, got %T", raw)
}

func toURI(raw any) (string, error) {
	s, err := toString(raw)
	if err != nil {
		return "", err
	}
	if !catalogs.IsAbsoluteURI(s) {
		return "", fmt.Errorf("%q is not an absolute URI", s)
	}
	return s, nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", raw)
}

// toList accepts a list, or a single value as a one-element list. Any
// malformed element rejects the whole list.
func toList[T any](raw any, elem func(any) (T, error)) ([]T, error) {
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := elem(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func toAgent(raw any) (catalogs.Agent, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return catalogs.Agent{}, fmt.Errorf("expected an agent object, got %T", raw)
	}
	a := catalogs.Agent{
		Name:       stringAt(m, "name"),
		Identifier: stringAt(m, "identifier"),
		Homepage:   stringAt(m, "homepage"),
	}
	if email := stringAt(m, "email"); email != "" {
		a.Email = catalogs.MailtoURI(email)
	}
	if err := a.Validate("agent"); err != nil {
		return catalogs.Agent{}, err
	}
	return a, nil
}

func toContactPoint(raw any) (catalogs.ContactPoint, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return catalogs.ContactPoint{}, fmt.Errorf("expected a contact point object, got %T", raw)
	}
	c := catalogs.NewContactPoint(stringAt(m, "full_name"), stringAt(m, "email"))
	c.UID = stringAt(m, "uid")
	c.URL = stringAt(m, "url")
	if err := c.Validate(); err != nil {
		return catalogs.ContactPoint{}, err
	}
	return c, nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
