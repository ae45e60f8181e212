package internal

import (
	"slices"
	"strings"

	"github.com/ivupcn/restina-framework/pkg/annotation"
)

// ParamType is the declared type of a handler parameter.
type ParamType string

const (
	TypeInt      ParamType = "int"
	TypeFloat    ParamType = "float"
	TypeBool     ParamType = "bool"
	TypeString   ParamType = "string"
	TypeArray    ParamType = "array"
	TypeMixed    ParamType = "mixed"
	TypeRequest  ParamType = "request"
	TypeResponse ParamType = "response"
)

// reservedBodyNames bind the whole parsed body when declared as arrays.
var reservedBodyNames = []string{"payload", "data", "body"}

// ParamSpec describes how one handler parameter is bound and validated.
type ParamSpec struct {
	Default     any               `msgpack:"default,omitempty" json:"default,omitempty"`
	Name        string            `msgpack:"name" json:"name"`
	Type        ParamType         `msgpack:"type" json:"type"`
	Description string            `msgpack:"description,omitempty" json:"description,omitempty"`
	Rules       []annotation.Rule `msgpack:"rules,omitempty" json:"rules,omitempty"`
	HasDefault  bool              `msgpack:"has_default,omitempty" json:"has_default,omitempty"`
	Optional    bool              `msgpack:"optional,omitempty" json:"optional,omitempty"`
}

// Special reports whether the parameter receives a framework object rather
// than request data.
func (p ParamSpec) Special() bool {
	return p.Type == TypeRequest || p.Type == TypeResponse
}

// ParseParamType maps a documented @param type to a ParamType.
func ParseParamType(raw string) ParamType {
	switch strings.ToLower(strings.TrimLeft(raw, "?*\\")) {
	case "int", "integer":
		return TypeInt
	case "float", "double":
		return TypeFloat
	case "bool", "boolean":
		return TypeBool
	case "string":
		return TypeString
	case "array", "object", "map":
		return TypeArray
	case "request", "http.request", "serverrequestinterface":
		return TypeRequest
	case "response", "responseinterface":
		return TypeResponse
	default:
		return TypeMixed
	}
}

func buildParamSpecs(doc string, explicit []ParamSpec, defaults map[string]any) []ParamSpec {
	parsed := annotation.ParseParams(doc)
	specs := make([]ParamSpec, 0, len(parsed)+len(explicit))
	for _, p := range parsed {
		specs = append(specs, ParamSpec{
			Name:        p.Name,
			Type:        ParseParamType(p.Type),
			Description: p.Description,
			Rules:       p.Rules,
		})
	}

	for _, e := range explicit {
		if e.Type == "" {
			e.Type = TypeMixed
		}
		i := slices.IndexFunc(specs, func(s ParamSpec) bool { return s.Name == e.Name })
		if i < 0 {
			specs = append(specs, e)
			continue
		}
		if len(e.Rules) == 0 {
			e.Rules = specs[i].Rules
		}
		if e.Description == "" {
			e.Description = specs[i].Description
		}
		specs[i] = e
	}

	for i := range specs {
		if v, ok := defaults[specs[i].Name]; ok {
			specs[i].Default = v
			specs[i].HasDefault = true
		}
		specs[i].Optional = specs[i].HasDefault || annotation.HasRule(specs[i].Rules, "optional")
	}
	return specs
}
