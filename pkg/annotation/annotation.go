package annotation

import (
	"regexp"
	"strings"
)

var (
	routePattern = regexp.MustCompile(`(?i)@route\s+([A-Z]+)\s+(/\S*)`)
	paramPattern = regexp.MustCompile(`@param\s+(\S+)\s+\$([A-Za-z_][A-Za-z0-9_]*)(.*)$`)
	rulesPattern = regexp.MustCompile(`\{@v\s+([^}]*)\}`)
)

// Route is the HTTP binding declared by an @route tag.
type Route struct {
	Method string `msgpack:"method" json:"method"`
	Path   string `msgpack:"path" json:"path"`
}

// Rule is a single validation rule from a {@v ...} block.
// HasValue distinguishes "min:" (empty value) from "min".
type Rule struct {
	Name     string `msgpack:"name" json:"name"`
	Value    string `msgpack:"value,omitempty" json:"value,omitempty"`
	HasValue bool   `msgpack:"has_value,omitempty" json:"has_value,omitempty"`
}

// String renders the rule back in its source form.
func (r Rule) String() string {
	if !r.HasValue {
		return r.Name
	}
	return r.Name + ":" + r.Value
}

// Param is a parameter declared by an @param tag.
type Param struct {
	Type        string
	Name        string
	Description string
	Rules       []Rule
}

// ParseRoute returns the first @route tag found in text.
// The second return value is false when text has no route tag.
func ParseRoute(text string) (Route, bool) {
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return Route{}, false
	}
	return Route{Method: strings.ToUpper(m[1]), Path: m[2]}, true
}

// HasRoute reports whether text carries a parseable @route tag.
func HasRoute(text string) bool {
	return routePattern.MatchString(text)
}

// ParseRoutes returns every @route tag in text, in source order.
func ParseRoutes(text string) []Route {
	matches := routePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	routes := make([]Route, 0, len(matches))
	for _, m := range matches {
		routes = append(routes, Route{Method: strings.ToUpper(m[1]), Path: m[2]})
	}
	return routes
}

// ParseParameterRules collects the rules attached to paramName.
// Rules from several @param lines naming the same parameter are concatenated
// in source order.
func ParseParameterRules(text, paramName string) []Rule {
	var rules []Rule
	for _, line := range lines(text) {
		m := paramPattern.FindStringSubmatch(line)
		if m == nil || m[2] != paramName {
			continue
		}
		rules = append(rules, rulesFromTail(m[3])...)
	}
	return rules
}

// ParseParams returns every @param declaration in text, in source order.
// Repeated declarations of one name are merged into the first occurrence.
func ParseParams(text string) []Param {
	var (
		params []Param
		index  = make(map[string]int)
	)
	for _, line := range lines(text) {
		m := paramPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tail := m[3]
		rules := rulesFromTail(tail)
		desc := strings.TrimSpace(rulesPattern.ReplaceAllString(tail, ""))

		if i, ok := index[m[2]]; ok {
			params[i].Rules = append(params[i].Rules, rules...)
			if params[i].Description == "" {
				params[i].Description = desc
			}
			continue
		}
		index[m[2]] = len(params)
		params = append(params, Param{
			Type:        m[1],
			Name:        m[2],
			Description: desc,
			Rules:       rules,
		})
	}
	return params
}

// ParseRules splits a raw rule string such as "required|min:1" into rules.
// Empty segments are skipped; names and values are trimmed.
func ParseRules(raw string) []Rule {
	var rules []Rule
	for segment := range strings.SplitSeq(raw, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, value, found := strings.Cut(segment, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rules = append(rules, Rule{
			Name:     name,
			Value:    strings.TrimSpace(value),
			HasValue: found,
		})
	}
	return rules
}

// Summary splits the prose of a doc text into a one-line summary and the
// remaining description. Tag lines are ignored.
func Summary(text string) (string, string) {
	var prose []string
	for _, line := range lines(text) {
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		prose = append(prose, line)
	}
	if len(prose) == 0 {
		return "", ""
	}
	return prose[0], strings.Join(prose[1:], "\n")
}

// HasRule reports whether rules contains a rule with the given name.
func HasRule(rules []Rule, name string) bool {
	for _, r := range rules {
		if r.Name == name {
			return true
		}
	}
	return false
}

func rulesFromTail(tail string) []Rule {
	var rules []Rule
	for _, m := range rulesPattern.FindAllStringSubmatch(tail, -1) {
		rules = append(rules, ParseRules(m[1])...)
	}
	return rules
}

// lines splits text into trimmed lines with comment decoration removed.
func lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/**")
		l = strings.TrimSuffix(l, "*/")
		l = strings.TrimLeft(l, "* \t")
		out = append(out, strings.TrimSpace(l))
	}
	return out
}
