package validator

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"

	"github.com/ivupcn/restina-framework/pkg/annotation"
)

// Resolver looks up the addresses of a host name.
// *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Option configures a Validator.
type Option func(*Validator)

// WithResolver sets the resolver used by the urlActive rule.
// Default: net.DefaultResolver.
func WithResolver(r Resolver) Option {
	return func(v *Validator) {
		if r != nil {
			v.resolver = r
		}
	}
}

// Validator evaluates rule lists against bound parameter values.
// It is safe for concurrent use.
type Validator struct {
	formats  *playground.Validate
	resolver Resolver
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		formats:  playground.New(),
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

// Default returns the shared package-level Validator.
func Default() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// Evaluate runs rules against value using the default Validator.
func Evaluate(ctx context.Context, field string, value any, rules []annotation.Rule) (any, error) {
	return Default().Evaluate(ctx, field, value, rules)
}

// Evaluate runs rules against value in source order and returns the value
// unchanged when all of them pass.
//
// If the list contains "optional" and value is nil, no rule runs and nil is
// returned. Otherwise the first failing rule stops evaluation and is reported
// as a ValidationError. Unknown rule names pass.
func (v *Validator) Evaluate(ctx context.Context, field string, value any, rules []annotation.Rule) (any, error) {
	if value == nil && annotation.HasRule(rules, "optional") {
		return nil, nil
	}

	for _, rule := range rules {
		check, ok := checks[rule.Name]
		if !ok {
			continue
		}
		if msg, passed := check(ctx, v, value, rule.Value); !passed {
			return value, newRuleError(field, rule, msg)
		}
	}

	return value, nil
}

// newRuleError builds the ValidationError for a failed rule.
// A non-empty override replaces the default message for the rule.
func newRuleError(field string, rule annotation.Rule, override string) ValidationError {
	msg := override
	if msg == "" {
		tmpl, ok := messages[rule.Name]
		if !ok {
			tmpl = "parameter '{field}' failed rule '{rule}'"
		}
		msg = strings.NewReplacer(
			"{field}", field,
			"{rule}", rule.Name,
			"{value}", rule.Value,
		).Replace(tmpl)
	}

	return ValidationError{
		Field:          field,
		Rule:           rule.Name,
		Constraint:     rule.Value,
		Message:        msg,
		TranslationKey: "validation." + rule.Name,
		TranslationValues: map[string]any{
			"field": field,
			"value": rule.Value,
		},
	}
}

var messages = map[string]string{
	"required":      "parameter '{field}' is required",
	"equals":        "parameter '{field}' must equal '{value}'",
	"different":     "parameter '{field}' must differ from '{value}'",
	"accepted":      "parameter '{field}' must be accepted",
	"numeric":       "parameter '{field}' must be numeric",
	"integer":       "parameter '{field}' must be an integer",
	"boolean":       "parameter '{field}' must be a boolean",
	"array":         "parameter '{field}' must be an array",
	"length":        "parameter '{field}' must be exactly {value} characters long",
	"lengthBetween": "parameter '{field}' length must be between {value}",
	"lengthMin":     "parameter '{field}' must be at least {value} characters long",
	"lengthMax":     "parameter '{field}' must not exceed {value} characters",
	"min":           "parameter '{field}' must not be less than {value}",
	"max":           "parameter '{field}' must not be greater than {value}",
	"in":            "parameter '{field}' must be one of: {value}",
	"notIn":         "parameter '{field}' must not be one of: {value}",
	"ip":            "parameter '{field}' must be a valid IP address",
	"email":         "parameter '{field}' must be a valid email address",
	"url":           "parameter '{field}' must be a valid URL",
	"urlActive":     "parameter '{field}' must be a URL with an active DNS record",
	"alpha":         "parameter '{field}' may only contain letters",
	"alphaNum":      "parameter '{field}' may only contain letters and digits",
	"slug":          "parameter '{field}' must be a valid slug",
	"regex":         "parameter '{field}' does not match the required format",
	"date":          "parameter '{field}' must be a valid date",
	"dateFormat":    "parameter '{field}' must be a valid date in format '{value}'",
	"dateBefore":    "parameter '{field}' must be before {value}",
	"dateAfter":     "parameter '{field}' must be after {value}",
	"contains":      "parameter '{field}' must contain '{value}'",
	"creditCard":    "parameter '{field}' must be a valid credit card number",
}

func (v *Validator) format(value any, tag string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return v.formats.Var(s, tag) == nil
}

func (v *Validator) hostResolves(ctx context.Context, host string) bool {
	if host == "" {
		return false
	}
	addrs, err := v.resolver.LookupHost(ctx, host)
	return err == nil && len(addrs) > 0
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
