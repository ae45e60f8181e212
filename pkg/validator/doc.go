// Package validator evaluates declarative rule lists against handler
// parameter values.
//
// Rules come from {@v ...} annotation blocks (see package annotation) and
// run in source order; the first failing rule is reported as a
// [ValidationError] naming the field, the rule and its constraint.
//
//	v := validator.New()
//	_, err := v.Evaluate(ctx, "age", 17, annotation.ParseRules("required|integer|min:18"))
//	if validator.IsValidationError(err) {
//	    // 400 response
//	}
//
// # Rules
//
//	required                value is not nil, "" or an empty collection
//	optional                a nil value skips every other rule
//	equals:x, different:x   string comparison of the value
//	accepted                true, 1, "1", "on", "yes", "true"
//	numeric, integer        numbers or numeric strings
//	boolean                 bool, 0, 1, "0", "1", "true", "false"
//	array                   slice, array or map
//	length:n                string length in bytes equals n
//	lengthMin:n, lengthMax:n, lengthBetween:a,b
//	min:n, max:n            numeric bounds
//	in:a,b, notIn:a,b       membership
//	ip, email, url          formats (go-playground/validator)
//	urlActive               url whose host resolves
//	alpha, alphaNum, slug   character classes
//	regex:/pattern/flags    regular expression (RE2 syntax)
//	date                    Y-m-d
//	dateFormat:fmt          date in the given letter format (e.g. d/m/Y)
//	dateBefore:d, dateAfter:d
//	contains:s              substring
//	creditCard              Luhn checksum
//
// Unknown rule names pass.
//
// # Translation
//
// Every error carries a TranslationKey ("validation.<rule>") and values, so
// messages can be localized with [ValidationErrors.Translate].
package validator
