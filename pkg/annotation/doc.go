// Package annotation extracts routing and validation metadata from the
// free-text documentation attached to handler endpoints.
//
// Three tag forms are recognized:
//
//	@route GET /users/{id}
//	@param int $id User identifier {@v required|integer|min:1}
//	@param string $email {@v optional|email}
//
// The route tag is case-insensitive and its method is normalized to upper
// case. Rule blocks are split on "|" and every rule on its first ":" into a
// name and an optional value. Unknown rule names are kept so that callers
// can decide how to treat them.
//
// Parsing never fails: text without a recognizable tag simply yields no
// route, no parameters, or no rules.
//
// # Usage
//
//	doc := `Show a user.
//	@route GET /users/{id}
//	@param int $id {@v required|min:1}`
//
//	route, ok := annotation.ParseRoute(doc)   // {GET /users/{id}}, true
//	rules := annotation.ParseParameterRules(doc, "id")
//	// [{required} {min 1}]
package annotation
