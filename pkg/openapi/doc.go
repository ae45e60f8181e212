// Package openapi renders OpenAPI 3.0 documents from documented routes.
//
// Parameter schemas are derived from the declared type and from the
// validation rules of each parameter: length rules become minLength and
// maxLength, min and max become minimum and maximum, in becomes an enum,
// format rules (email, url, ip, date) set the format, and pattern rules
// (alpha, alphaNum, slug, regex) set the pattern. Rules without a schema
// equivalent are appended to the parameter description.
//
// Path arguments are "path" parameters. Other parameters are "query"
// parameters, or request body properties for POST, PUT and PATCH.
//
//	doc := openapi.Generate(routes,
//	    openapi.WithTitle("Users API"),
//	    openapi.WithServer("https://api.example.com", "production"),
//	)
//	data, err := doc.JSON()
package openapi
