package internal

import "net/http"

// Middleware wraps the HTTP handler of every route.
//
// Example:
//
//	func Auth(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        if r.Header.Get("Authorization") == "" {
//	            http.Error(w, "unauthorized", http.StatusUnauthorized)
//	            return
//	        }
//	        next.ServeHTTP(w, r)
//	    })
//	}
type Middleware func(next http.Handler) http.Handler
