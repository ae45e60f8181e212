// Package config loads the YAML application configuration.
//
//	app:
//	  name: billing
//	  debug: false
//	  cache: file        # "", memory, file or redis
//	  sanitize: strip
//	cache:
//	  dir: runtime/cache
//	  ttl: 24h
//	redis:
//	  url: ${REDIS_URL}
//	  prefix: restina
//	server:
//	  address: :8080
//	log:
//	  level: info
//	hooks:
//	  actions:
//	    request.error:
//	      - callback: audit.error
//	        priority: 5
//	sentry:
//	  dsn: ${SENTRY_DSN}
//
// Values missing from the file keep the defaults from Default.
package config
