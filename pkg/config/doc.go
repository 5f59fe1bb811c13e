// Package config loads the canaryd startup document.
//
// The document carries the route table, listener settings, log sink settings
// and the Telegram notifier credentials:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	logging:
//	  file: server.log
//	notifier:
//	  bot_token: "123:abc"
//	  chat_id: "-1001234"
//	routes:
//	  - path: /ping
//	    response: pong
//	    response_code: 200
//	    comment: liveness probe
//
// YAML is the default format; files ending in .json are parsed as JSON.
//
// Precedence, highest first: command-line flags, environment variables
// (see env.go), the document, defaults. BOT_TOKEN and CHAT_ID from the
// environment replace the document's credentials.
//
// A configuration error is fatal: the server must not start serving with an
// invalid document.
package config
