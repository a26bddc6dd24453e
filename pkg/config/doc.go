/*
Package config loads the huddle server configuration.

Values resolve in three layers, later winning: built-in defaults, an
optional YAML file, then HUDDLE_* environment variables. Unknown YAML
keys are rejected so a typoed setting fails loudly instead of silently
using the default.

	cfg, err := config.Load("/etc/huddle/config.yaml")

	# config.yaml
	dataDir: /var/lib/huddle
	server:
	  listenAddr: 0.0.0.0:8420
	log:
	  level: info
	  json: true
	messenger:
	  baseUrl: https://chat.example.com
	  token: s3cret
*/
package config
