// Package config loads runtime configuration for the tracker CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the tracker REST API
//	-t int      per-request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-f string   path of the local state database
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:5000",
//	  "request_timeout": "10s",
//	  "online_check_interval": "5s",
//	  "state_file": "/home/alice/.local/share/issuetracker/session.db"
//	}
package config
