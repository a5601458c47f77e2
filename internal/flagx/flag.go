// Package flagx holds small helpers for sharing os.Args between several
// independent flag sets (config file lookup, env file lookup, main flags).
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns only the allowed flags from args, together with their
// values. Both "-c conf.json" and "--config=conf.json" forms are recognized.
// A token following an allowed flag is taken as its value unless it starts
// with '-'. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// stringFlag parses a single string flag (with optional short alias) out of
// args, ignoring everything else. Later occurrences win.
func stringFlag(args []string, long, short, usage string) string {
	var v string

	names := []string{"-" + long}
	if short != "" {
		names = append(names, "-"+short)
	}

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&v, long, "", usage)
	if short != "" {
		fs.StringVar(&v, short, "", usage+" (short)")
	}
	_ = fs.Parse(FilterArgs(args, names))

	return v
}

// JsonConfigFlags returns the config file path given via -c or -config,
// or an empty string when neither is present.
func JsonConfigFlags() string {
	return stringFlag(os.Args[1:], "config", "c", "Path to config file")
}

// EnvFileFlags returns the dotenv file path given via -env, or an empty
// string when it is absent.
func EnvFileFlags() string {
	return stringFlag(os.Args[1:], "env", "", "Path to .env file")
}
