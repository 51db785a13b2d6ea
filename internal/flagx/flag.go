// Package flagx lets independent components pick their own flags out of
// the process arguments, so each can run its own flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// Select keeps only the named flags and their values from args. Names are
// given without dashes; both "-name" and "--name" spellings match, as do the
// "-name value" and "-name=value" forms. Order is preserved.
func Select(args []string, names ...string) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline, ok := split(args[i])
		if !ok || !known[name] {
			continue
		}
		out = append(out, args[i])
		if inline {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// split reports the flag name of arg and whether its value is inline.
func split(arg string) (name string, inline bool, ok bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if n, _, found := strings.Cut(name, "="); found {
		return n, true, true
	}
	return name, false, true
}

// ConfigPath returns the value of -c/-config from os.Args, or "".
func ConfigPath() string {
	return configPath(os.Args[1:])
}

func configPath(argv []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file (json, yaml or toml)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Select(argv, "c", "config"))

	return path
}
