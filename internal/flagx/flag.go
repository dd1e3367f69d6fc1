// Package flagx lets several components share os.Args: each one picks out
// the flags it owns and leaves the rest to the others (cobra, config).
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns only the allowed flags (and their values) from args.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
//
// A double-dash spelling (--config) matches an allowed single-dash name (-config).
func FilterArgs(args []string, allowedFlags []string) []string {
	kept, _ := split(args, allowedFlags)
	return kept
}

// StripArgs is the complement of FilterArgs: it drops the allowed flags and
// their values and returns everything else in the original order.
func StripArgs(args []string, ownedFlags []string) []string {
	_, rest := split(args, ownedFlags)
	return rest
}

func split(args []string, names []string) (kept, rest []string) {
	owned := make(map[string]struct{}, len(names))
	for _, n := range names {
		owned[normalize(n)] = struct{}{}
	}

	kept = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		if !strings.HasPrefix(arg, "-") {
			rest = append(rest, arg)
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := owned[normalize(name)]; !ok {
			rest = append(rest, arg)
			continue
		}

		kept = append(kept, normalize(name)+strings.TrimPrefix(arg, name))
		if hasValue {
			continue
		}
		// the next argument is the value unless it looks like another flag
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}
	return kept, rest
}

func normalize(name string) string {
	if strings.HasPrefix(name, "--") {
		return name[1:]
	}
	return name
}

// ConfigFileFlag extracts the config file path given with -c or -config.
// Other arguments are ignored. An empty string means no file was requested.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
