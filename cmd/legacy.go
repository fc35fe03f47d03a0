package cmd

import (
	"slices"
	"strings"
)

// legacyOptions maps the slash-style switches of the original tool to flags.
var legacyOptions = map[string]string{
	"/delete": "--delete",
	"/minage": "--min-age",
	"/maxage": "--max-age",
	"/smtp":   "--smtp",
	"/email":  "--email",
	"/dryrun": "--dry-run",
	"/?":      "--help",
	"/h":      "--help",
	"/help":   "--help",
}

// valueFlags take the following argument as their value.
var valueFlags = map[string]bool{
	"--min-age":     true,
	"--max-age":     true,
	"--smtp":        true,
	"--email":       true,
	"--concurrency": true,
	"--timeout":     true,
	"--container":   true,
	"-c":            true,
	"--provider":    true,
	"-p":            true,
}

// TranslateLegacyArgs rewrites slash-style switches (case-insensitive) into
// their flag equivalents and, when the first positional argument is not a
// known command, inserts "fetch" so the original form keeps working with the
// options on either side of the positionals:
//
//	azlogfetch D:\logs myaccount KEY== /delete /minage 1h
//	azlogfetch /delete D:\logs myaccount KEY==
func TranslateLegacyArgs(args []string, commands []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, arg := range args {
		if flag, ok := legacyOptions[strings.ToLower(arg)]; ok {
			out = append(out, flag)
			continue
		}
		out = append(out, arg)
	}

	first, ok := firstPositional(out)
	if !ok || slices.Contains(commands, first) {
		return out
	}
	return append([]string{"fetch"}, out...)
}

// firstPositional returns the first argument that is neither a flag nor the
// value of one.
func firstPositional(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if i+1 < len(args) {
				return args[i+1], true
			}
			return "", false
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			if valueFlags[arg] {
				i++
			}
		default:
			return arg, true
		}
	}
	return "", false
}
