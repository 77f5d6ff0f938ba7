package config

import (
	"strconv"
	"strings"
)

var tripleFlags = map[string]bool{
	"--scale":  true,
	"--offset": true,
}

// NormalizeArgs rewrites space separated triples such as
// "--offset -10 auto 5" into "--offset=-10,auto,5" so pflag reads them as a
// single slice value. Up to three following values are consumed; a short
// triple is left for validation to reject.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !tripleFlags[arg] {
			out = append(out, arg)
			continue
		}

		var values []string
		for j := i + 1; j < len(args) && len(values) < 3 && isTripleValue(args[j]); j++ {
			values = append(values, args[j])
		}
		if len(values) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, arg+"="+strings.Join(values, ","))
		i += len(values)
	}
	return out
}

func isTripleValue(s string) bool {
	if strings.EqualFold(s, "auto") {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
