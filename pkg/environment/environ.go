package environment

import (
	"sort"
	"strings"
)

// FromEnviron parses KEY=VALUE entries as returned by os.Environ. A leading
// '=' belongs to the key. Entries without a separator are skipped and later
// duplicates win.
func FromEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if kv == "" {
			continue
		}
		// Search from the second byte so "=C:=C:\\" keeps its leading '='
		i := strings.IndexByte(kv[1:], '=')
		if i < 0 {
			continue
		}
		i++
		env[kv[:i]] = kv[i+1:]
	}
	return env
}

// ToEnviron renders env as KEY=VALUE entries sorted by key
func ToEnviron(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// Subset returns the entries of env named by keys. Keys missing from env are
// left out.
func Subset(env map[string]string, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := env[k]; ok {
			out[k] = v
		}
	}
	return out
}
