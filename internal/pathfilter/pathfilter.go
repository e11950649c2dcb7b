// Package pathfilter decides which file names may be created in the local
// storage directory.
package pathfilter

import (
	"path/filepath"
	"strings"
)

// Config extends the built-in rules.
type Config struct {
	IgnoredPatterns   []string
	AllowedExtensions []string
}

// PathFilter rejects unsafe or ignored file names.
type PathFilter struct {
	ignoredPatterns   []string
	allowedExtensions []string
}

// New creates a PathFilter. An empty extension list allows every extension.
func New(config *Config) *PathFilter {
	pf := &PathFilter{
		ignoredPatterns: []string{
			".DS_Store",
			"Thumbs.db",
			"desktop.ini",
			"*.tmp",
			"*~",
		},
	}
	if config != nil {
		pf.ignoredPatterns = append(pf.ignoredPatterns, config.IgnoredPatterns...)
		pf.allowedExtensions = append(pf.allowedExtensions, config.AllowedExtensions...)
	}
	return pf
}

// IsAllowed checks a single file name, not a path.
func (pf *PathFilter) IsAllowed(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}

	for _, pattern := range pf.ignoredPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
	}

	if len(pf.allowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range pf.allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
