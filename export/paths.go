package export

import (
	"fmt"
	"strings"
)

// EntryPath returns the archive entry for slug under dir.
func EntryPath(dir, slug string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		return "", NewError(KindValidation, "template slug is required", nil)
	}
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return "", NewError(KindValidation, fmt.Sprintf("invalid template slug %q", slug), nil)
	}
	return strings.TrimSuffix(dir, "/") + "/" + slug + ".html", nil
}
