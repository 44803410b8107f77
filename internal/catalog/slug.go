package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// uniqueSlug derives a slug from name and disambiguates collisions with a
// numeric suffix: base, base-2, base-3, ...
func uniqueSlug(ctx context.Context, r slugChecker, name string, excludeID int64) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 1; ; i++ {
		taken, err := r.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i+1)
	}
}
