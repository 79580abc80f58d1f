package util

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// SliceToMap parses key=value pairs.
func SliceToMap(slice []string) (map[string]string, error) {
	if bad, found := lo.Find(slice, func(s string) bool { return !strings.Contains(s, "=") }); found {
		return nil, errors.Errorf("expected key=value, got %q", bad)
	}
	return lo.SliceToMap(slice, func(s string) (string, string) {
		parts := strings.SplitN(s, "=", 2)
		return strings.TrimSpace(parts[0]), parts[1]
	}), nil
}
