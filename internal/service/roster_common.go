package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

// rosterInvalidator drops derived roster caches after a mutation.
type rosterInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

// cleanList trims entries, drops blanks and removes duplicates keeping first occurrence.
func cleanList(values []string) []string {
	trimmed := lo.Map(values, func(v string, _ int) string { return strings.TrimSpace(v) })
	return lo.Uniq(lo.Compact(trimmed))
}
