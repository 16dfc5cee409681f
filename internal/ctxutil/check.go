// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"

	"golang.org/x/text/language"
)

// Canceled checks if the context has been canceled or exceeded its deadline.
// Returns the context error if done (Canceled or DeadlineExceeded), nil otherwise.
// Runners call it between steps and scenarios.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

type localeKey struct{}

type scenarioKey struct{}

// WithLocale returns a context carrying the locale the current step's
// arguments were converted with.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// Locale returns the locale stored by WithLocale, or language.Und.
func Locale(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return tag
	}
	return language.Und
}

// WithScenario returns a context carrying the running scenario's name.
func WithScenario(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, scenarioKey{}, name)
}

// Scenario returns the scenario name stored by WithScenario, or "".
func Scenario(ctx context.Context) string {
	name, _ := ctx.Value(scenarioKey{}).(string)
	return name
}
