package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	recipeKey contextKey = "recipe"
)

// WithRunID annotates context with the engine run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the engine run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRecipe annotates context with the recipe name being processed.
func WithRecipe(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, recipeKey, name)
}

// RecipeFromContext returns the recipe name if present.
func RecipeFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(recipeKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
