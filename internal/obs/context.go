package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern stores the matched route template in the context so the
// metrics, tracing and logging middlewares agree on one label value.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the stored route template, if any.
func RoutePatternFromContext(ctx context.Context) string {
	pattern, _ := ctx.Value(routePatternKey{}).(string)
	return pattern
}
