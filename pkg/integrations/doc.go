// Package integrations provides the shared HTTP plumbing for catalog API
// clients.
//
// # Overview
//
// The catalog client lives in a subpackage:
//
//   - [modrinth]: Modrinth API v2 (search, projects, versions)
//
// # Client Pattern
//
// [Client] wraps an [http.Client] with the concerns every catalog call
// shares:
//
//   - a process-wide [ratelimit.Limiter] awaited before each request
//   - default headers (User-Agent)
//   - status mapping to [ErrNotFound] and [ErrNetwork]
//   - retry of transient failures via [cache.Backoff]
//   - response caching through any [cache.Cache] backend
//
// A typical lookup:
//
//	var p project
//	err := c.Cached(ctx, cache.Key("project", id), false, &p, func() error {
//	    return c.Get(ctx, baseURL+"/project/"+id, &p)
//	})
//
// [modrinth]: github.com/helloworldx64/craftpacker/pkg/integrations/modrinth
// [ratelimit.Limiter]: github.com/helloworldx64/craftpacker/pkg/ratelimit.Limiter
// [cache.Backoff]: github.com/helloworldx64/craftpacker/pkg/cache.Backoff
// [cache.Cache]: github.com/helloworldx64/craftpacker/pkg/cache.Cache
package integrations
