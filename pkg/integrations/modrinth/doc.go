// Package modrinth provides a client for the Modrinth API v2.
//
// # Overview
//
// The client covers the four endpoints craftpacker needs:
//
//   - GET /search: ranked project ids for free text
//   - GET /project/{id|slug}: title, slug and canonical id
//   - GET /project/{id}/version: versions filtered by loader and game version
//   - GET /version/{id}: completes dependencies that only name a version
//
// # Usage
//
//	c := modrinth.NewClient(modrinth.Options{
//	    Limiter: ratelimit.New(ratelimit.DefaultCallsPerMinute),
//	    Cache:   cache.NewMemoryCache(),
//	})
//	for _, id := range c.Search(ctx, "Sodium", modrinth.ProjectTypeMod) {
//	    if pkg, ok := c.ResolveProject(ctx, id, deps.LoaderFabric, "1.20.1"); ok {
//	        fmt.Println(pkg.Name, pkg.Channel, pkg.Filename)
//	        break
//	    }
//	}
//
// # Failure Model
//
// Lookups never return errors. A missing project, a project without a
// version for the requested loader and game version, and transport
// failures all read as "no result". The underlying error is logged at
// debug level. Transient failures (network errors, 429, 5xx) are retried
// first, waiting on the shared rate limiter before each attempt.
//
// [Client] implements [deps.Fetcher].
package modrinth
