// Package deps holds the package model and the dependency resolver.
//
// # Model
//
// A [Package] is one catalog project pinned to the first acceptable version
// for a [Loader] and game version, scanning channels in [ChannelPriority]
// order. Its [Dependency] references carry a [Kind]; only [Required] ones
// are followed.
//
// # Resolving
//
// [Resolver.Resolve] walks required dependencies depth-first from a set of
// roots and returns a [Plan]:
//
//	r := deps.NewResolver(catalog, deps.Options{Sink: sink, Logger: logger})
//	plan, err := r.Resolve(ctx, roots, deps.LoaderFabric, "1.20.1")
//
// The walk keeps one visited set for the whole call. Checking and marking a
// project id happen under one lock, so a project reached from two roots at
// once is expanded by exactly one of them. Cycles terminate the same way.
//
// Dependencies without a version for the active loader and game version
// are not errors. They are logged at debug level and listed in Plan.Gaps.
package deps
