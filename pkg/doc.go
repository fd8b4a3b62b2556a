// Package pkg provides the core libraries for craftpacker, a Modrinth mod
// finder, dependency resolver and downloader.
//
// # Overview
//
// A session starts from free-text mod names, pins each one to a file that
// fits the chosen loader and game version, pulls in required dependencies
// and downloads every file once. The pkg directory is organized into:
//
//  1. [match] - Name to project matching (direct, stripped, slug guesses)
//  2. [deps] - Package model, download plan and the dependency resolver
//  3. [download] - Concurrent file fetching with duplicate suppression
//  4. [pipeline] - Orchestration (search → resolve → download)
//  5. [integrations] - Catalog API clients ([integrations/modrinth])
//
// Supporting packages: [cache] for response caching, [ratelimit] for
// request spacing, [progress] for the event stream read by front ends,
// [session] for matches kept between steps, [io] and [render/nodelink]
// for plan export, [source/local] for name lists and mod folders.
//
// # Architecture
//
//	mod names (args, list file, mods folder)
//	         ↓
//	    [match] package (one catalog search per name)
//	         ↓
//	    [session] package (key → pinned package)
//	         ↓
//	    [deps] package (required dependencies → Plan)
//	         ↓
//	    [download] package (files into the destination)
//
// # Quick Start
//
//	client := modrinth.NewClient(modrinth.Options{UserAgent: "me/modpack"})
//	runner := pipeline.NewRunner(client, pipeline.Config{Sink: sink})
//
//	opts := pipeline.Options{Loader: "fabric", GameVersion: "1.20.1"}
//	if _, err := runner.Search(ctx, []string{"Sodium", "Lithium"}, opts); err != nil {
//	    return err
//	}
//	res, err := runner.Download(ctx, nil, opts)
//
// Every step reports through a [progress.Sink]; the CLI renders those
// events as lines, spinners and progress bars.
package pkg
