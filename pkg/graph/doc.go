// Package graph builds package dependency graphs by breadth-first traversal.
//
// # Traversal
//
// [Build] starts at a root package and walks its dependencies level by level
// through a [source.Source]:
//
//	src, _ := source.Open(ctx, "repo.txt", source.ModeTest, source.Options{})
//	g, err := graph.Build(ctx, graph.RunContext{Source: src, MaxDepth: 3}, "A")
//
// Each package is recorded once, at the depth it is first discovered.
// Packages deeper than MaxDepth are not recorded; the root is always recorded
// at depth 0. The nodes of one level are fetched concurrently (bounded by
// RunContext.Concurrency) but recorded in discovery order, so the result is
// identical to a sequential FIFO traversal.
//
// # Failures
//
// A failure for one package never aborts the traversal:
//
//   - an unknown package is left out of the graph
//   - a fetch or archive failure records the package with no dependencies
//
// Both cases add a [Diagnostic], so a missing subtree can be told apart from
// a package that genuinely has no dependencies. Only invalid arguments and
// cancellation of the context fail [Build].
//
// # Keys
//
// Graph keys and the visited set use short names ([apk.CanonicalName]): a
// package reached as "busybox" and as "busybox-1.36.1-r29.apk" is the same
// node.
//
// [source.Source]: github.com/Dima09182/depviz/pkg/source.Source
// [apk.CanonicalName]: github.com/Dima09182/depviz/pkg/apk.CanonicalName
package graph
