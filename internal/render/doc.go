// Package render evaluates page templates into the output tree.
//
// An Engine renders the templates of one build for exactly one locale. Each
// output path is written at most once per engine: Render returns the memoized
// path on repeated requests, which is what lets templates call autolink on
// directories whose pages are themselves still waiting to be rendered. The
// resolver behind autolink calls back into the same engine, so rendering is
// demand-driven and mutually recursive on a single goroutine.
//
// A page that is re-entered while its own render is still in progress is a
// cycle. The engine's CyclePolicy decides whether that aborts the build or
// yields a link without metadata.
package render
