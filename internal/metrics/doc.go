// Package metrics records build observations behind a small Recorder interface.
//
// Components hold a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a PrometheusRecorder is injected. The CLI only injects one
// when a textfile destination is configured; the registry is then written in
// the node_exporter textfile format after every build.
package metrics
