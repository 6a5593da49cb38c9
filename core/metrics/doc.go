// Package metrics defines the sinks that record the state of an
// infrastructure while it is simulated. Sinks like PromSink and InfluxSink
// (see infra/metrics) record connection point bounds, applied charges and
// transformer load, and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
