// Package metrics defines the sinks recording optimization metrics. Sinks
// like PromSink and InfluxSink (in infra/metrics) record optimizer runs,
// isolated provider failures and command deliveries; several sinks are
// combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics
