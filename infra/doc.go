// Package infra holds the adapters behind the core interfaces: the zerolog
// logger, the Prometheus and InfluxDB sinks and the MQTT state publisher.
// Core packages never import infra.
package infra
