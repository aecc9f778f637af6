// Package messaging publishes domain events to a message broker.
//
// Business code depends on Publisher only. The broker is chosen at wiring
// time with NewFromDriver: NATS, NSQ, Kafka, Google Pub/Sub, or a noop
// driver for deployments (and tests) that do not emit events.
package messaging
