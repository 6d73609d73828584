// Package mongo provides MongoDB connection management for the site builder
// backend: environment-driven configuration, connection retry on startup,
// pooled defaults that suit a small multi-tenant workload, and a health
// check helper for orchestration probes.
package mongo
