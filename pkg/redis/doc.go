// Package redis wraps the go-redis client with retrying connection setup
// and a health check helper. The theme catalog uses it as a read-through
// cache in front of the document store.
package redis
