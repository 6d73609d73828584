// Package slug creates URL-safe slugs for driver site addresses.
package slug
