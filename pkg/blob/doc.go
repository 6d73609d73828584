// Package blob stores uploaded site assets (driver logos, theme previews,
// package images, QR codes) on Amazon S3 or an S3-compatible service.
// Uploads are a pure passthrough: bytes in, public URL and storage key out.
package blob
