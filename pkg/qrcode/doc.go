// Package qrcode generates QR code images for published driver sites,
// either as raw PNG bytes for blob storage or as base64 data URLs for
// direct embedding.
package qrcode
