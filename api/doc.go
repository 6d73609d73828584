// Package api exposes the HTTP surface: public theme and site reads, the
// driver dashboard, billing checkout callbacks and the admin panel. Every
// response uses the {success, message, data} envelope, and handlers stay
// thin: decode, call a service, encode.
package api
