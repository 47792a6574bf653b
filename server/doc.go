// Package server provides the HTTP server for the tashkeel API: a Gin
// engine behind an http.ServeMux with HTTP/2 cleartext (h2c) support and
// the standard middleware stack applied at the handler level.
package server
