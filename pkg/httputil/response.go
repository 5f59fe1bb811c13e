// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import "net/http"

// ContentTypeText is the Content-Type of canned responses.
const ContentTypeText = "text/plain; charset=utf-8"

// WriteText writes body verbatim with the given status code.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteNotFound writes a 404 with the plain "404 Not Found" body.
func WriteNotFound(w http.ResponseWriter) {
	WriteText(w, http.StatusNotFound, NotFoundBody)
}

// NotFoundBody is the response body for unknown paths.
const NotFoundBody = "404 Not Found"
