// Package httputil provides shared HTTP response/request helpers for the API
// handlers, so every endpoint writes the same JSON envelope and error shape.
package httputil
