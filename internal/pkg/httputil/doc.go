// Package httputil implements the JSON envelope every function route answers
// with: payloads via OK/JSON, failures as {"error": message} via the status
// helpers. InternalError logs the underlying error and returns a fixed
// message, so 500 bodies never carry internal detail. Decode is the single
// entry point for reading request bodies.
package httputil
