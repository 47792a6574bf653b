// Package component defines lifecycle-managed services: the diacritization
// engine, the result cache and the HTTP server are each a Component.
//
// A Registry starts components in registration order and stops them in
// reverse, so dependencies are registered first.
package component
