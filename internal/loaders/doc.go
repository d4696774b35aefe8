// Package loaders turns raw dataset files into documents. Each source type
// has exactly one loader; the Registry dispatches on RawDocument.Type.
//
// Loaders are registered with the Registry at startup via RegisterDefaults.
package loaders
