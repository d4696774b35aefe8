// Package connectors holds implementations of driven.DocumentSource.
// Each connector knows how to enumerate and watch documents from one kind
// of location. The filesystem connector serves the dataset directory.
package connectors
