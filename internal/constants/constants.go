// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Upload constants
const (
	// MaxUploadSize caps multipart image uploads and JSON project bodies
	MaxUploadSize = 32 << 20
)

// Server constants
const (
	// RequestTimeout bounds a single API request, exports included
	RequestTimeout = 5 * time.Minute

	// ReadTimeout bounds reading a request, including upload bodies
	ReadTimeout = 30 * time.Second

	// IdleTimeout closes idle keep-alive connections
	IdleTimeout = 60 * time.Second

	// ShutdownTimeout is how long in-flight requests get on shutdown
	ShutdownTimeout = 30 * time.Second
)

// Description constants
const (
	// DescribeImageSize is the longest image edge sent to a vision model
	DescribeImageSize = 800

	// DescribeMaxRetries bounds the JSON repair round trips per photo
	DescribeMaxRetries = 5

	// DescribeMaxTokens caps the model answer length
	DescribeMaxTokens = 300
)
