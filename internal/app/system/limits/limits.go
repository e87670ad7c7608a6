// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody caps every JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxImportSize caps a menu CSV upload, multipart overhead included.
	MaxImportSize = 2 << 20 // 2 MB
)
