// internal/app/system/csvutil/limits.go
package csvutil

import "github.com/dalemusser/foodgestor/internal/app/system/limits"

// Row limit for one menu import. The byte limit lives in limits.
const (
	MaxUploadSize = limits.MaxImportSize
	MaxRows       = 2000
)
