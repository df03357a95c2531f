// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody caps every JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxBulkIDs caps the contact ids accepted by one bulk assign/unassign.
	MaxBulkIDs = 1000

	// MaxCallNotes caps the notes on one call log, in bytes.
	MaxCallNotes = 4000
)
