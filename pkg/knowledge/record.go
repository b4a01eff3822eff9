// Package knowledge provides keyword search over the hosted talk catalog.
//
// The catalog lives in a Supabase table and is read-only from this process.
// Search is a lightweight full-text substitute: free text is tokenized and
// matched case-insensitively against the title and description columns.
package knowledge

// Record is one row of the talk catalog.
// Records are owned by the hosted store and never mutated here.
type Record struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
