package constants

// Context keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Attachment limits
const (
	MaxDocumentsPerTask = 3
	PDFMimeType         = "application/pdf"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// Field length limits
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)
