package constants

const (
	// ContextKeyUserID is used both as the session key and the gin context key
	// for the authenticated user's ID.
	ContextKeyUserID = "user_id"

	// ContextKeyTask holds the task resolved by the task access middleware.
	ContextKeyTask = "task"

	// ContextKeyRequestID holds the per-request correlation id.
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"

	SessionCookieName = "project_session"
)

const (
	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxAIGeneratedTasks = 20

	// InvitationCodeAlphabet is the canonical alphabet for invitation codes.
	InvitationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// MaxInvitationCodeAttempts bounds retries when a generated code collides
	// with another project's code.
	MaxInvitationCodeAttempts = 5
	// MaxInvitationCodeLength is the width of the invitation_codes.code column.
	MaxInvitationCodeLength = 64
)
