package config

const (
	// MaxPresentationTitleLength is the maximum length for presentation titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxPresentationTitleLength = 255

	// MaxPresentationDescriptionLength is the maximum length for
	// presentation descriptions.
	MaxPresentationDescriptionLength = 2000

	// MaxLinkPasswordLength is the maximum accepted share-link password
	// length. bcrypt only hashes the first 72 bytes of input, so longer
	// passwords would be silently truncated.
	MaxLinkPasswordLength = 72

	// DefaultBcryptCost is the bcrypt cost factor for share-link passwords.
	// Matches the cost the web client has always used.
	DefaultBcryptCost = 12

	// DefaultTokenBytes is the number of random bytes per share-link token.
	// 32 bytes encodes to a 43-character URL-safe string.
	DefaultTokenBytes = 32

	// DefaultNotifyQueueSize bounds the notification dispatcher queue.
	DefaultNotifyQueueSize = 256

	// DefaultPageSize is the page size for presentation listings.
	DefaultPageSize = 10

	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 100
)
