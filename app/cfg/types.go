package cfg

type Cfg struct {
	// Notification configuration
	WebhookURL    string
	MentionRoleID string

	// Scheduling configuration
	CheckInterval int // hours

	// Storage configuration
	StatePath string
	DBPath    string

	// Source configuration
	SourcesFile string
	Locale      string
	Country     string

	// Application configuration
	Port      string
	UserAgent string
	Timeout   int // seconds
	Debug     bool
	Version   string
}
