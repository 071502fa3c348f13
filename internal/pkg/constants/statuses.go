package constants

// User account statuses.
const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
	UserPending   = "pending"
)

var ValidUserStatuses = []string{UserActive, UserInactive, UserSuspended, UserPending}

func IsValidUserStatus(s string) bool {
	return contains(ValidUserStatuses, s)
}

// Agent moderation statuses.
const (
	AgentPending  = "pending"
	AgentApproved = "approved"
	AgentRejected = "rejected"
)

// Property listing statuses.
const (
	PropertyPending   = "pending"
	PropertyAvailable = "available"
	PropertyRejected  = "rejected"
	PropertySold      = "sold"
	PropertyRented    = "rented"
)

var ValidPropertyStatuses = []string{PropertyPending, PropertyAvailable, PropertyRejected, PropertySold, PropertyRented}

func IsValidPropertyStatus(s string) bool {
	return contains(ValidPropertyStatuses, s)
}

// Blog post statuses.
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
	BlogArchived  = "archived"
)

var ValidBlogStatuses = []string{BlogDraft, BlogPublished, BlogArchived}

func IsValidBlogStatus(s string) bool {
	return contains(ValidBlogStatuses, s)
}

// User activity actions.
var ValidActivityActions = []string{"view", "save", "share", "inquiry", "contact"}

func IsValidActivityAction(s string) bool {
	return contains(ValidActivityActions, s)
}

// Saved-search alert frequencies.
var ValidAlertFrequencies = []string{"instant", "daily", "weekly"}

func IsValidAlertFrequency(s string) bool {
	return contains(ValidAlertFrequencies, s)
}
