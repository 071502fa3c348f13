package constants

// Realtime event names broadcast after a committed mutation.
const (
	EventPropertyCreated = "propertyCreated"
	EventPropertyUpdated = "propertyUpdated"
	EventPropertyDeleted = "propertyDeleted"

	EventAgentCreated = "agentCreated"
	EventAgentUpdated = "agentUpdated"
	EventAgentDeleted = "agentDeleted"

	EventBlogPostCreated = "blogPostCreated"
	EventBlogPostUpdated = "blogPostUpdated"
	EventBlogPostDeleted = "blogPostDeleted"

	EventUserCreated = "userCreated"
	EventUserUpdated = "userUpdated"
	EventUserDeleted = "userDeleted"
)
