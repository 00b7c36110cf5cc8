package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Conversation() ConversationRepository
	Message() MessageRepository
	Brief() BriefRepository

	Close() error
}
