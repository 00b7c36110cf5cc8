package usecase

// BuildChatSystemPrompt is exported for testing
var BuildChatSystemPrompt = (*ChatUseCase).buildSystemPrompt

// DefaultPersona is exported for testing
const DefaultPersona = defaultPersona
