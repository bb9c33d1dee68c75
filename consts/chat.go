package consts

// Persona ids
const (
	PersonaGeneric = "generic"
	PersonaTwin    = "twin"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	// CloseKeyword ends the conversation when submitted on its own.
	CloseKeyword = "done"

	// FailureMarker prefixes every response produced by a failed collaborator call.
	FailureMarker = "❌ Agent failed:"
)
