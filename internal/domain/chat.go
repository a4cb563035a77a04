package domain

// ChatMessage is the provider-agnostic chat message shape sent to the
// completion service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles understood by the completion service.
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// RoleOf classifies a stored turn for prompt assembly. Turns authored by the
// bot's own account render as assistant; everything else is user input.
func RoleOf(t Turn, botID string) string {
	if t.UserID == botID {
		return RoleAssistant
	}
	return RoleUser
}
