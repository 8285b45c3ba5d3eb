package domain

// Generator action names. The text generator may request these as post-reply
// side effects; anything outside this set fails validation.
const (
	ActionCreateEmbedding   = "create_embedding"
	ActionUpdateProfile     = "update_profile"
	ActionRecordAnswer      = "record_answer"
	ActionCheckAvailability = "check_availability"
	ActionFindMatches       = "find_matches"
)

// GeneratedReply is the structured control data returned by the text
// generator. The generator is an untrusted oracle: every reply is validated
// against these tags before any of it is acted on, and a reply that fails
// validation is a recoverable parse error.
type GeneratedReply struct {
	Message        string         `json:"message" validate:"required"`
	NextState      string         `json:"next_state" validate:"required,oneof=new onboarding gathering_preferences active available_tonight"`
	ContextUpdates map[string]any `json:"context_updates"`
	Actions        []string       `json:"actions" validate:"dive,oneof=create_embedding update_profile record_answer check_availability find_matches"`
}

// Phase returns the validated next state as the typed enum.
func (r *GeneratedReply) Phase() (ConversationPhase, error) {
	return ParsePhase(r.NextState)
}
