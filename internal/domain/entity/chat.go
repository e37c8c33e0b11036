package entity

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of a conversation.
type ChatTurn struct {
	Role    string `json:"role" db:"role"`
	Content string `json:"content" db:"content"`
}

// ChatContext is the company context accompanying a chat message upstream.
type ChatContext struct {
	Companies      []ScoredCompany `json:"companies"`
	TotalCompanies int             `json:"total_companies"`
}

// ChatResult is the AI answer to one message. Companies is nil when the
// AI called no data functions, the UI renders cards only when it is set.
type ChatResult struct {
	Response      string          `json:"response"`
	FunctionCalls []string        `json:"function_calls"`
	Companies     []ScoredCompany `json:"data"`
}

// Insights is the quick-insights block on the Columbus page.
type Insights struct {
	TopProspects []ScoredCompany `json:"top_prospects"`
	NewCompanies []ScoredCompany `json:"new_companies"`
	MostActive   []ScoredCompany `json:"most_active"`
}
