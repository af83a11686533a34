package chatrequests

// ChatRequest is the body of the send-message endpoints.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ClearRequest is the body of the clear-session endpoint.
type ClearRequest struct {
	SessionID string `json:"session_id"`
}

// HistoryQuery holds the query parameters of the history endpoint.
type HistoryQuery struct {
	SessionID string `form:"session_id"`
	Limit     int    `form:"limit"`
}

// SessionsQuery holds the query parameters of the session listing endpoint.
type SessionsQuery struct {
	Limit int `form:"limit"`
}
