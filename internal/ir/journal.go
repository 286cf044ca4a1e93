package ir

// Session is one transport connection served against a command table.
// Seq is the logical clock value when the session opened.
type Session struct {
	ID            string `json:"id"`
	TableName     string `json:"table_name"`
	TableHash     string `json:"table_hash"`
	Transport     string `json:"transport"`
	Seq           int64  `json:"seq"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Exchange is the journal record of one completed request/response cycle.
type Exchange struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Command   string `json:"command,omitempty"`
	Op        string `json:"op"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason"`
}
