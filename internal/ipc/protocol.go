package ipc

// Command names accepted by the owner session.
const (
	CommandStatus = "status"
	CommandStop   = "stop"
	CommandToggle = "toggle"
	CommandCancel = "cancel"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	Status *Status `json:"status,omitempty"`
}

// Status is the owner snapshot returned for status requests.
type Status struct {
	Busy             bool   `json:"busy"`
	IsRecording      bool   `json:"is_recording"`
	RecordedBytes    int64  `json:"recorded_bytes"`
	SubmissionStatus string `json:"submission_status"`
	StagedName       string `json:"staged_name,omitempty"`
	StagedBytes      int64  `json:"staged_bytes,omitempty"`
	Transcription    string `json:"transcription,omitempty"`
	Translation      string `json:"translation,omitempty"`
	LastNotice       string `json:"last_notice,omitempty"`
}
