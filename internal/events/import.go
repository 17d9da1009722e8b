package events

// Entity types.
const (
	EntityImport = "import"
	EntityHuman  = "human"
)

// Event types.
const (
	EventImportCreated   = "import.created"
	EventImportProgress  = "import.progress"
	EventImportCompleted = "import.completed"
	EventImportFailed    = "import.failed"
	EventHistoryCleared  = "import.history_cleared"
	EventHumanCreated    = "human.created"
)

// Progress is the progress snapshot carried by import events.
type Progress struct {
	ImportID     int64  `json:"importId"`
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	Processed    int    `json:"processedRecords"`
	Total        int    `json:"totalRecords"`
	Success      int    `json:"successfulRecords"`
	Failed       int    `json:"failedRecords"`
	Percent      int    `json:"progress"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ImportCreated is emitted when a job is accepted.
type ImportCreated struct {
	BaseEvent
	ImportID int64  `json:"importId"`
	FileName string `json:"fileName"`
	Format   string `json:"format"`
	Owner    string `json:"userName"`
}

// ImportProgressed is emitted after each processed record.
type ImportProgressed struct {
	BaseEvent
	Progress
}

// ImportCompleted is emitted when a job reaches COMPLETED.
type ImportCompleted struct {
	BaseEvent
	Progress
}

// ImportFailed is emitted when a job reaches FAILED.
type ImportFailed struct {
	BaseEvent
	Progress
}

// HistoryCleared is emitted when an administrator wipes the job history.
type HistoryCleared struct {
	BaseEvent
	ClearedBy string `json:"clearedBy"`
	Count     int64  `json:"count"`
}

// HumanCreated is emitted for every record persisted by an import.
type HumanCreated struct {
	BaseEvent
	HumanID  int64  `json:"humanId"`
	Name     string `json:"name"`
	ImportID int64  `json:"importId"`
}

// NewImportProgressed builds a progress tick for p.
func NewImportProgressed(p Progress) *ImportProgressed {
	return &ImportProgressed{BaseEvent: NewBaseEvent(EventImportProgress, EntityImport, p.ImportID), Progress: p}
}

// NewImportCompleted builds the completion event for p.
func NewImportCompleted(p Progress) *ImportCompleted {
	return &ImportCompleted{BaseEvent: NewBaseEvent(EventImportCompleted, EntityImport, p.ImportID), Progress: p}
}

// NewImportFailed builds the failure event for p.
func NewImportFailed(p Progress) *ImportFailed {
	return &ImportFailed{BaseEvent: NewBaseEvent(EventImportFailed, EntityImport, p.ImportID), Progress: p}
}
