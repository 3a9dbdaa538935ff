package ports

// Repository is the full storage surface
type Repository interface {
	ActivityRepository
	AgentRepository
	AutomationRepository
	DocumentRepository
	EpicRepository
	GuestRepository
	ProfileRepository
	ProjectRepository
	PromptRepository
	RecordRepository
	ReviewRepository
	StatusRepository
	TagRepository
	Close() error
	SchemaVersion() (int64, error)
}
