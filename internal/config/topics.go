package config

const (
	// TopicIngestTask is the NSQ topic for document re-ingestion tasks.
	TopicIngestTask = "ingest.task"

	// TopicDocumentIngested is the NSQ topic for completed ingestion events.
	TopicDocumentIngested = "document.ingested"
)
