package constants

// JobStatus labels the stage a document has reached in the analysis
// pipeline. Emitted in log events and usable as a stored status by callers
// that track jobs.
type JobStatus string

// Stable values; do not rename.
const (
	JobStatusQueued   JobStatus = "QUEUED"   // queued for processing
	JobStatusRunning  JobStatus = "RUNNING"  // in progress
	JobStatusDetected JobStatus = "DETECTED" // stage 1 completed (document classified as EOB)
	JobStatusAnalyzed JobStatus = "ANALYZED" // stage 2 completed (claim extracted and analyzed)
	JobStatusRejected JobStatus = "REJECTED" // detector gate declined the document
	JobStatusFailed   JobStatus = "FAILED"   // terminal failure
)
