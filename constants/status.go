package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusOK      JobStatus = "OK"      // finished without warnings
	JobStatusPartial JobStatus = "PARTIAL" // finished, warnings recorded
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// JobKind separates floor-plan take-offs from LV parsing runs.
type JobKind string

const (
	JobKindAreas JobKind = "AREAS"
	JobKindLV    JobKind = "LV"
)
