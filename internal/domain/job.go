package domain

import "time"

// JobState is one of the Job lifecycle states. Transitions are monotonic
// except for the retry transition failed -> queued driven by backoff.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobActive    JobState = "active"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// IndexRepoJobData is the durable queue payload for the "index-repo" queue.
type IndexRepoJobData struct {
	GitHubURL   string
	GitHubToken string
	RequestedBy string
}

// IndexRepoJobResult is what a successful job run returns.
type IndexRepoJobResult struct {
	RepoID          string        `json:"repoId"`
	Strategy        WriteStrategy `json:"strategy"`
	ChunksWritten   int           `json:"chunksWritten"`
	TotalDurationMs int64         `json:"totalDurationMs"`
}

// Job is the caller-visible projection of one queued unit of indexing work.
type Job struct {
	ID         string
	Data       IndexRepoJobData
	State      JobState
	Progress   int
	Attempts   int
	Result     *IndexRepoJobResult
	FailReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
