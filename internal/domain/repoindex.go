package domain

import "time"

// RepoMeta describes a repository as reported by the fetcher, before any
// chunk is written. Zero value for CommitHash means the head commit could
// not be determined.
type RepoMeta struct {
	Owner             string
	Repo              string
	DefaultBranch     string
	SizeKB            int
	FileCount         int
	UsedCloneFallback bool
	CommitHash        string
}

// RepoID is "{owner}/{repo}", the store's primary key for an indexed corpus.
func (m RepoMeta) RepoID() string {
	return m.Owner + "/" + m.Repo
}

// RepoIndex is the one-per-repository bookkeeping row. A present CommitHash
// means every stored chunk for this repo was embedded from that commit.
type RepoIndex struct {
	RepoID         string
	CommitHash     string // empty when unknown
	DefaultBranch  string
	SizeKB         int
	FileCount      int
	ChunkCount     int
	EmbeddingModel string
	UpdatedAt      time.Time
}

// StoredChunk is the persisted form of an EmbeddedChunk, scoped to one
// repository by RepoID. The schema declares no foreign key from code_chunks
// to repo_index, so deleting a RepoIndex row does not remove its chunks.
type StoredChunk struct {
	EmbeddedChunk
	RepoID string
}

// WriteStrategy names which of the three C5 persistence strategies ran.
type WriteStrategy string

const (
	WriteSkipped     WriteStrategy = "skipped"
	WriteFullReindex WriteStrategy = "full-reindex"
	WriteUpsert      WriteStrategy = "upsert"
)

// WriteResult reports what a vector-store write actually did.
type WriteResult struct {
	Strategy      WriteStrategy
	ChunksWritten int
	ChunksDeleted int
	DurationMs    int64
}
