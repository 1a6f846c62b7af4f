package cfg

import "time"

type Command string

const (
	CommandServe  Command = "serve"
	CommandIngest Command = "ingest"
	CommandList   Command = "list"
	CommandSeed   Command = "seed"
)

type Cfg struct {
	Command Command

	// Storage
	DBPath string

	// Ingestion
	FeedsFile      string
	UserAgent      string
	FetchTimeout   time.Duration
	WorkerCount    int
	IngestSchedule string

	// HTTP
	Port         string
	APIAccessKey string

	Debug   bool
	Version string
}
