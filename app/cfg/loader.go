package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	DBPath string `long:"db-path" env:"DB_PATH" default:"./db/database.sqlite" description:"Path to the SQLite database file"`

	FeedsFile      string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file listing the feeds to ingest"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"News Hub/1.0" description:"User agent string for feed requests"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Default per-feed fetch timeout in seconds"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of feeds processed in parallel"`
	IngestSchedule string `long:"ingest-schedule" env:"INGEST_SCHEDULE" description:"Cron spec for periodic ingestion in serve mode (e.g. '@every 15m')"`

	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key enabling POST /api/ingest (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"serve (default), ingest, list or seed"`
	} `positional-args:"yes"`
}

// Load parses flags and environment. It returns nil, nil when help was printed.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command, err := parseCommand(raw.Args.Command)
	if err != nil {
		return nil, err
	}

	if raw.FetchTimeout <= 0 {
		return nil, fmt.Errorf("fetch timeout must be positive, got %d", raw.FetchTimeout)
	}
	if raw.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}

	return &Cfg{
		Command:        command,
		DBPath:         raw.DBPath,
		FeedsFile:      raw.FeedsFile,
		UserAgent:      raw.UserAgent,
		FetchTimeout:   time.Duration(raw.FetchTimeout) * time.Second,
		WorkerCount:    raw.WorkerCount,
		IngestSchedule: raw.IngestSchedule,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}, nil
}

func parseCommand(value string) (Command, error) {
	switch Command(value) {
	case "", CommandServe:
		return CommandServe, nil
	case CommandIngest, CommandList, CommandSeed:
		return Command(value), nil
	default:
		return "", fmt.Errorf("unknown command %q", value)
	}
}
