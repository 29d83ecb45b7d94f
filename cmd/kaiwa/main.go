// Package main is the kaiwa CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/archive"
	"github.com/hyperjump/kaiwa/internal/cli"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/corpus"
	"github.com/hyperjump/kaiwa/internal/ingest"
	"github.com/hyperjump/kaiwa/internal/insights"
	"github.com/hyperjump/kaiwa/internal/report"
	"github.com/hyperjump/kaiwa/internal/server"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/thread"
	"github.com/hyperjump/kaiwa/internal/watcher"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kaiwa/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kaiwa serve" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "import":
		runImport()
	case "analyze":
		runAnalyze()
	case "search":
		runSearch()
	case "serve":
		runServe()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kaiwa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	csvTraining := fs.Bool("csv", false, "write training pairs as CSV instead of JSONL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa import [flags] <conversations.json>")
		os.Exit(1)
	}
	exportPath := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	reconstructor := thread.NewReconstructor(cfg.Names.User, cfg.Names.Assistant, cfg.Names.System)
	pipelineOpts := []ingest.PipelineOption{
		ingest.WithStore(components.Store),
		ingest.WithSearchIndex(components.Index),
		ingest.WithLogger(logger),
	}
	if *csvTraining {
		pipelineOpts = append(pipelineOpts, ingest.WithCSVTraining())
	}
	pipeline := ingest.NewPipeline(
		cfg.Storage.DataDir,
		reconstructor,
		cfg.Names.User,
		cfg.Names.Assistant,
		cfg.Analysis.MinInstructionLength,
		pipelineOpts...,
	)

	summary, err := pipeline.Run(context.Background(), exportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d conversations (%d skipped)\n", summary.Imported, summary.Skipped)
	fmt.Printf("Training pairs: %d -> %s\n", summary.TrainingPairs, summary.TrainingPath)
	fmt.Printf("Titles index:   %d entries -> %s\n", summary.IndexEntries, summary.IndexPath)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	writeVault := fs.Bool("vault", false, "write the Obsidian vault notes")
	writeXLSX := fs.Bool("xlsx", false, "write the XLSX stats workbook")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	indexPath := filepath.Join(cfg.Storage.DataDir, corpus.IndexFilename)
	engine := insights.NewEngine(indexPath, cfg, logger)
	result, err := engine.Analyze(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *writeVault {
		writer := report.NewWriter(cfg.Storage.VaultDir, logger)
		if err := writer.WriteAll(result); err != nil {
			fmt.Fprintf(os.Stderr, "Vault write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Vault written to %s\n", cfg.Storage.VaultDir)
	}
	if *writeXLSX {
		path := filepath.Join(cfg.Storage.VaultDir, "concept_stats.xlsx")
		if err := report.WriteWorkbook(path, result); err != nil {
			fmt.Fprintf(os.Stderr, "Workbook write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Workbook written to %s\n", path)
	}

	if err := cli.WriteAnalysisReport(os.Stdout, result.Report(), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseOutputFormat(s string) (cli.OutputFormat, bool) {
	switch s {
	case "json":
		return cli.OutputJSON, true
	case "text":
		return cli.OutputText, true
	default:
		return cli.OutputText, false
	}
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = open the index directly when the server is not running)")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa search [flags] <query>")
		os.Exit(1)
	}
	query := buildSearchQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: kaiwa search [flags] <query>")
		os.Exit(1)
	}

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var results []*archive.Result
	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids a Bleve lock
		// conflict with the serve process).
		var err error
		results, err = searchViaHTTP(*serverURL, query, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		idx, err := archive.NewIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open search index: %v\n", err)
			os.Exit(1)
		}
		defer idx.Close()
		results, err = idx.Search(context.Background(), query, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteSearchResults(os.Stdout, query, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, limit int) ([]*archive.Result, error) {
	body, err := json.Marshal(map[string]interface{}{"query": query, "limit": limit})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Results []*archive.Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (watch events, per-conversation diagnostics)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	idx := components.Index
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Storage.DataDir,
		func(path string) {
			if err := idx.IndexFile(context.Background(), path); err != nil {
				logger.Warn("watch index transcript failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := idx.Delete(context.Background(), filepath.Base(path)); err != nil {
				logger.Warn("watch delete transcript failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	indexPath := filepath.Join(cfg.Storage.DataDir, corpus.IndexFilename)
	engine := insights.NewEngine(indexPath, cfg, logger)
	srv := server.NewServer(engine, components.Index, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Conversations      int64                  `json:"conversations"`
	Messages           int64                  `json:"messages"`
	IndexedTranscripts uint64                 `json:"indexed_transcripts"`
	Config             map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = open storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		components, err := initializeComponents(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		ctx := context.Background()
		convCount, err := components.Store.CountConversations(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count conversations failed: %v\n", err)
			os.Exit(1)
		}
		msgCount, err := components.Store.CountMessages(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count messages failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Conversations: convCount,
			Messages:      msgCount,
			Config: map[string]interface{}{
				"data_dir":      cfg.Storage.DataDir,
				"database_path": cfg.Storage.DatabasePath,
				"vault_dir":     cfg.Storage.VaultDir,
				"concepts":      len(cfg.Concepts),
			},
		}
		if indexed, err := components.Index.DocCount(); err == nil {
			status.IndexedTranscripts = indexed
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("conversations:        %d\n", status.Conversations)
		fmt.Printf("messages:             %d\n", status.Messages)
		fmt.Printf("indexed_transcripts:  %d\n", status.IndexedTranscripts)
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"data_dir", "database_path", "vault_dir", "concepts"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-14s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Store storage.Store
	Index *archive.Index
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

func initializeComponents(cfg *config.Config) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	idx, err := archive.NewIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}
	return &Components{Store: store, Index: idx}, nil
}

func printUsage() {
	fmt.Println(`kaiwa - AI chat archive insights

Usage:
  kaiwa import [flags] <export>    Import a conversations.json export
  kaiwa analyze [flags]            Run concept analysis over the archive
  kaiwa search [flags] <query>     Search transcripts
  kaiwa serve [flags]              Start the HTTP server
  kaiwa status [flags]             Show archive/storage/index status
  kaiwa version                    Show version
  kaiwa help                       Show this help

Import Flags:
  --config string    Config file path (default: /usr/local/etc/kaiwa/config.yaml)
  --csv              Write training pairs as CSV instead of JSONL
  --debug            Enable debug logging

Analyze Flags:
  --config string    Config file path
  --vault            Write the Obsidian vault notes
  --xlsx             Write the XLSX stats workbook
  --output string    Output format: text or json (default: text)

Search Flags:
  --config string    Config file path (for direct index mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to open the index directly.
  --limit int        Number of results (default: 10)
  --output string    Output format: text or json (default: text)

Serve Flags:
  --config string    Config file path
  --debug            Enable debug logging (watch events, per-conversation diagnostics)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  kaiwa import ~/Downloads/conversations.json
  kaiwa analyze --vault --xlsx
  kaiwa search "ant colony optimization"
  kaiwa search --output json quantum     # structured JSON for other apps
  kaiwa serve
  kaiwa status --output json`)
}
