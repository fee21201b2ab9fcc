// Command sweep is the scheduled entry point. It asks the server for the
// enabled projects and issues one sweep call per project, sequentially, so
// cron scheduling stays decoupled from the reconciliation logic. Individual
// sweep failures are logged and do not stop the remaining projects.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"epicsync/internal/platform/config"
	"epicsync/internal/platform/logger"
	"epicsync/internal/reconcile"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	client := &http.Client{Timeout: 10 * time.Minute}

	projects, err := listProjects(ctx, client, cfg)
	if err != nil {
		return fmt.Errorf("list enabled projects: %w", err)
	}
	log.Info("starting sweep", "projects", len(projects))

	for _, projectID := range projects {
		summary, err := sweepProject(ctx, client, cfg, projectID)
		if err != nil {
			log.Error("sweep failed", "project_id", projectID, "error", err)
			continue
		}
		log.Info("sweep complete",
			"project_id", projectID,
			"fetched", summary.Fetched,
			"planned", summary.Planned,
			"saved", summary.Saved,
			"failed_batches", summary.FailedBatches,
		)
	}
	return nil
}

func listProjects(ctx context.Context, client *http.Client, cfg config.Config) ([]string, error) {
	var body struct {
		Projects []string `json:"projects"`
	}
	if err := call(ctx, client, cfg, http.MethodGet, "/projects", &body); err != nil {
		return nil, err
	}
	return body.Projects, nil
}

func sweepProject(ctx context.Context, client *http.Client, cfg config.Config, projectID string) (reconcile.Summary, error) {
	var summary reconcile.Summary
	err := call(ctx, client, cfg, http.MethodPost, "/projects/"+projectID+"/sweep", &summary)
	return summary, err
}

func call(ctx context.Context, client *http.Client, cfg config.Config, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, cfg.ServerURL+path, nil)
	if err != nil {
		return err
	}
	if cfg.HookSecret != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.HookSecret)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
