package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trainset/internal/config"
	"trainset/internal/domain"
	"trainset/internal/dropzone"
	"trainset/internal/logger"
	mcpserver "trainset/internal/mcp"
)

// fileReader reads local paths for add_files when no drop zone is running.
type fileReader struct {
	maxBytes int64
	log      logger.Logger
}

func (r fileReader) Ingest(paths []string) []domain.VirtualFile {
	files := make([]domain.VirtualFile, 0, len(paths))
	for _, p := range paths {
		f, err := dropzone.Read(p, r.maxBytes)
		if err != nil {
			r.log.Warn("skipping file", logger.String("path", p), logger.Error(err))
			continue
		}
		if f != nil {
			files = append(files, *f)
		}
	}
	return files
}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// stdout carries the protocol, so logs must go elsewhere.
func ServeMCP(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := openServices(ctx, cfg, log, logEmitter{log: log})
	if err != nil {
		return err
	}
	defer svc.settings.Close()

	svc.inputs.Start(ctx, domain.InputSeed{ShowButton: true})

	srv := mcpserver.New(mcpserver.Deps{
		Inputs: svc.inputs,
		Themes: svc.themes,
		Files:  fileReader{maxBytes: cfg.Drop.MaxBytes, log: log},
		Log:    log,
		Host:   cfg.Theme.Host,
	})

	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// MCPLogConfig redirects stdout logging to stderr.
func MCPLogConfig(cfg logger.Config) logger.Config {
	out := make([]string, 0, len(cfg.OutputPaths))
	for _, p := range cfg.OutputPaths {
		if p != "stdout" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, "stderr")
	}
	cfg.OutputPaths = out
	return cfg
}
