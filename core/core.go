// Package core runs the commit analysis: it fans out over repositories, caches
// parsed logs and hands the reduced result to the output layer.
package core

import (
	"context"
	"time"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/internal/outwriter"
	"github.com/huangsam/gitnapped/schema"
)

// NewGitClient returns the VCS adapter for the configured backend.
func NewGitClient(backend schema.GitBackend) contract.GitClient {
	if backend == schema.GoGitGitBackend {
		return contract.NewGoGitClient()
	}
	return contract.NewLocalGitClient()
}

// ExecuteGitnapped runs the analysis and prints the result in the configured format.
// It serves as the main entry point for the root command.
func ExecuteGitnapped(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	client := NewGitClient(cfg.GitBackend)
	result, err := AnalyzeRepositories(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintResult(result, cfg, duration)
}

// GetGitnappedResult runs the analysis without printing anything.
// It is used by the MCP server, where stdout carries the protocol.
func GetGitnappedResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.AnalysisResult, error) {
	client := NewGitClient(cfg.GitBackend)
	return AnalyzeRepositories(withSuppressHeader(ctx), cfg, client, mgr)
}
