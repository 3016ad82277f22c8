// Command pandora is the CLI for the Pandora file-analysis service.
//
// Usage:
//
//	pandora --redis_up
//	pandora -f suspicious.docx --wait
//	pandora --task_id <uuid> --seed <seed> --details
//	pandora --all_workers
//	pandora tasks
//	pandora search <sha256> --limit-days 7
//
// Global flags:
//
//	--url        Pandora instance URL (default: https://pandora.circl.lu/)
//	--timeout    Request timeout duration (default: 30s)
//	--apikey     API key for authenticated endpoints
//
// All output is a JSON envelope on stdout; progress and warnings go to
// stderr. The exit code is 0 on success and 1 on any usage error or service
// failure.
package main

import (
	"os"

	"github.com/pandora-analysis/gopandora/internal/client/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
