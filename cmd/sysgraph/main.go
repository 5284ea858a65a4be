package main

import "github.com/Dicklesworthstone/sysgraph/internal/cli"

// Set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123" ./cmd/sysgraph
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.SetVersionInfo(version, commit)
	cli.Execute()
}
