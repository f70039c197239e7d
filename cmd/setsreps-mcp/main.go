package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/setsreps/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "SetsReps server URL (e.g. https://setsreps.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("setsreps-mcp", Version)
		return
	}

	if *serverURL == "" {
		*serverURL = os.Getenv("SETSREPS_SERVER_URL")
	}
	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: setsreps-mcp -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("SetsReps MCP starting", "version", Version, "server", *serverURL)

	s := mcp.New(mcp.NewHTTPClient(*serverURL), Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp stdio server failed", "error", err)
		os.Exit(1)
	}
}
