// rollsim throws dice and runs checks without a window.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	cmd, ok := commands[command]
	if !ok {
		switch command {
		case "help", "-h", "--help":
			printUsage()
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cmd(cfg, args); err != nil {
		logger.Log.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

var commands = map[string]func(cfg *config.Config, args []string) error{
	"throw":   cmdThrow,
	"roll":    cmdThrow,
	"attr":    cmdAttribute,
	"talent":  cmdTalent,
	"history": cmdHistory,
	"serve":   cmdServe,
}

func printUsage() {
	fmt.Println(`rollsim - headless dice bowl

Usage:
  rollsim <command> [options]

Commands:
  throw [-type d20] [-count 1]       Throw dice until they settle and print the faces
  attr <name> [-mod 0]               Attribute check, e.g. attr MU -mod 2
  talent <name> [-mod 0]             Talent check, e.g. talent Klettern
  history [-limit 20]                Show recorded checks
  serve [-addr :8080]                Serve the HTTP API

Common options:
  -random                            Use a random number source instead of the physics
  -lang de                           Language for number formatting

Examples:
  rollsim throw -type d6 -count 3
  rollsim attr MU -mod 2
  rollsim talent Klettern -mod -1
  rollsim serve -addr :8080`)
}
