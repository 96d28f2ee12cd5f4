package main

import (
	"github.com/joho/godotenv"

	"github.com/kodayn/osukit/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Pick up OSUKIT_* variables from a local .env, if present
	_ = godotenv.Load()

	cmd.SetVersion(version, buildTime)
	cmd.Execute()
}
