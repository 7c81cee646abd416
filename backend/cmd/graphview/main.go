package main

import (
	"fmt"
	"os"

	"network-journal/backend/pkg/logger"
)

func main() {
	if err := logger.Init("production", "warn"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
