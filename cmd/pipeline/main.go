package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional for the CLI; flags override it anyway
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
