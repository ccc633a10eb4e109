package main

import (
	"context"
	"os"

	"dropoff-locator/internal/cli"
)

func main() {
	exitCode := cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
