package main

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/atomicnotes/internal/app"
)

// Set with -ldflags "-X main.buildVersion=..." at build time.
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

func main() {
	printBuildInfo()

	ctx := context.Background()

	theApp, err := app.New(ctx)
	if err != nil {
		panic(err)
	}
	defer theApp.Close()

	if err := theApp.Run(ctx); err != nil {
		panic(err)
	}
}
