package main

import (
	"log"
	"os"
	goos "os"

	"go.uber.org/zap"
)

var sugar = zap.NewNop().Sugar()

func main() {
	defer cleanup()

	os.Exit(1)           // want `Exit in main.main skips deferred calls`
	goos.Exit(2)         // want `Exit in main.main skips deferred calls`
	log.Fatal("boom")    // want `Fatal in main.main skips deferred calls`
	log.Fatalf("%d", 1)  // want `Fatalf in main.main skips deferred calls`
	sugar.Fatalw("boom") // want `Fatalw in main.main skips deferred calls`

	log.Println("fine")
	go func() {
		os.Exit(3)
	}()
	exit()
}

func exit() {
	os.Exit(1)
}

func cleanup() {}
