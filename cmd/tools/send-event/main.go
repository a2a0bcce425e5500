// Package main implements the send-event CLI tool, which builds a sample
// audit log entry, wraps it in a Pub/Sub envelope and feeds it to the relay.
//
// Usage:
//
//	go run ./cmd/tools/send-event print
//	go run ./cmd/tools/send-event post --url=http://localhost:8080/pubsub/push
//	go run ./cmd/tools/send-event enqueue --queue-url=$SQS_EVENTS
//	go run ./cmd/tools/send-event post --method=v1.compute.disks.delete --request=false
//
// The enqueue command reads AWS_REGION, AWS_ENDPOINT_URL and SQS_EVENTS from
// the environment (or a .env file via godotenv).
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
