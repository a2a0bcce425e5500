package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pushnotify/internal/app"
	"pushnotify/internal/config"
	"pushnotify/internal/logging"
	"pushnotify/internal/notifier"
	"pushnotify/internal/queue"
	"pushnotify/internal/types"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// newRootCmd builds the command tree writing results to out.
func newRootCmd(out io.Writer) *cobra.Command {
	opts := &eventOptions{}

	root := &cobra.Command{
		Use:   "send-event",
		Short: "Send a sample audit log event to the notification relay",
		Long: `send-event builds a disk snapshot audit log entry, base64-encodes it
into a Pub/Sub envelope, and prints it, pushes it to a running push server,
or enqueues it for the notifier Lambda.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       config.NewBuildInfo().String(),
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ResourceType, "type", "gce_instance", "resource.type of the entry")
	flags.StringVar(&opts.FunctionName, "function", "snapshot-fn", "resource.labels.function_name")
	flags.StringVar(&opts.ProjectID, "project", "my-project", "resource.labels.project_id")
	flags.StringVar(&opts.MethodName, "method", "v1.compute.disks.createSnapshot", "protoPayload.methodName")
	flags.StringVar(&opts.Principal, "principal", "svc@example.com", "protoPayload.authenticationInfo.principalEmail")
	flags.StringVar(&opts.ResourceName, "resource-name", "projects/my-project/zones/us-central1-a/disks/disk-1", "protoPayload.resourceName")
	flags.StringVar(&opts.Timestamp, "timestamp", "", "RFC 3339 timestamp (default now)")
	flags.BoolVar(&opts.WithRequest, "request", true, "include protoPayload.request")
	flags.BoolVar(&opts.Empty, "empty", false, "send an envelope without data")

	root.AddCommand(newPrintCmd(opts), newPostCmd(opts), newEnqueueCmd(opts))
	return root
}

func newPrintCmd(opts *eventOptions) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the push request JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := buildMessage(*opts, time.Now())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(types.PushRequest{Message: msg}); err != nil {
				return err
			}

			if preview && msg.Data != "" {
				entry, _, err := notifier.Decode(msg.Data)
				if err != nil {
					return err
				}
				n, err := notifier.NewExtractor().Extract(entry)
				if err != nil {
					return err
				}
				infoColor.Fprint(cmd.OutOrStdout(), notifier.Compose(n))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "also print the message the relay would send")
	return cmd
}

func newPostCmd(opts *eventOptions) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "POST the event to a push server",
		Example: `  send-event post --url=http://localhost:8080/pubsub/push
  send-event post --empty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := buildMessage(*opts, time.Now())
			if err != nil {
				return err
			}

			status, body, err := postPush(cmd.Context(), &http.Client{Timeout: timeout}, url, msg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status >= 200 && status < 300 {
				successColor.Fprintf(out, "✓ push accepted (HTTP %d)\n", status)
			} else {
				color.New(color.FgYellow).Fprintf(out, "⚠ push rejected (HTTP %d)\n", status)
			}
			fmt.Fprintln(out, string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/pubsub/push", "push endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

func newEnqueueCmd(opts *eventOptions) *cobra.Command {
	var queueURL string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Send the event to the SQS events queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if queueURL == "" {
				queueURL = cfg.AWS.EventQueue
			}
			if queueURL == "" {
				return fmt.Errorf("no queue URL: set SQS_EVENTS or pass --queue-url")
			}

			msg, err := buildMessage(*opts, time.Now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			awsCfg, err := app.LoadAWSConfig(ctx, cfg)
			if err != nil {
				return err
			}

			logger := logging.NewAdapter(logging.New(cmd.ErrOrStderr(), cfg.LogLevel, "send-event"))
			publisher := queue.NewEventPublisher(sqs.NewFromConfig(awsCfg), queueURL, logger)

			return enqueue(ctx, publisher, msg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&queueURL, "queue-url", "", "SQS queue URL (default $SQS_EVENTS)")
	return cmd
}

// messagePublisher is the subset of queue.EventPublisher used by enqueue.
type messagePublisher interface {
	Publish(ctx context.Context, msg types.PubSubMessage) (string, error)
}

func enqueue(ctx context.Context, publisher messagePublisher, msg types.PubSubMessage, out io.Writer) error {
	id, err := publisher.Publish(ctx, msg)
	if err != nil {
		return err
	}
	successColor.Fprintf(out, "✓ event enqueued (sqs message id %s, pubsub message id %s)\n", id, msg.MessageID)
	return nil
}

// postPush sends msg as a push request and returns the response status and
// body.
func postPush(ctx context.Context, client *http.Client, url string, msg types.PubSubMessage) (int, []byte, error) {
	body, err := json.Marshal(types.PushRequest{
		Message:      msg,
		Subscription: "projects/local/subscriptions/send-event",
	})
	if err != nil {
		return 0, nil, fmt.Errorf("encoding push request: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("posting to %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
