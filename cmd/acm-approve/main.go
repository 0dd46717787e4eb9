// Command acm-approve runs the approval pipeline outside Lambda, against an
// email or SNS event saved to a file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"acm-approver/internal/approval"
	"acm-approver/internal/config"
	"acm-approver/internal/logging"
	"acm-approver/internal/notification"
	"acm-approver/internal/tracing"
	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "acm-approve",
		Usage:   "Approve an ACM certificate validation email",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "file holding the raw email, - for stdin"},
			&cli.StringFlag{Name: "event", Usage: "file holding an SNS event as delivered to the Lambda, - for stdin"},
			&cli.StringFlag{Name: "profile", Usage: "shared AWS config profile", Sources: cli.EnvVars("AWS_PROFILE")},
			&cli.StringFlag{Name: "otel-exporter", Usage: "xrayudp, stdout or none", Value: "none"},
			&cli.BoolFlag{Name: "dry-run", Usage: "run every check but do not submit the approval form"},
		},
		Action: approve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func approve(ctx context.Context, cmd *cli.Command) error {
	email, err := loadEmail(cmd.String("email"), cmd.String("event"), os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	cfg.LogDevelopment = true
	cfg.OtelExporter = cmd.String("otel-exporter")

	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tp, shutdown, err := tracing.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithSharedConfigProfile(cmd.String("profile")))
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	approver, err := approval.FromConfig(cfg, acm.NewFromConfig(awsCfg), tp, logger,
		approval.WithDryRun(cmd.Bool("dry-run")))
	if err != nil {
		return err
	}

	res, err := approver.Approve(ctx, email)
	if err != nil {
		return err
	}
	return printResult(cmd.Root().Writer, res)
}

// loadEmail reads the email either directly or out of a saved SNS event.
func loadEmail(emailPath, eventPath string, stdin io.Reader) (string, error) {
	switch {
	case emailPath != "" && eventPath != "":
		return "", errors.New("--email and --event are mutually exclusive")
	case emailPath != "":
		raw, err := readInput(emailPath, stdin)
		return string(raw), err
	case eventPath != "":
		raw, err := readInput(eventPath, stdin)
		if err != nil {
			return "", err
		}
		var event events.SNSEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return "", errors.Wrap(err, "failed to decode sns event")
		}
		msg, err := notification.Unwrap(event)
		return msg.Content, err
	default:
		return "", errors.New("one of --email or --event is required")
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return raw, nil
}

func printResult(w io.Writer, res approval.Result) error {
	var err error
	switch res.Outcome {
	case approval.OutcomeIgnored:
		_, err = fmt.Fprintln(w, "no confirmation url in email, nothing to do")
	case approval.OutcomeDryRun:
		_, err = fmt.Fprintf(w, "dry run: would %s %s for %s (%s)\n",
			res.Form.Method, res.Form.Action, res.Fields.Domain, res.CertificateARN)
	default:
		_, err = fmt.Fprintf(w, "approved %s (%s)\n", res.Fields.Domain, res.CertificateARN)
	}
	return err
}
