package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UnlockdFinance/unlockd-v2/internal/metrics"
	"github.com/UnlockdFinance/unlockd-v2/pkg/config"
	"github.com/UnlockdFinance/unlockd-v2/pkg/logger"
)

const version = "0.0.1"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("unlockd-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose, showVersion bool
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.BoolVar(&verbose, "verbose", false, "verbose logging")
	fs.BoolVar(&showVersion, "version", false, "output the current version")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 1
	}

	cfg := config.Load()
	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel, verbose)
	defer logger.Sync()

	log := logger.L().With(zap.String("run_id", uuid.NewString()))

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, cfg, log, cmdArgs, stdout, stderr)
	case "bitmap":
		err = runBitmap(cmdArgs, stdout, stderr)
	case "bitmap-decode":
		err = runBitmapDecode(cmdArgs, stdout, stderr)
	default:
		fs.Usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if pushErr := metrics.Push(ctx, cfg.PushgatewayURL, cfg.ServiceName); pushErr != nil {
		log.Warn("metrics.push_failed", zap.Error(pushErr))
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Debug("command.failed", zap.String("command", cmd), zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `Unlockd v2 Cli

Usage:
  unlockd-cli [-v] <command> [flags]

Commands:
  generate       Generate test data on current block
  bitmap         Encode loan parameters into a hex bitmap
  bitmap-decode  Decode a loan bitmap back into its parameters

Global flags:
`)
	fs.PrintDefaults()
}
