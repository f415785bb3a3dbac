package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
)

// Opts with all CLI options and commands
type Opts struct {
	Config string `short:"c" long:"config" env:"POSTSCOPE_CONFIG" default:"postscope.yml" description:"config file"`

	FetchCmd      FetchCommand      `command:"fetch" description:"fetch new content from all sources"`
	GenerateCmd   GenerateCommand   `command:"generate" description:"generate a post draft"`
	ListDraftsCmd ListDraftsCommand `command:"list-drafts" description:"list pending draft posts"`
	ReviewCmd     ReviewCommand     `command:"review" description:"review a draft post"`
	MarkPostedCmd MarkPostedCommand `command:"mark-posted" description:"mark a draft as posted"`
	StatsCmd      StatsCommand      `command:"stats" description:"show content and post statistics"`
	PreviewCmd    PreviewCommand    `command:"preview" description:"preview top-ranked content"`
	ServerCmd     ServerCommand     `command:"server" description:"run the scheduler and HTTP server"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

// command is implemented by all subcommands
type command interface {
	Run(ctx context.Context, opts Opts) error
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}

		setupLog(opts.Debug)
		if opts.NoColor {
			color.NoColor = true
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// handle termination signals
		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigChan:
				lgr.Printf("[INFO] termination signal received")
				cancel()
			case <-ctx.Done():
			}
		}()

		c, ok := cmd.(command)
		if !ok {
			return cmd.Execute(args)
		}
		return c.Run(ctx, opts)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	// no command given
	if parser.Active == nil {
		parser.WriteHelp(os.Stdout)
	}
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
