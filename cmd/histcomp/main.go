// Copyright 2025 The histcomp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements histcomp, a shell history completion popup.

histcomp learns which words follow which from your shell history and offers
them for the word under the cursor, in a small popup drawn right below the
prompt. The chosen completion is printed on stdout as the new command line,
ready to be spliced back into the shell's edit buffer.

# Usage

Hook it into the shell once:

	eval "$(histcomp -init zsh)"   # or bash

and press Ctrl-Space while typing. It can also be run directly:

	histcomp -line "git st" -cursor 6

Tab and Ctrl-N move down the list, Ctrl-P moves up, Enter accepts, Esc or
Ctrl-G quits without changing anything. Other keys edit the line.

# Modes

	interactive  keep suggesting while the line is edited (default)
	single       stop after the first edit or accept
	one-shot     no popup; print the line completed with the best word

# Output

On accept, or when an edit ends the session, the full command line is printed
on stdout as is, without a trailing newline. With -cursor-file the new cursor
offset is written to that file as well. On quit nothing is printed and the
exit status is still 0. An interrupt restores the terminal and exits with
status 130.

A missing -line or an unreadable history file is fatal: histcomp exits with
status 1 and prints nothing on stdout.

# Configuration

Defaults live in a TOML file under the user config dir, created on first run:

	[history]
	path = ""
	max_bytes = 204800

	[model]
	bigram_weight = 2.0

	[popup]
	max_width = 40
	max_height = 8
	border = "rounded"

Flags given on the command line win over the file.

# Command Line Flags

	-line string     command line being completed (required)
	-cursor int      byte offset of the cursor in -line (default: end)
	-cursor-file string
	                 write the cursor offset after completion to this file
	-mode string     single, interactive or one-shot
	-hist string     history file (default: $HISTFILE, ~/.zsh_history, ~/.bash_history)
	-width int       popup max width
	-height int      popup max height, also the number of suggestions
	-weight float    bigram weight
	-config string   config file
	-init string     print the init script for zsh or bash
	-c               read partial commands from stdin and print ranked suggestions
	-d               debug logging
	-log string      log to this file instead of stderr
	-reset-config    rewrite the default config file
	-version         show version
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bastiangx/histcomp/internal/cli"
	"github.com/bastiangx/histcomp/internal/logger"
	"github.com/bastiangx/histcomp/internal/popup"
	"github.com/bastiangx/histcomp/internal/session"
	"github.com/bastiangx/histcomp/internal/term"
	"github.com/bastiangx/histcomp/internal/utils"
	"github.com/bastiangx/histcomp/pkg/config"
	"github.com/bastiangx/histcomp/pkg/corpus"
	"github.com/bastiangx/histcomp/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

const (
	Version = "0.3.0"
	AppName = "histcomp"
	gh      = "https://github.com/bastiangx/histcomp"
)

// exitInterrupted is the conventional status for death by SIGINT.
const exitInterrupted = 130

// errNoLine is returned when the shell did not pass the line to complete.
var errNoLine = errors.New("missing command line: -line is required")

// sigHandler restores the terminal and exits when interrupted. Raw mode
// keeps ISIG, so Ctrl-C arrives here rather than as a key.
func sigHandler(tty *term.Terminal) func() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go onSignal(c, tty, os.Exit)

	return func() {
		signal.Stop(c)
		close(c)
	}
}

// onSignal waits for the first signal on c, hands the terminal back and
// calls exit. If c is closed first it does neither.
func onSignal(c <-chan os.Signal, tty *term.Terminal, exit func(int)) {
	if _, ok := <-c; !ok {
		return
	}
	if err := tty.Close(); err != nil {
		log.Debugf("Terminal restore failed: %v", err)
	}
	exit(exitInterrupted)
}

func showVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ histcomp ] completes commands from your shell history")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// applyFlags copies every flag given on the command line over cfg.
func applyFlags(cfg *config.Config, set map[string]bool, hist, mode, logFile string, width, height int, weight float64) {
	if set["hist"] {
		cfg.History.Path = hist
	}
	if set["mode"] {
		cfg.CLI.Mode = mode
	}
	if set["log"] {
		cfg.CLI.LogFile = logFile
	}
	if set["width"] {
		cfg.Popup.MaxWidth = width
	}
	if set["height"] {
		cfg.Popup.MaxHeight = height
	}
	if set["weight"] {
		cfg.Model.BigramWeight = weight
	}
}

// checkContext makes sure the shell passed a line. An empty -line is fine,
// a missing one is not.
func checkContext(set map[string]bool) error {
	if !set["line"] {
		return errNoLine
	}
	return nil
}

// loadModel learns from the history file.
func loadModel(cfg *config.Config) (*suggest.Model, error) {
	path, err := utils.NewPathResolver().GetHistoryPath(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("no history to learn from: %w", err)
	}
	corp, err := corpus.Load(path, cfg.History.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	model := suggest.Build(corp.Commands)
	log.Debug("Model stats", "history", path, "commands", model.Stats()["commands"], "words", model.Stats()["totalWords"])
	return model, nil
}

// emit hands a finished session back to the shell: the line goes to w
// byte for byte, the cursor to cursorFile if one was given. Nothing is
// written when the user quit.
func emit(w io.Writer, res session.Result, cursorFile string) error {
	if !res.Emit {
		return nil
	}
	if cursorFile != "" {
		if err := os.WriteFile(cursorFile, []byte(strconv.Itoa(res.Cursor)), 0o600); err != nil {
			return fmt.Errorf("failed to write cursor: %w", err)
		}
	}
	_, err := io.WriteString(w, res.Line)
	return err
}

// main wires config, history, model and session together.
// It does not implement logic for them and only manages the flow.
func main() {
	defaultConfig := config.DefaultConfig()

	versionFlag := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Read partial commands from stdin and print suggestions -- useful for debugging")
	initShell := flag.String("init", "", "Print the shell init script (zsh or bash)")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the default config file")
	configPath := flag.String("config", "", "Path to the config file")
	logFile := flag.String("log", defaultConfig.CLI.LogFile, "Log to this file instead of stderr")
	hist := flag.String("hist", defaultConfig.History.Path, "History file to learn from")
	line := flag.String("line", "", "Command line being completed")
	cursor := flag.Int("cursor", -1, "Byte offset of the cursor in -line (default: end of line)")
	cursorFile := flag.String("cursor-file", "", "Write the cursor offset after completion to this file")
	mode := flag.String("mode", defaultConfig.CLI.Mode, "Run mode: single, interactive or one-shot")
	width := flag.Int("width", defaultConfig.Popup.MaxWidth, "Popup max width")
	height := flag.Int("height", defaultConfig.Popup.MaxHeight, "Popup max height")
	weight := flag.Float64("weight", defaultConfig.Model.BigramWeight, "Bigram weight multiplier")

	flag.Parse()

	if *versionFlag {
		showVersion()
		return
	}

	if *initShell != "" {
		binary, err := os.Executable()
		if err != nil {
			binary = AppName
		}
		script, err := cli.InitScript(*initShell, binary)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Print(script)
		return
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Print("Default config written")
		return
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, set, *hist, *mode, *logFile, *width, *height, *weight)

	closer, err := logger.Setup(*debugMode, cfg.CLI.LogFile)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(cfgPath))

	runMode, err := session.ParseMode(cfg.CLI.Mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	if !*cliMode {
		if err := checkContext(set); err != nil {
			closer.Close()
			log.Fatalf("%v", err)
		}
	}

	model, err := loadModel(cfg)
	if err != nil {
		closer.Close()
		log.Fatalf("%v", err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(model, cfg.Model.BigramWeight, cfg.Popup.MaxHeight, logger.New(""))
		if err := inputHandler.Start(os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	keys, err := session.NewKeymap(cfg.Keys)
	if err != nil {
		log.Fatalf("Invalid key bindings: %v", err)
	}
	if *cursor < 0 {
		*cursor = len(*line)
	}
	s := session.New(model, *line, *cursor, session.Options{
		Mode:         runMode,
		BigramWeight: cfg.Model.BigramWeight,
		Limit:        cfg.Popup.MaxHeight,
		Keys:         keys,
	})

	var res session.Result
	if runMode == session.ModeOneShot {
		res = s.OneShot()
	} else {
		res, err = runPopup(s, cfg.Popup, term.Open)
		if err != nil {
			closer.Close()
			log.Fatalf("%v", err)
		}
	}

	if err := emit(os.Stdout, res, *cursorFile); err != nil {
		closer.Close()
		log.Fatalf("%v", err)
	}
}

// runPopup owns the terminal from open for the length of one session and
// always hands it back restored.
func runPopup(s *session.Session, cfg config.PopupConfig, open func() (*term.Terminal, error)) (session.Result, error) {
	opts, err := popup.FromConfig(cfg, termenv.EnvNoColor())
	if err != nil {
		return session.Result{}, fmt.Errorf("invalid popup config: %w", err)
	}

	tty, err := open()
	if err != nil {
		return session.Result{}, err
	}
	stop := sigHandler(tty)
	defer stop()
	defer func() {
		if err := tty.Close(); err != nil {
			log.Debugf("Terminal teardown: %v", err)
		}
	}()

	return s.Run(tty, popup.New(opts))
}
