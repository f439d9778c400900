package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"voxterm/internal/audio"
	"voxterm/internal/automate"
	"voxterm/internal/catalog"
	"voxterm/internal/cli"
	"voxterm/internal/config"
	"voxterm/internal/doctor"
	"voxterm/internal/ipc"
	"voxterm/internal/listen"
	"voxterm/internal/logging"
	"voxterm/internal/phrase"
	"voxterm/internal/recognizer"
	"voxterm/internal/session"
	"voxterm/internal/speech"
	"voxterm/internal/target"
	"voxterm/internal/terminal"
	"voxterm/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxterm"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxterm"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandTerminals:
		return r.commandTerminals(ctx, cfgLoaded.Config, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandSleep:
		return r.forwardOrFail(ctx, "sleep")
	case cli.CommandWake:
		return r.forwardOrFail(ctx, "wake")
	case cli.CommandExit:
		return r.forwardOrFail(ctx, "exit")
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandTerminals(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	aliases := terminal.NewAliasStore()
	discovery := terminal.NewTmuxDiscovery(logger, aliases, cfg.Terminal.RefreshInterval)

	descriptors := discovery.Snapshot(ctx)
	if len(descriptors) == 0 {
		fmt.Fprintln(r.Stdout, "no terminals discovered (local execution only)")
		return 0
	}

	for _, d := range descriptors {
		automatable := "yes"
		if !d.Automatable {
			automatable = "no"
		}
		fmt.Fprintf(r.Stdout, "id=%s | name=%q | automatable=%s\n", d.ID, d.DisplayName(), automatable)
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		state := resp.State
		if state == "" {
			state = "unknown"
		}
		if resp.Target != "" {
			fmt.Fprintf(r.Stdout, "%s (target: %s)\n", state, resp.Target)
		} else {
			fmt.Fprintln(r.Stdout, state)
		}
		return 0
	}

	fmt.Fprintln(r.Stdout, "not running")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, op string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, op)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running voxterm daemon\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandListen runs the daemon: one IPC server, one capture loop, one
// session controller.
func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: voxterm daemon already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load catalog failed", "error", err.Error())
		return 1
	}

	rec, err := recognizer.New(cfg.Recognizer, cfg.Audio.SampleRate, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	aliases := terminal.NewAliasStore()
	discovery := terminal.NewTmuxDiscovery(logger, aliases, cfg.Terminal.RefreshInterval)
	targets := target.NewResolver(cfg.Terminal.Surface, aliases)
	executor := automate.NewExecutor(logger, cfg.CommandTimeout)
	speaker := speech.New(cfg.Speech, logger)

	initial := target.Local
	if name := cfg.Terminal.DefaultTarget; name != "" {
		if tgt, ok := targets.ResolveName(name, discovery.Snapshot(ctx)); ok {
			initial = tgt
		} else {
			logger.Warn("default target not found, starting local", "target", name)
		}
	}

	controller := session.NewController(
		logger,
		session.Config{
			WakePhrases:       cfg.EffectiveWakePhrases(),
			SessionTimeout:    cfg.SessionTimeout,
			ConfirmationDelay: cfg.ConfirmationDelay,
			InitialTarget:     initial,
		},
		phrase.NewResolver(cat),
		targets,
		aliases,
		discovery,
		executor,
		speaker,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(runCtx, listener, controller)
	}()

	listenErrCh := make(chan error, 1)
	go func() {
		err := listen.NewListener(cfg, logger, rec, controller).Run(runCtx)
		listenErrCh <- err
		if err != nil && !errors.Is(err, context.Canceled) {
			// a dead capture loop leaves the daemon deaf, shut down
			cancel()
		}
	}()

	logger.Info("daemon started",
		"socket", socketPath,
		"wake_phrases", strings.Join(cfg.EffectiveWakePhrases(), ", "),
	)

	runErr := controller.Run(runCtx)
	cancel()

	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}
	if listenErr := <-listenErrCh; listenErr != nil && !errors.Is(listenErr, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", listenErr)
		logger.Error("capture loop failed", "error", listenErr.Error())
		return 1
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		return 1
	}

	logger.Info("daemon stopped")
	return 0
}

func tryForward(ctx context.Context, socketPath string, op string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Op: op}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward op %q: %w", op, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
