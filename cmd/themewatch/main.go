// Command themewatch mounts the theme switch against a desktop preference
// file and writes the resulting stylesheet directive to another file.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"themeswitch/internal/control"
	applog "themeswitch/internal/log"
	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/theme"
	"themeswitch/internal/views/terminal"
)

const targetID = "directive"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	preferenceFile string
	directiveFile  string
	stylesheetID   string
	lightAccent    string
	darkAccent     string
	logLevel       string
}

func defaultPreferenceFile() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "themeswitch", "color-scheme")
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("themewatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.preferenceFile, "preference-file", defaultPreferenceFile(), "file holding the platform preference (light or dark)")
	fs.StringVar(&opts.directiveFile, "directive-file", "", "file receiving the stylesheet media directive")
	fs.StringVar(&opts.stylesheetID, "stylesheet-id", targetID, "stylesheet target the switch drives")
	fs.StringVar(&opts.lightAccent, "light-accent", "", "accent color in light mode")
	fs.StringVar(&opts.darkAccent, "dark-accent", "", "accent color in dark mode (defaults to the light accent)")
	fs.StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.directiveFile) == "" {
		return options{}, errors.New("-directive-file is required")
	}
	return opts, nil
}

// fileTarget writes each directive to a file, replacing its content.
type fileTarget struct {
	path string
}

func (f fileTarget) Apply(d theme.Directive) {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(string(d)+"\n"), 0o644); err != nil {
		applog.Error(context.Background(), "failed to write directive", "path", f.path, "error", err)
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		applog.Error(context.Background(), "failed to replace directive file", "path", f.path, "error", err)
	}
}

type targets map[string]control.Target

func (t targets) Lookup(id string) (control.Target, bool) {
	target, ok := t[id]
	return target, ok
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	applog.ReplaceLogger(applog.NewWriterLogger(stderr))
	if err := applog.SetLevel(opts.logLevel); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	pref, err := openSignal(opts.preferenceFile)
	if err != nil {
		applog.Error(ctx, "failed to open platform signal", "error", err)
		return 1
	}
	defer pref.Close()

	controller, err := control.Mount(control.MountConfig{
		StylesheetID: opts.stylesheetID,
		Targets:      targets{targetID: fileTarget{path: opts.directiveFile}},
		Store:        preference.NewMemory(),
		Signal:       pref,
	})
	if err != nil {
		return 1
	}
	defer controller.Dispose()

	view := terminal.New(stdout, terminal.Palette{LightAccent: opts.lightAccent, DarkAccent: opts.darkAccent})
	controller.Bind(view)

	return readIntents(ctx, stdin, stderr, controller, view)
}

func openSignal(path string) (*platform.File, error) {
	if path == "" {
		return nil, errors.New("no preference file available")
	}
	return platform.OpenFile(path)
}

// readIntents applies one intent per input line until EOF, "quit" or ctx ends.
func readIntents(ctx context.Context, stdin io.Reader, stderr io.Writer, c *control.Controller, view *terminal.Switch) int {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return 0
		case line, ok := <-lines:
			if !ok {
				return 0
			}
			switch input := strings.ToLower(strings.TrimSpace(line)); input {
			case "":
			case "quit", "exit":
				return 0
			case "refresh":
				c.Refresh()
			default:
				if !view.Submit(input) {
					fmt.Fprintf(stderr, "unknown selection %q (want light, dark or auto)\n", input)
				}
			}
		}
	}
}
