package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"printshop/cmd/printshop/ui"
	"printshop/internal/api"
	"printshop/internal/apperr"
	"printshop/internal/config"
	"printshop/internal/logging"
	"printshop/internal/session"

	"github.com/spf13/cobra"
)

// env carries flags and the wired dependencies shared by every command.
type env struct {
	// Global flags
	cfgPath   string
	verbose   bool
	timeout   time.Duration
	assumeYes bool

	cfg    *config.Config
	store  *session.SQLiteStore
	sess   *session.Session
	client *api.Client
	styles ui.Styles
	input  *bufio.Reader
}

func newRootCmd() (*cobra.Command, *env) {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "printshop",
		Short: "Print orders and student marketplace from the terminal",
		Long: `printshop is the command-line client of the print-order and marketplace service.

Upload documents for printing (optionally with AI feedback), follow your order
status, list calculators and books for sale and bid on other people's items.
Administrators can review every order and move it through
Pending -> In Progress -> Completed.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd, cmd == cmd.Root())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, e)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&e.cfgPath, "config", "c", "", "Config file (default: ~/.printshop/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&e.timeout, "timeout", 0, "Per-request timeout (overrides api.timeout)")
	rootCmd.PersistentFlags().BoolVarP(&e.assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")

	rootCmd.AddCommand(newRegisterCmd(e))
	rootCmd.AddCommand(newLoginCmd(e))
	rootCmd.AddCommand(newLogoutCmd(e))
	rootCmd.AddCommand(newWhoamiCmd(e))
	rootCmd.AddCommand(newOrdersCmd(e))
	rootCmd.AddCommand(newAdminCmd(e))
	rootCmd.AddCommand(newMarketCmd(e))
	rootCmd.AddCommand(newListingsCmd(e))
	rootCmd.AddCommand(newOverviewCmd(e))

	return rootCmd, e
}

// execute runs the command line against the given streams. The session store
// is closed even when the command fails.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd, e := newRootCmd()
	defer e.teardown()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

// setup loads config, starts logging and opens the session store.
func (e *env) setup(cmd *cobra.Command, interactive bool) error {
	path := e.cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if e.verbose {
		cfg.Logging.Level = "debug"
	}
	if e.timeout > 0 {
		cfg.API.Timeout = e.timeout.String()
	}
	if interactive && cfg.Logging.File == "" {
		// Keep the alternate screen clean.
		cfg.Logging.File = filepath.Join(filepath.Dir(cfg.Storage.SessionDB), "printshop.log")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	e.cfg = cfg

	if _, err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.BootDebug("Config loaded from %s (api=%s)", path, cfg.API.BaseURL)

	store, err := session.OpenSQLiteStore(cfg.Storage.SessionDB)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	e.store = store

	e.sess, err = session.New(cmd.Context(), store)
	if err != nil {
		return err
	}
	e.client = api.New(cfg.API, e.sess)
	e.styles = ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	e.input = bufio.NewReader(cmd.InOrStdin())
	return nil
}

func (e *env) teardown() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logging.Get(logging.CategoryStore).Warn("Failed to close session store: %v", err)
		}
		e.store = nil
	}
	logging.Sync()
}

// userError presents err to the terminal using the same text the interactive
// views show, while keeping the cause for errors.Is/As.
type userError struct {
	msg string
	err error
}

func (u *userError) Error() string { return u.msg }
func (u *userError) Unwrap() error { return u.err }

func failure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &userError{msg: apperr.UserMessage(err, fallback), err: err}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if apperr.KindOf(err) == apperr.KindAuth {
			fmt.Fprintln(os.Stderr, "Run 'printshop login' first.")
		}
		os.Exit(1)
	}
}
