package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/config"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/logging"
)

// Exit codes returned by the papersift binary.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitBadInput         = 2
	ExitNotFound         = 3
	ExitInsufficientData = 4
)

// app holds what every command needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the command tree. Each call returns a fresh tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "papersift",
		Short: "Cluster research papers by the entities in their titles",
		Long: `papersift groups a corpus of papers into communities of papers that share
domain entities (methods, organisms, concepts, datasets), and can cross-check
those communities against citation structure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return model.BadInput("%v", err)
	})
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $PAPERSIFT_CONFIG or built-in defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newClusterCommand(a),
		newFindCommand(a),
		newStreamCommand(a),
		newBrowseCommand(a),
		newFilterCommand(a),
		newMergeCommand(a),
		newDedupeCommand(a),
		newSubclusterCommand(a),
		newLabelCommand(a),
		newExportCommand(a),
		newServeCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return model.BadInput("%v", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return model.BadInput("%v", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
	}
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, model.ErrBadInput):
		return ExitBadInput
	case errors.Is(err, model.ErrNodeNotFound):
		return ExitNotFound
	case errors.Is(err, model.ErrInsufficientData):
		return ExitInsufficientData
	default:
		return ExitError
	}
}
