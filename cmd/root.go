package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/medstore/internal/common/constants"
	"github.com/Alturino/medstore/internal/config"
	"github.com/Alturino/medstore/internal/gate"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/service"
)

const (
	annotationSkipSession = "skipSession"
	annotationAutoBackup  = "autoBackup"
	envPassword           = "MEDSTORE_PASSWORD"
)

// app carries what the root command prepares for its subcommands.
type app struct {
	configFile string
	password   string
	logLevel   string

	cfg *config.Config
	svc *service.StoreService
	out io.Writer
	in  io.Reader
}

func Start() {
	logger := log.NewLogger("", "", "info").
		With().
		Str(log.KeyAppName, constants.APP_MAIN_MEDSTORE).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Debug().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Debug().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	a := &app{out: os.Stdout, in: os.Stdin}
	if err := newRootCommand(a).ExecuteContext(c); err != nil {
		stop()
		zerolog.Ctx(c).Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}

var autoBackupAnnotation = map[string]string{annotationAutoBackup: "true"}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               constants.APP_MAIN_MEDSTORE,
		Short:             "Medical store inventory and point of sale",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.openSession,
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./env/medstore.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.password, "password", "", "store password (or "+envPassword+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "overrides log.level")
	rootCmd.SetOut(a.out)

	rootCmd.AddCommand(
		newMedicineCommand(a),
		newCartCommand(a),
		newBackupCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newServeCommand(a),
		newHashPasswordCommand(a),
	)
	return rootCmd
}

// openSession loads the config, replaces the bootstrap logger, runs the
// password gate and opens the store. Commands annotated with
// annotationSkipSession only get the config. The Auto backup is only taken
// for commands annotated with annotationAutoBackup, the ones that change the
// catalog or run the long-lived server.
func (a *app) openSession(cmd *cobra.Command, args []string) error {
	c := cmd.Context()

	cfg, err := config.Load(c, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	level := a.cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger := log.InitLogger(a.cfg.Log.File, a.cfg.Application.Env, level).
		With().
		Str(log.KeyAppName, constants.APP_MAIN_MEDSTORE).
		Str(log.KeyTag, "main "+cmd.Name()).
		Logger()
	c = logger.WithContext(c)
	cmd.SetContext(c)

	if _, ok := cmd.Annotations[annotationSkipSession]; ok {
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "checking password").Logger()
	logger.Debug().Msg("checking password")
	password, err := a.readPassword()
	if err != nil {
		return err
	}
	if err := gate.New(a.cfg.Application.PasswordHash).Check(c, password); err != nil {
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "opening store").Logger()
	logger.Debug().Msg("opening store")
	opts := service.OptionsFromConfig(a.cfg)
	if _, ok := cmd.Annotations[annotationAutoBackup]; !ok {
		opts.AutoBackup = false
	}
	a.svc = service.NewStoreService(c, opts)
	if err := a.svc.LoadError(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", err)
	}
	return nil
}

func (a *app) readPassword() (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	if v, ok := os.LookupEnv(envPassword); ok {
		return v, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed reading password with error=%w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
