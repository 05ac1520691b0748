package server

import (
	"context"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/EscanBE/erc20harness/config"
)

// ServerContextKey is the key of the harness Context in a command context.
const ServerContextKey = contextKey("server.context")

type contextKey string

// Context carries the resolved configuration and logger of a command invocation.
type Context struct {
	Viper  *viper.Viper
	Config config.Config
	Logger log.Logger
}

// NewDefaultContext returns a Context holding the default configuration and a no-op logger.
func NewDefaultContext() *Context {
	return &Context{
		Viper:  config.NewViper(),
		Config: config.DefaultConfig(),
		Logger: log.NewNopLogger(),
	}
}

// GetServerContextFromCmd returns the Context of the command, or a default one when none is set.
func GetServerContextFromCmd(cmd *cobra.Command) *Context {
	if v := cmd.Context().Value(ServerContextKey); v != nil {
		return v.(*Context)
	}
	return NewDefaultContext()
}

// SetCmdServerContext stores the Context in the command context.
func SetCmdServerContext(cmd *cobra.Command, serverCtx *Context) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ServerContextKey, serverCtx))
}

// FlagBindings maps config keys to the flags overriding them.
type FlagBindings map[string]string

// InterceptConfigsPreRunHandler loads the configuration from defaults, the env file, the environment
// and the bound flags, then creates the logger. It is meant to run as PersistentPreRunE.
func InterceptConfigsPreRunHandler(cmd *cobra.Command, envFile string, bindings FlagBindings) error {
	v := config.NewViper()
	if err := config.ReadEnvFile(v, envFile); err != nil {
		return err
	}

	for key, flagName := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := bindFlag(v, key, flag); err != nil {
			return err
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	SetCmdServerContext(cmd, &Context{
		Viper:  v,
		Config: cfg,
		Logger: logger,
	})
	return nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) error {
	if err := v.BindPFlag(key, flag); err != nil {
		return errors.Wrapf(err, "failed to bind flag %s", flag.Name)
	}
	return nil
}

// NewLogger returns a console logger filtered at the named level.
func NewLogger(out io.Writer, level string) (log.Logger, error) {
	if strings.EqualFold(level, "none") {
		return log.NewNopLogger(), nil
	}

	zerologLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	return log.NewLogger(out, log.LevelOption(zerologLevel), log.ColorOption(false)), nil
}
