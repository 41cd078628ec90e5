package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goOwner "github.com/MrEthical07/goOwner"
	"github.com/MrEthical07/goOwner/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "OWNERCTL"

// app carries the state shared by every subcommand for one invocation.
type app struct {
	v       *viper.Viper
	out     io.Writer
	logger  *zap.Logger
	cleanup []func()
}

// run executes one ownerctl invocation and releases everything it opened.
func run(ctx context.Context, args []string, out io.Writer) error {
	root, a := newRootCmd(out)
	defer a.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(out io.Writer) (*cobra.Command, *app) {
	a := &app{v: viper.New(), out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "ownerctl",
		Short:         "Manage the storefront owner session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./ownerctl.yaml or $XDG_CONFIG_HOME/goowner/ownerctl.yaml)")
	flags.String("backend", goOwner.DefaultConfig().Backend.URL, "backend base URL")
	flags.String("store", "file", "credential store: file, redis or memory")
	flags.String("store-path", "", "file store path (default $XDG_CONFIG_HOME/goowner/session.json)")
	flags.String("redis-addr", "", "redis address; an embedded server is used when empty")
	flags.String("mode", "strict", "validation mode: strict, hybrid or local")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newVerifyCmd(a),
		newHeaderCmd(a),
		newOrdersCmd(a),
		newCouponsCmd(a),
		newMetricsCmd(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	_ = a.v.BindPFlags(cmd.Flags())

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		a.v.SetConfigName("ownerctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(dir, "goowner"))
		}
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	logger, err := newLogger(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = logger
	a.cleanup = append(a.cleanup, func() { _ = logger.Sync() })
	return nil
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (a *app) store(ctx context.Context) (storage.Store, error) {
	switch kind := strings.ToLower(a.v.GetString("store")); kind {
	case "memory":
		return storage.NewMemory(), nil
	case "", "file":
		path := a.v.GetString("store-path")
		if path == "" {
			def, err := storage.DefaultFilePath()
			if err != nil {
				return nil, fmt.Errorf("resolve store path: %w", err)
			}
			path = def
		}
		a.logger.Debug("using file store", zap.String("path", path))
		return storage.NewFile(path), nil
	case "redis":
		addr := a.v.GetString("redis-addr")
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, fmt.Errorf("start embedded redis: %w", err)
			}
			a.cleanup = append(a.cleanup, mr.Close)
			addr = mr.Addr()
			a.logger.Warn("no --redis-addr given, using an embedded redis; the session ends with this process",
				zap.String("addr", addr))
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		a.cleanup = append(a.cleanup, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("%w: redis %s: %v", storage.ErrUnavailable, addr, err)
		}
		return storage.NewRedis(client, "goowner", 0), nil
	default:
		return nil, fmt.Errorf("unknown --store %q", kind)
	}
}

func (a *app) facade(ctx context.Context) (*goOwner.Facade, error) {
	mode, err := goOwner.ParseValidationMode(a.v.GetString("mode"))
	if err != nil {
		return nil, err
	}
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}

	f, err := goOwner.New().
		WithBackendURL(a.v.GetString("backend")).
		WithValidationMode(mode).
		WithStore(store).
		WithLogger(a.logger).
		Build()
	if err != nil {
		return nil, err
	}
	a.cleanup = append(a.cleanup, f.Close)
	return f, nil
}
