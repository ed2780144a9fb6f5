package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sagikazarmark/workstate"
	"github.com/sagikazarmark/workstate/badgerstore"
	"github.com/sagikazarmark/workstate/boltstore"
	"github.com/sagikazarmark/workstate/internal/cliconfig"
	"github.com/sagikazarmark/workstate/s3store"
)

func main() {
	var cfgPath string
	var logLevel string
	var dataDir string

	root := &cobra.Command{
		Use:           "workstate",
		Short:         "Move workflow state between local files and object stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $HOME/.workstate/config.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for embedded store databases")

	envFn := func(cmd *cobra.Command) (*env, error) {
		// Flags set on the command line win over the config file.
		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		e, err := buildEnv(cfgPath, logLevel)
		if err != nil {
			return nil, err
		}
		if changed["data-dir"] {
			e.cfg.DataDir = dataDir
		}
		return e, nil
	}

	root.AddCommand(catCmd(envFn), putCmd(envFn), lsCmd(envFn), cpCmd(envFn))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env bundles what every subcommand needs: config, logger, and a factory with
// all schemes registered.
type env struct {
	cfg     cliconfig.Config
	logger  *zap.Logger
	factory *workstate.Factory
}

func buildEnv(cfgPath, logLevel string) (*env, error) {
	if cfgPath == "" {
		cfgPath = cliconfig.DefaultPath()
	}
	var cfg cliconfig.Config
	if cfgPath != "" && cliconfig.FileExists(cfgPath) {
		c, err := cliconfig.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}

	logger := newZap(logLevel)

	factory := workstate.NewFactory()
	factory.RegisterScheme("s3", s3store.Open)
	factory.RegisterScheme("badger", badgerstore.Open)
	factory.RegisterScheme("bolt", boltstore.Open)

	return &env{cfg: cfg, logger: logger, factory: factory}, nil
}

func (e *env) Close() {
	_ = e.factory.Close()
	_ = e.logger.Sync()
}

// options returns the configured client options for the scheme of ref.
func (e *env) options(ref string) workstate.Options {
	scheme, _, ok := strings.Cut(ref, "://")
	if !ok {
		return nil
	}
	return workstate.Options(e.cfg.SchemeOptions(scheme))
}

func isURL(s string) bool { return strings.Contains(s, "://") }

func catCmd(envFn func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <url>",
		Short: "Load an object and write it to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			loader := workstate.NewLoader(e.factory, workstate.WithClientOptions(e.options(args[0])))
			_, err = loader.Load(context.Background(), args[0], workstate.ToWriter(os.Stdout))
			return err
		},
	}
}

func putCmd(envFn func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "put <url> [file]",
		Short: "Persist a local file (or stdin) to an object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src := workstate.FromReader(os.Stdin)
			if len(args) == 2 {
				src = workstate.FromPath(args[1])
			}

			persister := workstate.NewPersister(e.factory, workstate.WithClientOptions(e.options(args[0])))
			res, err := persister.Persist(context.Background(), args[0], src)
			if err != nil {
				return err
			}
			e.logger.Info("persisted", zap.String("url", args[0]), zap.Int64("bytes", res.Size))
			return nil
		},
	}
}

func lsCmd(envFn func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <url>",
		Short: "List object keys under a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			u, err := e.factory.Resolve(args[0])
			if err != nil {
				return err
			}
			store, err := e.factory.Open(ctx, u, e.options(args[0]))
			if err != nil {
				return err
			}
			keys, err := store.List(ctx, u.Path)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func cpCmd(envFn func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy between store URLs and local paths",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFn(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			src, dst := args[0], args[1]

			switch {
			case isURL(src) && isURL(dst):
				loader := workstate.NewLoader(e.factory, workstate.WithClientOptions(e.options(src)))
				res, err := loader.Load(ctx, src, workstate.ToBuffer())
				if err != nil {
					return err
				}
				persister := workstate.NewPersister(e.factory, workstate.WithClientOptions(e.options(dst)))
				_, err = persister.Persist(ctx, dst, workstate.FromBytes(res.Bytes))
				return err
			case isURL(src):
				loader := workstate.NewLoader(e.factory, workstate.WithClientOptions(e.options(src)))
				_, err := loader.Load(ctx, src, workstate.ToPath(dst))
				return err
			case isURL(dst):
				persister := workstate.NewPersister(e.factory, workstate.WithClientOptions(e.options(dst)))
				_, err := persister.Persist(ctx, dst, workstate.FromPath(src))
				return err
			default:
				return fmt.Errorf("at least one of src and dst must be a store url")
			}
		},
	}
}

func newZap(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
