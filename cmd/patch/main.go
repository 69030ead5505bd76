// Command patch plays signal graph patches on audio devices and renders
// them into files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pipelined.dev/patch/config"
	"pipelined.dev/patch/log"
)

type command interface {
	Name() string
	Help() string
	Register(*pflag.FlagSet)
	Run(context.Context, *env) error
}

// env is shared by all commands.
type env struct {
	configPath string
	out        io.Writer
}

const (
	successExitCode = 0
	errorExitCode   = 1
)

var commands = []command{
	&playCommand{},
	&renderCommand{},
	&devicesCommand{},
	&configCommand{},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer) int {
	root := rootCommand(commands, out)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		return errorExitCode
	}
	return successExitCode
}

func rootCommand(cmds []command, out io.Writer) *cobra.Command {
	e := env{out: out}
	root := &cobra.Command{
		Use:           "patch",
		Short:         "Patch plays signal graphs on audio devices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "yaml config file, defaults are used if empty")
	for _, c := range cmds {
		sub := &cobra.Command{
			Use:   c.Name(),
			Short: c.Help(),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.Run(cmd.Context(), &e)
			},
		}
		c.Register(sub.Flags())
		root.AddCommand(sub)
	}
	return root
}

// config loads config file or returns defaults.
func (e *env) config() (config.Config, error) {
	if e.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(e.configPath)
}

// logger returns logger of configured level.
func (e *env) logger(cfg config.Config) (*logrus.Logger, error) {
	l, err := log.WithLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return l, nil
}
