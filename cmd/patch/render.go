package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/internal/demo"
	"pipelined.dev/patch/render"
)

type renderCommand struct {
	out      string
	duration time.Duration
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render the patch into wav, aiff or mp3 file"
}

func (cmd *renderCommand) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&cmd.out, "out", "o", "", "output file, format is defined by extension, overrides config")
	fs.DurationVar(&cmd.duration, "duration", 0, "duration of the render, overrides config")
}

func (cmd *renderCommand) Run(ctx context.Context, env *env) error {
	cfg, err := env.config()
	if err != nil {
		return err
	}
	logger, err := env.logger(cfg)
	if err != nil {
		return err
	}
	if cmd.out != "" {
		cfg.Render.Path = cmd.out
	}
	if cmd.duration > 0 {
		cfg.Render.Duration = cmd.duration
	}
	p, err := demo.New(cfg.Patch)
	if err != nil {
		return err
	}
	opts := cfg.RenderOptions()
	start := time.Now()
	if err := render.Run(ctx, engine.Stereo(p.Stereo()), opts, engine.WithLogger(logger)); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Rendered %v into %s in %v\n", opts.Duration, opts.Path, time.Since(start).Round(time.Millisecond))
	return nil
}
