package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/patch/config"
	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/internal/demo"
	"pipelined.dev/patch/metric"
	"pipelined.dev/patch/portaudio"
)

const shutdownTimeout = 5 * time.Second

type playCommand struct {
	device      string
	duration    time.Duration
	metricsAddr string
	watch       bool
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play the patch on audio device"
}

func (cmd *playCommand) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&cmd.device, "device", "d", "", "output device name, overrides config")
	fs.DurationVar(&cmd.duration, "duration", 0, "stop after duration, play until interrupted if zero")
	fs.StringVar(&cmd.metricsAddr, "metrics-addr", "", "address of prometheus endpoint, overrides config")
	fs.BoolVarP(&cmd.watch, "watch", "w", false, "reload patch when config file changes")
}

func (cmd *playCommand) Run(ctx context.Context, env *env) error {
	cfg, err := env.config()
	if err != nil {
		return err
	}
	logger, err := env.logger(cfg)
	if err != nil {
		return err
	}
	if cmd.watch && env.configPath == "" {
		return errors.New("watch requires config file")
	}
	loaded := cfg
	if cmd.device != "" {
		cfg.Engine.Device = cmd.device
	}
	if cmd.metricsAddr != "" {
		cfg.Metrics.Addr = cmd.metricsAddr
	}

	p, err := demo.New(cfg.Patch)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	device := portaudio.Named(cfg.Engine.Device)
	e, err := engine.New(device,
		engine.WithConfig(cfg.EngineConfig()),
		engine.WithMetrics(metric.New(reg)),
		engine.WithLogger(logger.WithField("device", cfg.Engine.Device)),
	)
	if err != nil {
		return err
	}

	if cmd.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		logger.WithField("engine", e.ID()).Infof("playing on %q", cfg.Engine.Device)
		err := e.Play(ctx, engine.Stereo(p.Stereo()))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})
	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Infof("serving metrics on %s", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}
	if cmd.watch {
		r := &reloader{
			path:    env.configPath,
			current: loaded,
			logger:  logger,
			apply: func(pc config.Patch) error {
				var updateErr error
				if err := e.Mutate(func() { updateErr = p.Update(pc) }); err != nil {
					return err
				}
				return updateErr
			},
		}
		g.Go(func() error {
			return watch(ctx, env.configPath, logger, r.reload)
		})
	}
	return g.Wait()
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
