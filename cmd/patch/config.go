package main

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type configCommand struct {
	dump bool
}

func (cmd *configCommand) Name() string {
	return "config"
}

func (cmd *configCommand) Help() string {
	return "Print effective config"
}

func (cmd *configCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.dump, "dump", false, "print go values instead of yaml")
}

func (cmd *configCommand) Run(_ context.Context, env *env) error {
	cfg, err := env.config()
	if err != nil {
		return err
	}
	if cmd.dump {
		spew.Fdump(env.out, cfg)
		return nil
	}
	enc := yaml.NewEncoder(env.out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
