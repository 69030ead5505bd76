package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"pipelined.dev/patch/portaudio"
)

type devicesCommand struct{}

func (cmd *devicesCommand) Name() string {
	return "devices"
}

func (cmd *devicesCommand) Help() string {
	return "Show the list of available output devices"
}

func (cmd *devicesCommand) Register(*pflag.FlagSet) {}

func (cmd *devicesCommand) Run(_ context.Context, env *env) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSAMPLE RATE\tCHANNELS")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%d\t%d\n", d.Name, d.DefaultSampleRate, d.MaxOutputChannels)
	}
	return w.Flush()
}
