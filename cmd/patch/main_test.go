package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pipelined.dev/patch/config"
	"pipelined.dev/patch/log"
	"pipelined.dev/patch/wav"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInit(t *testing.T) {
	root := rootCommand(commands, &bytes.Buffer{})
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"play", "render", "devices", "config"})
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestConfigCommand(t *testing.T) {
	path := writeConfig(t, "patch: {tempo: 90}\n")

	var out bytes.Buffer
	code := run(context.Background(), []string{"config", "-c", path}, &out)
	require.Equal(t, successExitCode, code)
	cfg, err := config.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.Patch.Tempo)

	out.Reset()
	code = run(context.Background(), []string{"config", "--dump"}, &out)
	require.Equal(t, successExitCode, code)
	assert.Contains(t, out.String(), "Tempo: (float64) 120")
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	cfgPath := writeConfig(t, "log: {level: error}\nengine: {sample_rate: 22050}\n")
	var out bytes.Buffer
	code := run(context.Background(), []string{"render", "-c", cfgPath, "-o", path, "--duration", "200ms"}, &out)
	require.Equal(t, successExitCode, code)
	assert.Contains(t, out.String(), "Rendered 200ms into "+path)

	clip, err := wav.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 22050, clip.SampleRate)
	assert.Equal(t, 4410, clip.Frames())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"mix"}},
		{name: "unknown flag", args: []string{"render", "--volume", "11"}},
		{name: "missing config", args: []string{"config", "-c", "missing.yaml"}},
		{name: "watch without config", args: []string{"play", "--watch"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, errorExitCode, run(context.Background(), test.args, &bytes.Buffer{}))
		})
	}
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "patch: {tempo: 100}\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	var applied []config.Patch
	r := &reloader{
		path:    path,
		current: cfg,
		logger:  log.Silent(),
		apply: func(p config.Patch) error {
			applied = append(applied, p)
			return nil
		},
	}
	r.reload()
	assert.Empty(t, applied, "unchanged patch is not applied")

	require.NoError(t, os.WriteFile(path, []byte("patch: {tempo: 140}\n"), 0o600))
	r.reload()
	require.Len(t, applied, 1)
	assert.Equal(t, 140.0, applied[0].Tempo)

	require.NoError(t, os.WriteFile(path, []byte("patch: {tempo: -1}\n"), 0o600))
	r.reload()
	assert.Len(t, applied, 1, "invalid config is not applied")
	assert.Equal(t, 140.0, r.current.Patch.Tempo)
}

func TestPatchDiff(t *testing.T) {
	a := config.Default().Patch
	b := a
	b.Gain = 0.5
	diff, err := patchDiff(a, b, "patch.yaml")
	require.NoError(t, err)
	assert.Contains(t, diff, "-gain: 0.2")
	assert.Contains(t, diff, "+gain: 0.5")

	diff, err = patchDiff(a, a, "patch.yaml")
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "patch: {tempo: 100}\n")
	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan struct{}, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, watch(ctx, path, log.Silent(), func() { reloaded <- struct{}{} }))
	}()

	// watcher is added asynchronously, so keep writing until it fires.
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(5 * time.Second)
wait:
	for {
		select {
		case <-reloaded:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("patch: {tempo: 110}\n"), 0o600))
		case <-timeout:
			t.Fatal("config change is not detected")
		}
	}
	cancel()
	wg.Wait()
}
