/*
Package patch allows to compose and evaluate real-time signal graphs.

Concept

A patch is a graph of nodes. Every node produces values for a batch of
audio samples at a time. The batch size is chosen by the audio driver and
every call for the same batch shares the same context:

    Ctx - sample rate, batch index and number of requested samples.

Nodes come in two flavours:

    Signal - produces one value per audio sample;
    FrameSignal - produces one value per batch (control rate).

Frame signals are cheaper and suit control data like keyboard state or step
sequencers. Lift turns a frame signal into a signal by broadcasting its
value across the whole batch.

Batches

Sampling a signal returns a Buf. Most buffers are never materialized: a
constant is a value and a count, a mapped buffer is an upstream buffer and a
function. Chains of Map, Zip and arithmetic are fused into a single pass when
the final consumer iterates the buffer, so they don't allocate per batch.

Buffer returned by Sample is valid until the next call of Sample on the same
node. Consumers that need to read a node more than once per batch, or
different consumers of the same node, must share it.

Sharing

When a node is used in more than one place the graph becomes a DAG. Shared
wraps a node so that every copy of the handle observes the same memoized
batch, and the node is computed exactly once per batch index:

    lfo := patch.Share[float64](osc.New(osc.Sine, patch.Const(0.5)))
    left := patch.Mul(voice, lfo)
    right := patch.Mul(detuned, lfo)

Cell is a shared node whose inner node can be replaced while the graph is
running. Replacement never tears a batch: a batch is computed either with
the old or with the new node.

Filters

Filter is a named stateful per-sample transform, like biquad or ladder
filters. ApplyFilter materializes the input batch and runs the filter over
it.

Playback

Graphs are played with the engine package. It owns the audio device and
drives the root node once per hardware callback.
*/
package patch
