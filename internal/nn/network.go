// network.go implements the feed-forward network whose decision function the
// cg-extract solver approximates.

// Package nn trains small multi-layer perceptrons with mini-batch SGD.
// Training is deterministic for a fixed seed; the network exists to be
// explained, not to be fast.
package nn

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"go.uber.org/zap"
)

// Config sizes and parameterizes a network.
type Config struct {
	Inputs       int
	Outputs      int
	LayerUnits   []int
	Activation   string
	LearningRate float64
	Momentum     float64
	Dropout      float64
	Epochs       int
	BatchSize    int
	Seed         int64
}

type activation struct {
	apply func(float64) float64
	// deriv takes the activated output, not the pre-activation.
	deriv func(float64) float64
}

func activationFor(name string) (activation, error) {
	switch strings.ToLower(name) {
	case "relu":
		return activation{
			apply: func(v float64) float64 {
				if v > 0 {
					return v
				}
				return 0
			},
			deriv: func(a float64) float64 {
				if a > 0 {
					return 1
				}
				return 0
			},
		}, nil
	case "tanh":
		return activation{
			apply: math.Tanh,
			deriv: func(a float64) float64 { return 1 - a*a },
		}, nil
	case "sigmoid":
		return activation{
			apply: func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
			deriv: func(a float64) float64 { return a * (1 - a) },
		}, nil
	default:
		return activation{}, fmt.Errorf("unknown activation %q (supported: relu, tanh, sigmoid)", name)
	}
}

// Network is a fully connected feed-forward classifier with a softmax head.
type Network struct {
	cfg  Config
	act  activation
	rng  *rand.Rand
	dims []int

	weights   [][][]float64 // layer -> unit -> incoming weight
	biases    [][]float64
	velocityW [][][]float64
	velocityB [][]float64
}

// New builds a network with Xavier-style seeded initialization.
func New(cfg Config) (*Network, error) {
	if cfg.Inputs <= 0 || cfg.Outputs <= 0 {
		return nil, fmt.Errorf("network needs positive input and output dimensions, got %d/%d", cfg.Inputs, cfg.Outputs)
	}
	if len(cfg.LayerUnits) == 0 {
		return nil, fmt.Errorf("network needs at least one hidden layer")
	}
	act, err := activationFor(cfg.Activation)
	if err != nil {
		return nil, err
	}
	net := &Network{
		cfg:  cfg,
		act:  act,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		dims: append(append([]int{cfg.Inputs}, cfg.LayerUnits...), cfg.Outputs),
	}
	for layer := 1; layer < len(net.dims); layer++ {
		in, out := net.dims[layer-1], net.dims[layer]
		scale := math.Sqrt(2.0 / float64(in+out))
		w := make([][]float64, out)
		vw := make([][]float64, out)
		for unit := range w {
			w[unit] = make([]float64, in)
			vw[unit] = make([]float64, in)
			for i := range w[unit] {
				w[unit][i] = net.rng.NormFloat64() * scale
			}
		}
		net.weights = append(net.weights, w)
		net.biases = append(net.biases, make([]float64, out))
		net.velocityW = append(net.velocityW, vw)
		net.velocityB = append(net.velocityB, make([]float64, out))
	}
	return net, nil
}

// forward computes per-layer activations. Dropout masks apply to hidden
// layers only and are nil outside training.
func (n *Network) forward(sample []float64, masks [][]float64) [][]float64 {
	acts := make([][]float64, len(n.dims))
	acts[0] = sample
	last := len(n.weights) - 1
	for layer, w := range n.weights {
		prev := acts[layer]
		out := make([]float64, len(w))
		for unit := range w {
			sum := n.biases[layer][unit]
			for i, weight := range w[unit] {
				sum += weight * prev[i]
			}
			out[unit] = sum
		}
		if layer == last {
			softmaxInPlace(out)
		} else {
			for unit := range out {
				out[unit] = n.act.apply(out[unit])
			}
			if masks != nil && masks[layer] != nil {
				for unit := range out {
					out[unit] *= masks[layer][unit]
				}
			}
		}
		acts[layer+1] = out
	}
	return acts
}

func softmaxInPlace(v []float64) {
	max := v[0]
	for _, x := range v[1:] {
		if x > max {
			max = x
		}
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - max)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

// Probabilities returns the softmax output for one sample.
func (n *Network) Probabilities(sample []float64) []float64 {
	acts := n.forward(sample, nil)
	return acts[len(acts)-1]
}

// Predict returns the argmax class for one sample.
func (n *Network) Predict(sample []float64) int {
	probs := n.Probabilities(sample)
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

// PredictBatch labels every sample.
func (n *Network) PredictBatch(samples [][]float64) []int {
	out := make([]int, len(samples))
	for i, sample := range samples {
		out[i] = n.Predict(sample)
	}
	return out
}

// Train fits the network on x/y with mini-batch SGD plus momentum. valX/valY
// may be empty. Cancellation is honored between epochs.
func (n *Network) Train(ctx context.Context, x [][]float64, y []int, valX [][]float64, valY []int, logger *zap.Logger) error {
	if len(x) == 0 {
		return fmt.Errorf("cannot train on an empty sample set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("sample/label length mismatch: %d vs %d", len(x), len(y))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := n.cfg.BatchSize
	if batch <= 0 || batch > len(x) {
		batch = len(x)
	}
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	for epoch := 1; epoch <= n.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var epochLoss float64
		for start := 0; start < len(order); start += batch {
			end := start + batch
			if end > len(order) {
				end = len(order)
			}
			epochLoss += n.trainBatch(x, y, order[start:end])
		}
		epochLoss /= float64(len(order))
		if epoch%10 == 0 || epoch == n.cfg.Epochs {
			fields := []zap.Field{
				zap.Int("epoch", epoch),
				zap.Float64("loss", epochLoss),
				zap.Float64("train_accuracy", n.accuracy(x, y)),
			}
			if len(valX) > 0 {
				fields = append(fields, zap.Float64("val_accuracy", n.accuracy(valX, valY)))
			}
			logger.Debug("epoch complete", fields...)
		}
	}
	return nil
}

func (n *Network) trainBatch(x [][]float64, y []int, indices []int) float64 {
	gradW := make([][][]float64, len(n.weights))
	gradB := make([][]float64, len(n.biases))
	for layer := range n.weights {
		gradW[layer] = make([][]float64, len(n.weights[layer]))
		for unit := range gradW[layer] {
			gradW[layer][unit] = make([]float64, len(n.weights[layer][unit]))
		}
		gradB[layer] = make([]float64, len(n.biases[layer]))
	}
	masks := n.dropoutMasks()
	var loss float64
	for _, idx := range indices {
		acts := n.forward(x[idx], masks)
		probs := acts[len(acts)-1]
		loss += -math.Log(math.Max(probs[y[idx]], 1e-12))

		// Softmax cross-entropy delta at the output layer.
		delta := make([]float64, len(probs))
		copy(delta, probs)
		delta[y[idx]] -= 1

		for layer := len(n.weights) - 1; layer >= 0; layer-- {
			prev := acts[layer]
			for unit, d := range delta {
				gradB[layer][unit] += d
				for i := range prev {
					gradW[layer][unit][i] += d * prev[i]
				}
			}
			if layer == 0 {
				break
			}
			next := make([]float64, len(prev))
			for i := range prev {
				var sum float64
				for unit, d := range delta {
					sum += d * n.weights[layer][unit][i]
				}
				sum *= n.act.deriv(prev[i])
				if masks != nil && masks[layer-1] != nil {
					sum *= masks[layer-1][i]
				}
				next[i] = sum
			}
			delta = next
		}
	}
	scale := n.cfg.LearningRate / float64(len(indices))
	for layer := range n.weights {
		for unit := range n.weights[layer] {
			for i := range n.weights[layer][unit] {
				n.velocityW[layer][unit][i] = n.cfg.Momentum*n.velocityW[layer][unit][i] - scale*gradW[layer][unit][i]
				n.weights[layer][unit][i] += n.velocityW[layer][unit][i]
			}
			n.velocityB[layer][unit] = n.cfg.Momentum*n.velocityB[layer][unit] - scale*gradB[layer][unit]
			n.biases[layer][unit] += n.velocityB[layer][unit]
		}
	}
	return loss
}

// dropoutMasks builds inverted-dropout masks for each hidden layer, or nil
// when dropout is disabled.
func (n *Network) dropoutMasks() [][]float64 {
	if n.cfg.Dropout <= 0 {
		return nil
	}
	keep := 1 - n.cfg.Dropout
	masks := make([][]float64, len(n.weights)-1)
	for layer := 0; layer < len(n.weights)-1; layer++ {
		mask := make([]float64, n.dims[layer+1])
		for i := range mask {
			if n.rng.Float64() < keep {
				mask[i] = 1 / keep
			}
		}
		masks[layer] = mask
	}
	return masks
}

func (n *Network) accuracy(x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i, sample := range x {
		if n.Predict(sample) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}
