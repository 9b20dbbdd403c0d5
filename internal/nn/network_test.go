package nn

import (
	"context"
	"math/rand"
	"testing"

	"go.uber.org/zap"
)

// clusters builds two well-separated blobs, one per class.
func clusters(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	var x [][]float64
	var y []int
	for i := 0; i < n; i++ {
		x = append(x, []float64{rng.NormFloat64() * 0.3, rng.NormFloat64() * 0.3})
		y = append(y, 0)
		x = append(x, []float64{5 + rng.NormFloat64()*0.3, 5 + rng.NormFloat64()*0.3})
		y = append(y, 1)
	}
	return x, y
}

func baseConfig() Config {
	return Config{
		Inputs:       2,
		Outputs:      2,
		LayerUnits:   []int{8},
		Activation:   "relu",
		LearningRate: 0.05,
		Momentum:     0.9,
		Epochs:       60,
		BatchSize:    8,
		Seed:         1,
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.LayerUnits = nil
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing hidden layers")
	}
	cfg = baseConfig()
	cfg.Activation = "swish"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown activation")
	}
	cfg = baseConfig()
	cfg.Inputs = 0
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for zero inputs")
	}
}

func TestTrainLearnsSeparableClusters(t *testing.T) {
	x, y := clusters(40, 7)
	net, err := New(baseConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := net.Train(context.Background(), x, y, nil, nil, zap.NewNop()); err != nil {
		t.Fatalf("train failed: %v", err)
	}
	correct := 0
	for i, sample := range x {
		if net.Predict(sample) == y[i] {
			correct++
		}
	}
	acc := float64(correct) / float64(len(x))
	if acc < 0.95 {
		t.Fatalf("separable clusters should be learnable, accuracy %.2f", acc)
	}
}

func TestTrainDeterministicForSeed(t *testing.T) {
	x, y := clusters(20, 3)
	run := func() []float64 {
		net, err := New(baseConfig())
		if err != nil {
			t.Fatalf("new failed: %v", err)
		}
		if err := net.Train(context.Background(), x, y, nil, nil, nil); err != nil {
			t.Fatalf("train failed: %v", err)
		}
		return net.Probabilities([]float64{2.5, 2.5})
	}
	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed should reproduce identical weights: %v vs %v", first, second)
		}
	}
}

func TestTrainHonorsCancellation(t *testing.T) {
	x, y := clusters(10, 1)
	net, err := New(baseConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := net.Train(ctx, x, y, nil, nil, nil); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTrainInputValidation(t *testing.T) {
	net, err := New(baseConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := net.Train(context.Background(), nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for empty training set")
	}
	if err := net.Train(context.Background(), [][]float64{{1, 2}}, []int{0, 1}, nil, nil, nil); err == nil {
		t.Fatalf("expected error for sample/label mismatch")
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	net, err := New(baseConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	probs := net.Probabilities([]float64{1, -1})
	var sum float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", probs)
		}
		sum += p
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("softmax should normalize, sum %v", sum)
	}
}
