// dataset.go loads CSV experiment datasets: float features plus a label column.

// Package dataset provides tabular dataset loading, seeded shuffling, and
// stratified fold construction for cross-validation.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Dataset is an in-memory tabular dataset. The label of Samples[i] is
// Labels[i], an index into ClassNames.
type Dataset struct {
	Name         string
	FeatureNames []string
	ClassNames   []string
	Samples      [][]float64
	Labels       []int
}

// LoadCSV reads a headered CSV file whose final column holds the class label
// and whose remaining columns hold float features.
func LoadCSV(path, name string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s needs a header row and at least one sample", path)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("dataset %s needs at least one feature column and a label column", path)
	}
	numFeatures := len(header) - 1

	ds := &Dataset{
		Name:         name,
		FeatureNames: append([]string(nil), header[:numFeatures]...),
	}
	classIndex := make(map[string]int)
	for rowIdx, record := range records[1:] {
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("dataset %s row %d has %d columns, expected %d", path, rowIdx+2, len(record), len(header))
		}
		sample := make([]float64, numFeatures)
		for col := 0; col < numFeatures; col++ {
			val, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset %s row %d column %q: %w", path, rowIdx+2, header[col], err)
			}
			sample[col] = val
		}
		label := strings.TrimSpace(record[numFeatures])
		idx, ok := classIndex[label]
		if !ok {
			idx = len(ds.ClassNames)
			classIndex[label] = idx
			ds.ClassNames = append(ds.ClassNames, label)
		}
		ds.Samples = append(ds.Samples, sample)
		ds.Labels = append(ds.Labels, idx)
	}
	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("dataset %s contains no samples", path)
	}
	if len(ds.ClassNames) < 2 {
		return nil, fmt.Errorf("dataset %s has a single class %q; nothing to classify", path, ds.ClassNames[0])
	}
	return ds, nil
}

// NumClasses reports the number of distinct labels.
func (d *Dataset) NumClasses() int { return len(d.ClassNames) }

// NumFeatures reports the feature dimensionality.
func (d *Dataset) NumFeatures() int { return len(d.FeatureNames) }

// Len reports the sample count.
func (d *Dataset) Len() int { return len(d.Samples) }

// ClassCounts returns the per-class sample counts.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.NumClasses())
	for _, label := range d.Labels {
		counts[label]++
	}
	return counts
}

// MajorityClass returns the most frequent label (lowest index wins ties).
func (d *Dataset) MajorityClass() int {
	counts := d.ClassCounts()
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

// Select materializes the subset identified by the given sample indices.
func (d *Dataset) Select(indices []int) ([][]float64, []int) {
	samples := make([][]float64, len(indices))
	labels := make([]int, len(indices))
	for i, idx := range indices {
		samples[i] = d.Samples[idx]
		labels[i] = d.Labels[idx]
	}
	return samples, labels
}

// Fold holds train/test index sets for one cross-validation round.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedFolds splits the dataset into k folds preserving per-class label
// ratios. k == 1 yields a single 80/20 holdout. The rng drives assignment
// order so runs are reproducible from the experiment seed.
func StratifiedFolds(d *Dataset, k int, rng *rand.Rand) ([]Fold, error) {
	if k < 1 {
		return nil, fmt.Errorf("fold count must be >= 1, got %d", k)
	}
	byClass := make([][]int, d.NumClasses())
	for i, label := range d.Labels {
		byClass[label] = append(byClass[label], i)
	}
	if k == 1 {
		return []Fold{holdoutFold(byClass, rng)}, nil
	}
	for class, indices := range byClass {
		if len(indices) < k {
			return nil, fmt.Errorf("class %q has %d samples, fewer than %d folds", d.ClassNames[class], len(indices), k)
		}
	}
	buckets := make([][]int, k)
	for _, indices := range byClass {
		shuffled := append([]int(nil), indices...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for pos, idx := range shuffled {
			buckets[pos%k] = append(buckets[pos%k], idx)
		}
	}
	folds := make([]Fold, k)
	for i := range folds {
		test := append([]int(nil), buckets[i]...)
		sort.Ints(test)
		var train []int
		for j := range buckets {
			if j != i {
				train = append(train, buckets[j]...)
			}
		}
		sort.Ints(train)
		folds[i] = Fold{Train: train, Test: test}
	}
	return folds, nil
}

func holdoutFold(byClass [][]int, rng *rand.Rand) Fold {
	var fold Fold
	for _, indices := range byClass {
		shuffled := append([]int(nil), indices...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		cut := len(shuffled) / 5
		if cut == 0 && len(shuffled) > 1 {
			cut = 1
		}
		fold.Test = append(fold.Test, shuffled[:cut]...)
		fold.Train = append(fold.Train, shuffled[cut:]...)
	}
	sort.Ints(fold.Train)
	sort.Ints(fold.Test)
	return fold
}

// HoldoutSplit carves a validation subset out of the given indices, keeping
// per-index order stable aside from the seeded shuffle.
func HoldoutSplit(indices []int, fraction float64, rng *rand.Rand) (train, val []int) {
	if fraction <= 0 || len(indices) < 2 {
		return append([]int(nil), indices...), nil
	}
	shuffled := append([]int(nil), indices...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	cut := int(float64(len(shuffled)) * fraction)
	if cut == 0 {
		cut = 1
	}
	if cut >= len(shuffled) {
		cut = len(shuffled) - 1
	}
	val = shuffled[:cut]
	train = shuffled[cut:]
	sort.Ints(train)
	sort.Ints(val)
	return train, val
}
