package model

import (
	"fmt"
	"math"

	"churnguard/internal/domain"
	"churnguard/internal/domain/value"
	"churnguard/pkg/errcodes"
)

// Node is one node of a regression tree in the exported ensemble. Leaves
// carry a value; internal nodes split on feature < threshold, with missing
// semantics fixed at export time (missing goes left).
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Yes       int     `json:"yes"`
	No        int     `json:"no"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a flat node array; index 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Booster is a gradient-boosted tree ensemble for binary classification,
// deserialized from the training export. Prediction sums leaf values over
// all trees on top of the base score logit and squashes with a sigmoid.
type Booster struct {
	Version   string  `json:"version"`
	BaseScore float64 `json:"base_score"`
	Features  int     `json:"num_features"`
	Trees     []Tree  `json:"trees"`
}

// Validate checks structural invariants after deserialization.
func (b *Booster) Validate() error {
	if b.BaseScore <= 0 || b.BaseScore >= 1 {
		return domain.NewError(errcodes.ArtifactMissing,
			fmt.Sprintf("base score must lie in (0, 1), got %g", b.BaseScore))
	}
	if b.Features != value.FeatureCount {
		return domain.NewError(errcodes.ArtifactMissing,
			fmt.Sprintf("model expects %d features, service is built for %d", b.Features, value.FeatureCount))
	}
	if len(b.Trees) == 0 {
		return domain.NewError(errcodes.ArtifactMissing, "model has no trees")
	}

	for ti, tree := range b.Trees {
		if len(tree.Nodes) == 0 {
			return domain.NewError(errcodes.ArtifactMissing,
				fmt.Sprintf("tree %d has no nodes", ti))
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= b.Features {
				return domain.NewError(errcodes.ArtifactMissing,
					fmt.Sprintf("tree %d node %d splits on unknown feature %d", ti, ni, node.Feature))
			}
			if node.Yes < 0 || node.Yes >= len(tree.Nodes) || node.No < 0 || node.No >= len(tree.Nodes) {
				return domain.NewError(errcodes.ArtifactMissing,
					fmt.Sprintf("tree %d node %d has a child index out of range", ti, ni))
			}
		}
	}

	return nil
}

// Predict returns the churn probability for one feature vector.
func (b *Booster) Predict(vector value.FeatureVector) (float64, error) {
	values := vector.Values()

	margin := logit(b.BaseScore)
	for i := range b.Trees {
		leaf, err := b.Trees[i].traverse(values)
		if err != nil {
			return 0, err
		}
		margin += leaf
	}

	probability := sigmoid(margin)
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return 0, domain.NewError(errcodes.InvalidProbability,
			fmt.Sprintf("inference produced %g", probability))
	}

	return probability, nil
}

func (t *Tree) traverse(values [value.FeatureCount]float64) (float64, error) {
	idx := 0
	// node count bounds the walk, a malformed cycle cannot hang inference
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if values[node.Feature] < node.Threshold {
			idx = node.Yes
		} else {
			idx = node.No
		}
	}

	return 0, domain.NewError(errcodes.ArtifactMissing, "tree traversal did not reach a leaf")
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
