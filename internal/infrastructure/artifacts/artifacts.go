package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"churnguard/internal/domain"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/model"
	"churnguard/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// Bundle is everything the training pipeline exported: the model, its fitted
// encoders and the calibrated decision threshold, plus optional training
// metadata surfaced on the model info endpoint.
type Bundle struct {
	Model       *model.Booster
	Encoders    value.EncoderSet
	Segments    value.TenureSegments
	Threshold   float64
	Hyperparams map[string]any
	Metrics     map[string]float64
}

type encodersFile struct {
	Encoders value.EncoderSet     `json:"encoders"`
	Segments value.TenureSegments `json:"tenure_segments"`
}

type thresholdFile struct {
	OptimalThreshold float64 `json:"optimal_threshold"`
}

// Load reads the artifact bundle from dir. Model, encoders and threshold are
// required; hyperparams and metrics are optional metadata.
func Load(dir string) (*Bundle, error) {
	bundle := &Bundle{}

	var enc encodersFile
	if err := readJSON(filepath.Join(dir, "encoders.json"), &enc); err != nil {
		return nil, err
	}
	bundle.Encoders = enc.Encoders
	bundle.Segments = enc.Segments

	if err := validateEncoders(enc); err != nil {
		return nil, err
	}

	var thr thresholdFile
	if err := readJSON(filepath.Join(dir, "threshold.json"), &thr); err != nil {
		return nil, err
	}
	if thr.OptimalThreshold <= 0 || thr.OptimalThreshold >= 1 {
		return nil, domain.NewError(errcodes.InvalidThreshold,
			fmt.Sprintf("threshold artifact holds %g, must lie in (0, 1)", thr.OptimalThreshold))
	}
	bundle.Threshold = thr.OptimalThreshold

	booster := &model.Booster{}
	if err := readJSON(filepath.Join(dir, "model.json"), booster); err != nil {
		return nil, err
	}
	if err := booster.Validate(); err != nil {
		return nil, err
	}
	bundle.Model = booster

	// optional metadata, absence is not an error
	_ = readJSON(filepath.Join(dir, "hyperparams.json"), &bundle.Hyperparams)
	_ = readJSON(filepath.Join(dir, "metrics.json"), &bundle.Metrics)

	return bundle, nil
}

func validateEncoders(enc encodersFile) error {
	for name, encoder := range map[string]value.LabelEncoder{
		value.FeatureContract:         enc.Encoders.Contract,
		value.FeaturePaymentMethod:    enc.Encoders.PaymentMethod,
		value.FeatureInternetService:  enc.Encoders.InternetService,
		value.FeaturePaperlessBilling: enc.Encoders.PaperlessBilling,
	} {
		if len(encoder) == 0 {
			return domain.NewError(errcodes.ArtifactMissing,
				"encoder artifact has no classes for "+name)
		}
	}

	if len(enc.Segments) == 0 {
		return domain.NewError(errcodes.ArtifactMissing, "encoder artifact has no tenure segments")
	}
	last := enc.Segments[len(enc.Segments)-1]
	if last.MaxTenure >= 0 {
		return domain.NewError(errcodes.ArtifactMissing,
			"tenure segmentation must end with an open-ended bucket")
	}

	return nil
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.WrapError(err, errcodes.ArtifactMissing,
			"cannot read artifact "+filepath.Base(path))
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.WrapError(err, errcodes.ArtifactMissing,
			"cannot parse artifact "+filepath.Base(path))
	}

	return nil
}
