package config

type Model struct {
	// ArtifactsDir holds model.json, encoders.json, threshold.json and the
	// optional training metadata exported by the training pipeline.
	ArtifactsDir string `env:"MODEL_ARTIFACTS_DIR" envDefault:"artifacts"`
	SampleSeed   int64  `env:"SAMPLE_SEED" envDefault:"42"`
}
