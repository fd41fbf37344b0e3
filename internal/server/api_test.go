package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"churnguard/internal/domain/service/features"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/domain/service/risk"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/artifacts"
	"churnguard/internal/infrastructure/sample"
	"churnguard/pkg/rest"
	"churnguard/pkg/tests"
)

// full pipeline over the real exported artifacts: the shipped model must
// separate the canned risk profiles.
func TestAPI_WithShippedArtifacts(t *testing.T) {
	rq := require.New(t)

	bundle, err := artifacts.Load(filepath.Join("..", "..", "artifacts"))
	rq.NoError(err)

	scorer, err := risk.NewScorer(bundle.Threshold)
	rq.NoError(err)

	service := predict.NewService(
		features.NewEngineer(bundle.Encoders, bundle.Segments),
		scorer,
		bundle.Model,
		bundle.Model.Version,
	).WithTrainingMeta(bundle.Hyperparams, bundle.Metrics)

	categories := map[string]map[string]int{
		value.FeatureContract:         bundle.Encoders.Contract,
		value.FeaturePaymentMethod:    bundle.Encoders.PaymentMethod,
		value.FeatureInternetService:  bundle.Encoders.InternetService,
		value.FeaturePaperlessBilling: bundle.Encoders.PaperlessBilling,
	}

	router := chi.NewRouter()
	NewServer(NewPredictionServer(service, nil, sample.NewGenerator(42), categories)).RegisterRoutes(router)

	ts := httptest.NewServer(router)
	defer ts.Close()

	client := tests.NewAPIClient(ts.URL, nil)
	ctx := context.Background()

	rq.NoError(service.HealthCheck(ctx))

	var highRisk rest.Prediction
	resp, err := client.Post(ctx, "/v1/predictions/", nil, rest.PredictionRequest{
		ClientID: "e2e-high",
		Customer: rest.Customer{
			Contract:         "Month-to-month",
			Tenure:           2,
			MonthlyCharges:   80.0,
			TotalCharges:     160.0,
			PaymentMethod:    "Electronic check",
			InternetService:  "Fiber optic",
			PaperlessBilling: true,
		},
	}, &highRisk, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(highRisk.Flagged)
	rq.GreaterOrEqual(highRisk.Probability, bundle.Threshold)

	var stable rest.Prediction
	resp, err = client.Post(ctx, "/v1/predictions/", nil, rest.PredictionRequest{
		ClientID: "e2e-stable",
		Customer: rest.Customer{
			Contract:         "Two year",
			Tenure:           48,
			MonthlyCharges:   60.0,
			TotalCharges:     2880.0,
			PaymentMethod:    "Bank transfer (automatic)",
			InternetService:  "DSL",
			PaperlessBilling: false,
		},
	}, &stable, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(stable.Flagged)
	rq.Equal("Low Risk", stable.RiskTier)
	rq.Greater(highRisk.Probability, stable.Probability)

	var info rest.ModelInfo
	resp, err = client.Get(ctx, "/v1/model/", nil, &info, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(bundle.Model.Version, info.Version)
	rq.InDelta(0.351, info.Threshold, 1e-12)
	rq.InDelta(0.885, info.Metrics["recall"], 1e-12)

	var errBody rest.Error
	resp, err = client.PostJSON(ctx, "/v1/predictions/", nil, `{"customer": {"contract": "Lifetime",
		"tenure": 1, "monthlyCharges": 10, "totalCharges": 10,
		"paymentMethod": "Electronic check", "internetService": "DSL"}}`, nil, &errBody)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode("EncodingError"), errBody.Code)
}

// the generated demo profiles score consistently with their intent.
func TestAPI_SampledProfilesScore(t *testing.T) {
	rq := require.New(t)

	bundle, err := artifacts.Load(filepath.Join("..", "..", "artifacts"))
	rq.NoError(err)

	scorer, err := risk.NewScorer(bundle.Threshold)
	rq.NoError(err)

	service := predict.NewService(
		features.NewEngineer(bundle.Encoders, bundle.Segments),
		scorer,
		bundle.Model,
		bundle.Model.Version,
	)

	generator := sample.NewGenerator(int64(tests.NewRandomizer().Int(1 << 30)))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		record, clientID, err := generator.Generate(sample.ProfileHighRisk)
		rq.NoError(err)

		prediction, err := service.Predict(ctx, clientID, record)
		rq.NoError(err)
		rq.True(prediction.Assessment.Flagged, "high risk sample should be flagged: %+v", record)

		record, clientID, err = generator.Generate(sample.ProfileStable)
		rq.NoError(err)

		prediction, err = service.Predict(ctx, clientID, record)
		rq.NoError(err)
		rq.False(prediction.Assessment.Flagged, "stable sample should not be flagged: %+v", record)
	}
}
