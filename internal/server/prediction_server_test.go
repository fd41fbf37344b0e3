package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"churnguard/internal/domain/service/features"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/domain/service/risk"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/sample"
	"churnguard/pkg/rest"
)

type fixedInferencer struct {
	probability float64
}

func (f fixedInferencer) Predict(value.FeatureVector) (float64, error) {
	return f.probability, nil
}

func testEncoders() value.EncoderSet {
	return value.EncoderSet{
		Contract: value.LabelEncoder{"Month-to-month": 0, "One year": 1, "Two year": 2},
		PaymentMethod: value.LabelEncoder{
			"Bank transfer (automatic)": 0,
			"Credit card (automatic)":   1,
			"Electronic check":          2,
			"Mailed check":              3,
		},
		InternetService:  value.LabelEncoder{"DSL": 0, "Fiber optic": 1, "No": 2},
		PaperlessBilling: value.LabelEncoder{"No": 0, "Yes": 1},
	}
}

func newTestRouter(t *testing.T, probability float64) chi.Router {
	t.Helper()

	scorer, err := risk.NewScorer(0.351)
	require.NoError(t, err)

	encoders := testEncoders()
	engineer := features.NewEngineer(encoders, value.TenureSegments{
		{MaxTenure: 6, Code: 0},
		{MaxTenure: 12, Code: 1},
		{MaxTenure: 24, Code: 2},
		{MaxTenure: -1, Code: 3},
	})

	service := predict.NewService(engineer, scorer, fixedInferencer{probability: probability}, "v1-test")

	categories := map[string]map[string]int{
		value.FeatureContract:         encoders.Contract,
		value.FeaturePaymentMethod:    encoders.PaymentMethod,
		value.FeatureInternetService:  encoders.InternetService,
		value.FeaturePaperlessBilling: encoders.PaperlessBilling,
	}

	srv := NewServer(NewPredictionServer(service, nil, sample.NewGenerator(42), categories))

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	return router
}

const validBody = `{
	"clientId": "client-1",
	"customer": {
		"contract": "Month-to-month",
		"tenure": 2,
		"monthlyCharges": 80.0,
		"totalCharges": 160.0,
		"paymentMethod": "Electronic check",
		"internetService": "Fiber optic",
		"paperlessBilling": true
	}
}`

func TestPostV1Prediction(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.6)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/", strings.NewReader(validBody)))

	rq.Equal(http.StatusOK, w.Code)

	var prediction rest.Prediction
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &prediction))

	rq.NotEmpty(prediction.ID)
	rq.Equal("client-1", prediction.ClientID)
	rq.InDelta(0.6, prediction.Probability, 1e-12)
	rq.InDelta(0.351, prediction.Threshold, 1e-12)
	rq.True(prediction.Flagged)
	rq.Equal("High Risk", prediction.RiskTier)
	rq.NotEmpty(prediction.Recommendation)
	rq.Equal("v1-test", prediction.ModelVersion)
}

func TestPostV1Prediction_Validation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "nope"},
		{name: "missing customer", body: `{"clientId": "x"}`},
		{
			name: "negative monthly charges",
			body: `{"customer": {"contract": "One year", "tenure": 3, "monthlyCharges": -5,
				"totalCharges": 10, "paymentMethod": "Mailed check", "internetService": "No"}}`,
		},
	}

	router := newTestRouter(t, 0.6)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/", strings.NewReader(tc.body)))

			rq.Equal(http.StatusBadRequest, w.Code)
		})
	}
}

func TestPostV1Prediction_UnseenCategory(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.6)

	body := strings.Replace(validBody, "Electronic check", "Crypto", 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/", strings.NewReader(body)))

	rq.Equal(http.StatusBadRequest, w.Code)
	rq.Contains(w.Body.String(), "EncodingError")
}

func TestPostV1PredictionBatch(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	body := `{
		"clientId": "batch-client",
		"customers": [
			{"contract": "Month-to-month", "tenure": 2, "monthlyCharges": 80.0, "totalCharges": 160.0,
				"paymentMethod": "Electronic check", "internetService": "Fiber optic", "paperlessBilling": true},
			{"contract": "Two year", "tenure": 48, "monthlyCharges": 60.0, "totalCharges": 2900.0,
				"paymentMethod": "Credit card (automatic)", "internetService": "DSL"}
		]
	}`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/batch", strings.NewReader(body)))

	rq.Equal(http.StatusOK, w.Code)

	var batch rest.BatchPrediction
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &batch))
	rq.Len(batch.Predictions, 2)

	for _, p := range batch.Predictions {
		rq.Equal("batch-client", p.ClientID)
		rq.Equal("Low-Medium Risk", p.RiskTier)
		rq.False(p.Flagged)
	}
}

func TestPostV1PredictionBatch_Empty(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/batch", strings.NewReader(`{"customers": []}`)))

	rq.Equal(http.StatusBadRequest, w.Code)
}

func TestGetV1Predictions_NotConfigured(t *testing.T) {
	rq := require.New(t)

	// history is not wired in this router, the endpoint reports not found
	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/predictions/", nil))

	rq.Equal(http.StatusNotFound, w.Code)
}

func TestGetV1Model(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/model/", nil))

	rq.Equal(http.StatusOK, w.Code)

	var info rest.ModelInfo
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &info))

	rq.Equal("v1-test", info.Version)
	rq.InDelta(0.351, info.Threshold, 1e-12)
	rq.Equal(11, info.FeatureCount)
	rq.Equal("Ratio_MonthlyCharges_tenure", info.FeatureOrder[0])
	rq.Equal("Ratio_TotalCharges_MonthlyCharges*tenure", info.FeatureOrder[10])
}

func TestGetV1ModelFeatures(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/model/features", nil))

	rq.Equal(http.StatusOK, w.Code)

	var info rest.FeatureInfo
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &info))

	rq.Len(info.FeatureOrder, 11)
	rq.Equal(0, info.Categories["Contract"]["Month-to-month"])
	rq.Equal(2, info.Categories["PaymentMethod"]["Electronic check"])
}

func TestGetV1Stats(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.9)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/predictions/", strings.NewReader(validBody)))
	rq.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	rq.Equal(http.StatusOK, w.Code)

	var stats rest.TierStats
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &stats))

	// the in-process stats recorder is not wired here, counters stay empty
	rq.Zero(stats.Total)
}

func TestGetV1Samples(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/samples?profile=high_risk&count=3", nil))

	rq.Equal(http.StatusOK, w.Code)

	var samples []rest.Sample
	rq.NoError(json.Unmarshal(w.Body.Bytes(), &samples))
	rq.Len(samples, 3)

	for _, s := range samples {
		rq.Equal("high_risk", s.Profile)
		rq.Equal("Month-to-month", s.Customer.Contract)
		rq.True(strings.HasPrefix(s.ClientID, "high_risk_"))
	}
}

func TestGetV1Samples_UnknownProfile(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(t, 0.2)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/samples?profile=vip", nil))

	rq.Equal(http.StatusBadRequest, w.Code)
	rq.Contains(w.Body.String(), "UnknownProfileType")
}
