package features

import (
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/value"
	"churnguard/pkg/errcodes"
)

func testEncoders() value.EncoderSet {
	return value.EncoderSet{
		Contract: value.LabelEncoder{
			"Month-to-month": 0, "One year": 1, "Two year": 2,
		},
		PaymentMethod: value.LabelEncoder{
			"Bank transfer (automatic)": 0,
			"Credit card (automatic)":   1,
			"Electronic check":          2,
			"Mailed check":              3,
		},
		InternetService: value.LabelEncoder{
			"DSL": 0, "Fiber optic": 1, "No": 2,
		},
		PaperlessBilling: value.LabelEncoder{"No": 0, "Yes": 1},
	}
}

func testSegments() value.TenureSegments {
	return value.TenureSegments{
		{MaxTenure: 6, Label: "0-6m", Code: 0},
		{MaxTenure: 12, Label: "7-12m", Code: 1},
		{MaxTenure: 24, Label: "13-24m", Code: 2},
		{MaxTenure: -1, Label: "24m+", Code: 3},
	}
}

func TestEngineer_Vector(t *testing.T) {
	rq := require.New(t)

	engineer := NewEngineer(testEncoders(), testSegments())

	record := entity.CustomerRecord{
		Contract:         "Month-to-month",
		Tenure:           2,
		MonthlyCharges:   80.0,
		TotalCharges:     160.0,
		PaymentMethod:    "Electronic check",
		InternetService:  "Fiber optic",
		PaperlessBilling: true,
	}

	vector, err := engineer.Vector(record)
	rq.NoError(err)

	rq.Equal(0, vector.Contract)
	rq.Equal(2, vector.PaymentMethod)
	rq.Equal(1, vector.InternetService)
	rq.Equal(1, vector.PaperlessBilling)
	rq.Equal(2, vector.Tenure)
	rq.Equal(0, vector.TenureSegment)
	rq.Equal(1, vector.IsNewCustomer)
	rq.InDelta(40.0, vector.RatioMonthlyChargesTenure, 1e-12)
	rq.InDelta(1.0, vector.RatioTotalCharges, 1e-6)
}

func TestEngineer_Vector_ZeroTenure(t *testing.T) {
	rq := require.New(t)

	engineer := NewEngineer(testEncoders(), testSegments())

	vector, err := engineer.Vector(entity.CustomerRecord{
		Contract:        "One year",
		Tenure:          0,
		MonthlyCharges:  55.5,
		TotalCharges:    0,
		PaymentMethod:   "Mailed check",
		InternetService: "No",
	})
	rq.NoError(err)

	// tenure is clamped to one in the denominator, never divides by zero
	rq.InDelta(55.5, vector.RatioMonthlyChargesTenure, 1e-12)
	rq.InDelta(0.0, vector.RatioTotalCharges, 1e-12)
	rq.Equal(1, vector.IsNewCustomer)
	rq.Equal(0, vector.TenureSegment)
}

func TestEngineer_Vector_Deterministic(t *testing.T) {
	rq := require.New(t)

	engineer := NewEngineer(testEncoders(), testSegments())

	record := entity.CustomerRecord{
		Contract:         "Two year",
		Tenure:           48,
		MonthlyCharges:   99.9,
		TotalCharges:     4780.15,
		PaymentMethod:    "Credit card (automatic)",
		InternetService:  "DSL",
		PaperlessBilling: false,
	}

	first, err := engineer.Vector(record)
	rq.NoError(err)

	for i := 0; i < 10; i++ {
		again, err := engineer.Vector(record)
		rq.NoError(err)
		rq.Equal(first.Values(), again.Values())
	}

	rq.Equal(2, first.Contract)
	rq.Equal(3, first.TenureSegment)
	rq.Equal(0, first.IsNewCustomer)
}

func TestEngineer_Vector_Errors(t *testing.T) {
	valid := entity.CustomerRecord{
		Contract:         "Month-to-month",
		Tenure:           12,
		MonthlyCharges:   70.0,
		TotalCharges:     840.0,
		PaymentMethod:    "Electronic check",
		InternetService:  "Fiber optic",
		PaperlessBilling: true,
	}

	testCases := []struct {
		name     string
		mutate   func(r *entity.CustomerRecord)
		wantCode failure.ErrorCode
	}{
		{
			name:     "negative tenure",
			mutate:   func(r *entity.CustomerRecord) { r.Tenure = -1 },
			wantCode: errcodes.InvalidCustomer,
		},
		{
			name:     "zero monthly charges",
			mutate:   func(r *entity.CustomerRecord) { r.MonthlyCharges = 0 },
			wantCode: errcodes.InvalidCustomer,
		},
		{
			name:     "negative total charges",
			mutate:   func(r *entity.CustomerRecord) { r.TotalCharges = -5 },
			wantCode: errcodes.InvalidCustomer,
		},
		{
			name:     "unseen contract",
			mutate:   func(r *entity.CustomerRecord) { r.Contract = "Three year" },
			wantCode: errcodes.EncodingError,
		},
		{
			name:     "unseen payment method",
			mutate:   func(r *entity.CustomerRecord) { r.PaymentMethod = "Crypto" },
			wantCode: errcodes.EncodingError,
		},
		{
			name:     "unseen internet service",
			mutate:   func(r *entity.CustomerRecord) { r.InternetService = "Satellite" },
			wantCode: errcodes.EncodingError,
		},
	}

	engineer := NewEngineer(testEncoders(), testSegments())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			record := valid
			tc.mutate(&record)

			_, err := engineer.Vector(record)
			rq.Error(err)

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tc.wantCode, code)
		})
	}
}
