package features

import (
	"fmt"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/value"
	"churnguard/pkg/errcodes"
)

// ratioEpsilon keeps the second ratio finite when monthly*tenure is zero.
const ratioEpsilon = 1e-9

// newCustomerMaxTenure is the inclusive tenure cutoff for the is_new_customer
// flag, fixed at training time.
const newCustomerMaxTenure = 6

// Engineer turns raw customer records into fixed-order model input vectors
// using the fitted encoders. Stateless apart from the injected artifacts, so
// a single instance is safe for concurrent use.
type Engineer struct {
	encoders value.EncoderSet
	segments value.TenureSegments
}

func NewEngineer(encoders value.EncoderSet, segments value.TenureSegments) *Engineer {
	return &Engineer{encoders: encoders, segments: segments}
}

// Vector validates the record and derives the eleven model features. The
// same record always yields the same vector.
func (e *Engineer) Vector(record entity.CustomerRecord) (value.FeatureVector, error) {
	if err := validate(record); err != nil {
		return value.FeatureVector{}, err
	}

	contract, err := e.encoders.Contract.Encode(value.FeatureContract, record.Contract)
	if err != nil {
		return value.FeatureVector{}, err
	}

	payment, err := e.encoders.PaymentMethod.Encode(value.FeaturePaymentMethod, record.PaymentMethod)
	if err != nil {
		return value.FeatureVector{}, err
	}

	internet, err := e.encoders.InternetService.Encode(value.FeatureInternetService, record.InternetService)
	if err != nil {
		return value.FeatureVector{}, err
	}

	paperless, err := e.encoders.PaperlessBilling.Encode(value.FeaturePaperlessBilling, yesNo(record.PaperlessBilling))
	if err != nil {
		return value.FeatureVector{}, err
	}

	segment, err := e.segments.Encode(record.Tenure)
	if err != nil {
		return value.FeatureVector{}, err
	}

	isNew := 0
	if record.Tenure <= newCustomerMaxTenure {
		isNew = 1
	}

	return value.FeatureVector{
		RatioMonthlyChargesTenure: record.MonthlyCharges / float64(max(record.Tenure, 1)),
		Contract:                  contract,
		Tenure:                    record.Tenure,
		MonthlyCharges:            record.MonthlyCharges,
		TenureSegment:             segment,
		TotalCharges:              record.TotalCharges,
		IsNewCustomer:             isNew,
		PaymentMethod:             payment,
		InternetService:           internet,
		PaperlessBilling:          paperless,
		RatioTotalCharges:         record.TotalCharges / (record.MonthlyCharges*float64(record.Tenure) + ratioEpsilon),
	}, nil
}

func validate(record entity.CustomerRecord) error {
	switch {
	case record.Tenure < 0:
		return domain.NewError(errcodes.InvalidCustomer,
			fmt.Sprintf("tenure must be non-negative, got %d", record.Tenure))
	case record.MonthlyCharges <= 0:
		return domain.NewError(errcodes.InvalidCustomer,
			fmt.Sprintf("monthly charges must be positive, got %g", record.MonthlyCharges))
	case record.TotalCharges < 0:
		return domain.NewError(errcodes.InvalidCustomer,
			fmt.Sprintf("total charges must be non-negative, got %g", record.TotalCharges))
	}
	return nil
}

// yesNo restores the categorical form the encoder was fitted on.
func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
