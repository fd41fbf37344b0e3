package value

import (
	"sort"

	"churnguard/internal/domain"
	"churnguard/pkg/errcodes"
)

// LabelEncoder is a fitted category -> integer code mapping. It is a training
// artifact: loaded once at process start and read-only afterwards.
type LabelEncoder map[string]int

// Encode returns the trained code for the value. An unseen value is an
// EncodingError, never a silent zero: a default-coded category would produce
// a plausible-looking but corrupt probability downstream.
func (e LabelEncoder) Encode(feature, val string) (int, error) {
	code, ok := e[val]
	if !ok {
		return 0, domain.NewError(errcodes.EncodingError,
			"value "+val+" not present in the trained encoder for "+feature)
	}
	return code, nil
}

// Classes returns the known category values in code order.
func (e LabelEncoder) Classes() []string {
	classes := make([]string, 0, len(e))
	for v := range e {
		classes = append(classes, v)
	}

	sort.Slice(classes, func(i, j int) bool { return e[classes[i]] < e[classes[j]] })

	return classes
}

// EncoderSet carries the four fitted label encoders for the categorical
// inputs. Injected into the feature engineer at construction; never global.
type EncoderSet struct {
	Contract         LabelEncoder `json:"Contract"`
	PaymentMethod    LabelEncoder `json:"PaymentMethod"`
	InternetService  LabelEncoder `json:"InternetService"`
	PaperlessBilling LabelEncoder `json:"PaperlessBilling"`
}

// TenureSegment is one bucket of the ordered tenure segmentation. MaxTenure
// is inclusive; a negative MaxTenure marks the open-ended last bucket.
type TenureSegment struct {
	MaxTenure int    `json:"max_tenure"`
	Label     string `json:"label"`
	Code      int    `json:"code"`
}

// TenureSegments is the ordered bucket list from the training artifact.
type TenureSegments []TenureSegment

// Encode maps a tenure to its trained segment code.
func (s TenureSegments) Encode(tenure int) (int, error) {
	if len(s) == 0 {
		return 0, domain.NewError(errcodes.ArtifactMissing, "tenure segmentation is empty")
	}

	for _, segment := range s {
		if segment.MaxTenure < 0 || tenure <= segment.MaxTenure {
			return segment.Code, nil
		}
	}

	// The artifact is expected to end with an open-ended bucket.
	return 0, domain.NewError(errcodes.EncodingError, "tenure outside every trained segment")
}
