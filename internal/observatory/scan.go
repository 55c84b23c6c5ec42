package observatory

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StateFinished is the only scan state that carries results.
const StateFinished = "FINISHED"

// Scan is the analyze endpoint's response. Only a FINISHED scan is guaranteed
// to carry the fields tagged required.
type Scan struct {
	State               string `json:"state"`
	ScanID              Text   `json:"scan_id" validate:"required"`
	Grade               string `json:"grade" validate:"required"`
	Score               *int   `json:"score" validate:"required"`
	LikelihoodIndicator string `json:"likelihood_indicator" validate:"required"`
	TestsQuantity       *int   `json:"tests_quantity" validate:"required"`
	TestsPassed         *int   `json:"tests_passed" validate:"required"`
	TestsFailed         *int   `json:"tests_failed" validate:"required"`
	StartTime           string `json:"start_time" validate:"required"`
	EndTime             string `json:"end_time" validate:"required"`
}

// Text decodes a JSON string or number into its textual form. The service
// sends scan ids as integers.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// IsScanReady reports whether s is a finished scan.
func IsScanReady(s *Scan) bool {
	return s != nil && s.State == StateFinished
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every field a finished scan must carry is present.
func (s *Scan) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := &MissingFieldError{}
	for _, e := range verrs {
		missing.Fields = append(missing.Fields, e.Field())
	}
	return missing
}
