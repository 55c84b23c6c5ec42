package observatory

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestGradeToDec(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"A+", 12}, {"A", 11}, {"A-", 10},
		{"B+", 9}, {"B", 8}, {"B-", 7},
		{"C+", 6}, {"C", 5}, {"C-", 4},
		{"D+", 3}, {"D", 2}, {"D-", 1},
		{"F", 0},
		{"", 0},
		{"a+", 0},
		{" A", 0},
		{"A+ ", 0},
		{"E", 0},
		{"A++", 0},
	}
	for _, c := range cases {
		if got := GradeToDec(c.in); got != c.want {
			t.Fatalf("GradeToDec(%q)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestDecToGrade(t *testing.T) {
	for g, n := range gradeScale {
		if got := DecToGrade(n); got != g {
			t.Fatalf("DecToGrade(%d)=%q want %q", n, got, g)
		}
	}
	if got := DecToGrade(13); got != "" {
		t.Fatalf("DecToGrade(13)=%q want empty", got)
	}
	if got := DecToGrade(-1); got != "" {
		t.Fatalf("DecToGrade(-1)=%q want empty", got)
	}
}

func TestIsScanReady(t *testing.T) {
	cases := []struct {
		name string
		in   *Scan
		want bool
	}{
		{"absent", nil, false},
		{"missing state", &Scan{}, false},
		{"pending", &Scan{State: "PENDING"}, false},
		{"failed", &Scan{State: "FAILED"}, false},
		{"truncated", &Scan{State: "FINISHE"}, false},
		{"lowercase", &Scan{State: "finished"}, false},
		{"finished", &Scan{State: "FINISHED"}, true},
	}
	for _, c := range cases {
		if got := IsScanReady(c.in); got != c.want {
			t.Fatalf("%s: IsScanReady=%v want %v", c.name, got, c.want)
		}
	}
}

func TestComposeTags(t *testing.T) {
	s := &Scan{ScanID: "abc", Grade: "A+", LikelihoodIndicator: "LOW"}
	got, err := ComposeTags(s, "example.com")
	if err != nil {
		t.Fatalf("ComposeTags: %v", err)
	}
	want := []string{"scan_id:abc", "grade:A+", "likelihood_indicator:LOW", "hostname:example.com"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestComposeTags_MissingFields(t *testing.T) {
	_, err := ComposeTags(&Scan{Grade: "A"}, "example.com")
	var mf *MissingFieldError
	if !errors.As(err, &mf) {
		t.Fatalf("want MissingFieldError, got %v", err)
	}
	if len(mf.Fields) != 2 || mf.Fields[0] != "scan_id" || mf.Fields[1] != "likelihood_indicator" {
		t.Fatalf("unexpected missing fields: %v", mf.Fields)
	}
}

func TestScanDuration(t *testing.T) {
	cases := []struct {
		start, end string
		want       float64
	}{
		{"2020-01-01T00:00:00+00:00", "2020-01-01T00:05:00+00:00", 300},
		{"2020-01-01T00:00:00Z", "2020-01-01T00:00:01.5Z", 1.5},
		{"2020-01-01T01:00:00+01:00", "2020-01-01T00:00:10Z", 10},
		{"2020-01-01 00:00:00+00:00", "2020-01-01 00:01:00+00:00", 60},
		{"2020-01-01T00:00:00.250000", "2020-01-01T00:00:01", 0.75},
		{"Tue, 22 Mar 2016 21:51:40 GMT", "Tue, 22 Mar 2016 21:51:44 GMT", 4},
		{"Tue, 22 Mar 2016 21:51:40 +0000", "Tue, 22 Mar 2016 21:52:40 +0000", 60},
		{"2020-01-01T00:00:00+0000", "2020-01-01T00:00:30+0000", 30},
		{"2020-01-01T02:00:00+02", "2020-01-01T00:00:05Z", 5},
		{"2020-01-01 00:00:00-0130", "2020-01-01 01:30:02Z", 2},
		{"20200101T000000Z", "20200101T000100Z", 60},
		{"20200101T000000+0100", "20191231T230000Z", 0},
		{"2020-01-01T00:00:00Z", "2020/01/01 00:00:20", 20},
	}
	for _, c := range cases {
		got, err := ScanDuration(c.start, c.end)
		if err != nil {
			t.Fatalf("ScanDuration(%q,%q): %v", c.start, c.end, err)
		}
		if got != c.want {
			t.Fatalf("ScanDuration(%q,%q)=%v want %v", c.start, c.end, got, c.want)
		}
	}
}

func TestScanDuration_ParseError(t *testing.T) {
	_, err := ScanDuration("2020-01-01T00:00:00Z", "yesterday")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError, got %v", err)
	}
	if pe.Value != "yesterday" {
		t.Fatalf("unexpected value: %q", pe.Value)
	}
	if _, err := ScanDuration("", "2020-01-01T00:00:00Z"); err == nil {
		t.Fatalf("want error for empty start")
	}
}

func TestScan_DecodeAndValidate(t *testing.T) {
	var s Scan
	body := `{"state":"FINISHED","grade":"F","score":0,"scan_id":"s1","likelihood_indicator":"HIGH",
		"tests_quantity":12,"tests_passed":0,"tests_failed":12,
		"start_time":"2020-01-01T00:00:00Z","end_time":"2020-01-01T00:00:02Z"}`
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// zero values are present values
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestScan_ValidateReportsWireNames(t *testing.T) {
	var s Scan
	if err := json.Unmarshal([]byte(`{"state":"FINISHED","grade":"A","scan_id":7}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.ScanID != "7" {
		t.Fatalf("numeric scan_id should decode as text, got %q", s.ScanID)
	}
	err := s.Validate()
	var mf *MissingFieldError
	if !errors.As(err, &mf) {
		t.Fatalf("want MissingFieldError, got %v", err)
	}
	want := map[string]bool{
		"score": true, "likelihood_indicator": true, "tests_quantity": true,
		"tests_passed": true, "tests_failed": true, "start_time": true, "end_time": true,
	}
	if len(mf.Fields) != len(want) {
		t.Fatalf("unexpected fields: %v", mf.Fields)
	}
	for _, f := range mf.Fields {
		if !want[f] {
			t.Fatalf("unexpected missing field %q", f)
		}
	}
}

func TestText_Null(t *testing.T) {
	var s Scan
	if err := json.Unmarshal([]byte(`{"scan_id":null}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.ScanID != "" {
		t.Fatalf("want empty scan id, got %q", s.ScanID)
	}
}
