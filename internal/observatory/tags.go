package observatory

import "fmt"

// ComposeTags builds the tag set for a finished scan:
// scan_id, grade, likelihood_indicator, then hostname.
func ComposeTags(s *Scan, hostname string) ([]string, error) {
	fields := []struct {
		key, value string
	}{
		{"scan_id", string(s.ScanID)},
		{"grade", s.Grade},
		{"likelihood_indicator", s.LikelihoodIndicator},
	}

	tags := make([]string, 0, len(fields)+1)
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.key)
			continue
		}
		tags = append(tags, fmt.Sprintf("%s:%s", f.key, f.value))
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	tags = append(tags, "hostname:"+hostname)
	return tags, nil
}
