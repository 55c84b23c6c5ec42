package domain

import (
	"strings"
	"time"
)

// Instance is one configured Observatory target.
type Instance struct {
	Host    string        `json:"host"`
	Timeout time.Duration `json:"timeout"`
	Tags    []string      `json:"tags,omitempty"`
	Hidden  bool          `json:"hidden"`
	APIURL  string        `json:"api_url"`
}

// Observation is a single gauge value produced by a check run.
type Observation struct {
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
	Tags       []string  `json:"tags"`
	Host       string    `json:"host"`
	ObservedAt time.Time `json:"observed_at"`
}

// Tag returns the value of the first "key:value" tag with the given key.
func (o Observation) Tag(key string) (string, bool) {
	prefix := key + ":"
	for _, t := range o.Tags {
		if strings.HasPrefix(t, prefix) {
			return t[len(prefix):], true
		}
	}
	return "", false
}
