package sav

import (
	"encoding/json"
	"os"

	"surveypipe/internal/errors"
)

// CodebookSuffix is appended to a container's path to locate its
// sidecar codebook, e.g. students.sas7bdat.labels.json
const CodebookSuffix = ".labels.json"

// Codebook carries the metadata the binary container cannot: display
// labels per column and value-code to category dictionaries
type Codebook struct {
	Labels      map[string]string            `json:"labels"`
	ValueLabels map[string]map[string]string `json:"valueLabels"`
}

// loadCodebook reads the sidecar codebook next to the container. A
// missing sidecar is not an error and yields an empty codebook, so
// labeling degrades to keeping raw names and values.
func loadCodebook(containerPath string) (*Codebook, error) {
	raw, err := os.ReadFile(containerPath + CodebookSuffix)
	if os.IsNotExist(err) {
		return &Codebook{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading codebook for %s", containerPath)
	}
	var cb Codebook
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, errors.DecodeFailed(containerPath+CodebookSuffix, err)
	}
	return &cb, nil
}
