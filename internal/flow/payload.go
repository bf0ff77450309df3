package flow

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoPayload = errors.New("no JSON payload in model output")

// decodePayload extracts the outermost JSON object embedded in the model's
// output and unmarshals it into v. Surrounding prose is tolerated, but the
// payload itself must be well formed; any deviation is an error the caller
// maps to the error outcome.
func decodePayload(output string, v any) error {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end <= start {
		return errNoPayload
	}
	return json.Unmarshal([]byte(output[start:end+1]), v)
}
