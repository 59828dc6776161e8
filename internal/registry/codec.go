// Model-name codec: per-call configuration as base64 JSON inside a
// synthetic model identifier.
//
// Format: "cortensor-<base64url(JSON ModelSpec)>". The bare names
// "cortensor" and "" mean no overrides. This channel exists because chat
// clients can only pass a single model string; explicit RequestOptions
// injection is preferred wherever the caller controls the code path.
package registry

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cortensor/openai-gateway/internal/transform"
)

// ModelPrefix introduces an encoded model name.
const ModelPrefix = "cortensor-"

// BareModel is the plain model name carrying no overrides.
const BareModel = "cortensor"

// ModelSpec is the JSON payload encoded into a model name: sampling
// overrides plus an optional provider handle naming a registered Searcher.
type ModelSpec struct {
	transform.RequestOptions
	ProviderRef string `json:"provider_ref,omitempty"`
}

// EncodeModelName serializes a spec into a synthetic model name.
func EncodeModelName(spec *ModelSpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode model spec: %w", err)
	}
	return ModelPrefix + base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeModelName parses a model name. Bare names yield a nil spec with no
// error; a malformed encoded payload is an error so typos do not silently
// run with defaults.
func DecodeModelName(name string) (*ModelSpec, error) {
	if name == "" || name == BareModel {
		return nil, nil
	}
	if !strings.HasPrefix(name, ModelPrefix) {
		return nil, nil // foreign model names pass through with defaults
	}

	payload := strings.TrimPrefix(name, ModelPrefix)
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid model name payload: %w", err)
	}

	var spec ModelSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("invalid model spec JSON: %w", err)
	}
	return &spec, nil
}
