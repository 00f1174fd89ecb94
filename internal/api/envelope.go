package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/http/response"
)

// EnvelopeVersion is the response envelope format version.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the API envelope.
// Errors become {v, success:false, error, code, message, details}; everything
// else becomes {v, success:true, data}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, response.ErrorEnvelope:
		return v, nil
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	}

	if status != "" && !strings.HasPrefix(status, "2") {
		return response.Envelope{Version: EnvelopeVersion, Success: false, Error: "request failed"}, nil
	}
	return response.Success(v), nil
}
