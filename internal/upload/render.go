package upload

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

const (
	errorPrefix  = "Error: "
	unknownError = "Unknown error"
)

// RenderSuccess pretty-prints a JSON body with two-space indentation,
// keeping the server's key order
func RenderSuccess(body []byte) (string, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

// RenderFailure renders a non-2xx body as "Error: <detail>". Bodies that are
// not JSON, or carry no usable detail, render as "Error: Unknown error".
func RenderFailure(body []byte) string {
	if !gjson.ValidBytes(body) {
		return errorPrefix + unknownError
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists(), detail.Type == gjson.Null, detail.Type == gjson.False:
		return errorPrefix + unknownError
	case detail.Type == gjson.String:
		if detail.Str == "" {
			return errorPrefix + unknownError
		}
		return errorPrefix + detail.Str
	case detail.Type == gjson.Number && detail.Num == 0:
		return errorPrefix + unknownError
	default:
		// structured details (e.g. validation error lists) render as JSON
		return errorPrefix + detail.Raw
	}
}

// RenderError renders a transport or parse failure using its message
func RenderError(err error) string {
	return errorPrefix + err.Error()
}

// Render maps the outcome of one submission to the output text
func Render(resp *Response, err error) string {
	if err != nil {
		return RenderError(err)
	}
	if !resp.OK() {
		return RenderFailure(resp.Body)
	}
	out, err := RenderSuccess(resp.Body)
	if err != nil {
		return RenderError(err)
	}
	return out
}
