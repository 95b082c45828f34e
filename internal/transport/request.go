package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

// CheckStatus returns an APIError for any non-2xx response. The body is
// consumed and closed in that case.
func CheckStatus(resp *http.Response, service string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer closeBody(resp)

	body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodySize))
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	apiErr := &errors.APIError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.Endpoint = resp.Request.URL.String()
	}
	return apiErr
}

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(resp *http.Response, service string, target any) error {
	if err := CheckStatus(resp, service); err != nil {
		return err
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapTransport(service, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", service+" response", err)
	}
	return nil
}

// ReadText returns the body of a successful response as trimmed text.
func ReadText(resp *http.Response, service string) (string, error) {
	if err := CheckStatus(resp, service); err != nil {
		return "", err
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WrapTransport(service, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Discard drains and closes a successful response.
func Discard(resp *http.Response, service string) error {
	if err := CheckStatus(resp, service); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	closeBody(resp)
	return nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close response body")
	}
}
