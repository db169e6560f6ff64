package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp encodes rsp as JSON and writes it with the given status code.
// An optional location is set as the Location header (used with 202/201).
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, rsp any, location ...string) {
	body, err := json.Marshal(rsp)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to marshal response")
		ErrApplicationError("unable to encode response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(body)
}

// SendStreamRsp copies rsp.Body to the client with the response's content
// type and extra headers. The body is always closed.
func SendStreamRsp(ctx context.Context, w http.ResponseWriter, rsp *Response) {
	defer rsp.Body.Close()
	for k, vv := range rsp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if rsp.ContentType != "" {
		w.Header().Set("Content-Type", rsp.ContentType)
	}
	statusCode := rsp.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, rsp.Body); err != nil {
		// Headers are already out; nothing to send, just record it.
		log.Ctx(ctx).Error().Err(err).Msg("failed to stream response body")
	}
}
