package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/http/respond"
	"github.com/hongminglow/dbgate/internal/logging"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidRequestBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", common.ErrInvalidRequestBody)
	}
	return nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>". A
// missing or malformed header yields an empty token, which fails to decode.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// fail writes the taxonomy response for err and logs anything unexpected with
// its full detail.
func fail(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	if errors.Is(common.Kind(err), common.ErrUnexpected) {
		log.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	respond.Fail(w, err)
}
