package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{model.ErrRoomNotFound, http.StatusNotFound},
		{model.ErrSeatNotFound, http.StatusForbidden},
		{model.ErrRoomFull, http.StatusConflict},
		{model.ErrNameTaken, http.StatusConflict},
		{model.ErrInvalidName, http.StatusBadRequest},
		{model.ErrTrucoMaxed, http.StatusConflict},
		{auth.ErrInvalidSession, http.StatusUnauthorized},
		{fmt.Errorf("saving room R1: %w", model.ErrRoomNotFound), http.StatusNotFound},
		{NewWrongRoomError(), http.StatusForbidden},
		{errors.New("redis: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.ErrRoomFull)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeRoomFull, resp.Error.Code)
}

func TestInternalErrorsDoNotLeakDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("dial tcp 10.0.0.5:6379: refused"))

	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
	assert.Contains(t, rr.Body.String(), CodeInternalError)
}
