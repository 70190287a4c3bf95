package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelgrove/metaverse/internal/database"
)

func Test_errorHandler(t *testing.T) {
	tcases := []struct {
		name       string
		panicValue any
	}{
		{
			name:       "panic with error",
			panicValue: errors.New("boom"),
		},
		{
			name:       "panic with string",
			panicValue: "boom",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _ := newTestApp(t, database.NopEventLogRepository{})

			h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.panicValue)
			}))

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected panic converted to 500")
			assert.Equal(t, "close", rr.Header().Get("Connection"))

			var apiErr ApiError
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		})
	}

	t.Run("passes through without panic", func(t *testing.T) {
		app, _, _ := newTestApp(t, database.NopEventLogRepository{})

		h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
