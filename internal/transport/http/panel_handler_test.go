package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelHandler_Upload(t *testing.T) {
	t.Run("raw csv body", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := do(t, router, http.MethodPost, "/api/panel?name=fixture.csv", "text/csv", panelCSV())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decode(t, rec)
		assert.Equal(t, "Loaded 12 records from fixture.csv", body["message"])
		summary := body["summary"].(map[string]interface{})
		assert.EqualValues(t, 2, summary["entities"])
		assert.ElementsMatch(t, []interface{}{"math_score", "reading_score"}, summary["models"])
	})

	t.Run("multipart file field", func(t *testing.T) {
		router := newTestRouter(t, nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "counties.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(panelCSV()))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		rec := do(t, router, http.MethodPost, "/api/panel", mw.FormDataContentType(), buf.String())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "counties.csv", decode(t, rec)["summary"].(map[string]interface{})["source"])
	})

	t.Run("multipart without file", func(t *testing.T) {
		router := newTestRouter(t, nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())

		rec := do(t, router, http.MethodPost, "/api/panel", mw.FormDataContentType(), buf.String())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("multipart over the size limit", func(t *testing.T) {
		router := newTestRouter(t, nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "huge.csv")
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("Adams-2020,1,2,3,4,5,6\n"), 60000))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		// Unknown length so the limit trips while the form is parsed
		req := httptest.NewRequest(http.MethodPost, "/api/panel", bytes.NewReader(buf.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", body["error_code"])
		assert.Equal(t, "Uploaded panel exceeds the size limit", body["detail"])
	})

	t.Run("missing key column", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := do(t, router, http.MethodPost, "/api/panel", "text/csv", "entity,math_score\nA,1\n")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.Equal(t, "county-year", decode(t, rec)["column"])
	})

	t.Run("unsupported extension", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := do(t, router, http.MethodPost, "/api/panel?name=panel.pdf", "application/pdf", "x")
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestPanelHandler_Browse(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/api/panel", "", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	upload(t, router)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		check          func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:           "summary",
			target:         "/api/panel",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.EqualValues(t, 12, decode(t, rec)["records"])
			},
		},
		{
			name:           "entities",
			target:         "/api/panel/entities",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decode(t, rec)
				assert.Equal(t, []interface{}{"Adams", "Baker"}, body["entities"])
				assert.EqualValues(t, 2, body["count"])
			},
		},
		{
			name:           "years most recent first",
			target:         "/api/panel/entities/Baker/years",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []interface{}{2021.0, 2020.0}, decode(t, rec)["years"])
			},
		},
		{
			name:           "record with absent values",
			target:         "/api/panel/entities/Baker/years/2020",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				values := decode(t, rec)["values"].(map[string]interface{})
				assert.Equal(t, "12100", values["spending_per_student"])
				assert.Equal(t, "N/A", values["enrollment"])
			},
		},
		{name: "unknown entity", target: "/api/panel/entities/Nowhere/years", expectedStatus: http.StatusNotFound},
		{name: "unknown year", target: "/api/panel/entities/Baker/years/1999", expectedStatus: http.StatusNotFound},
		{name: "malformed year", target: "/api/panel/entities/Baker/years/soon", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, "", "")
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}
