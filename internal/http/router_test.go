package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/database"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast/additive"
	retailHttp "github.com/MrJamesThe3rd/retailboard/internal/http"
	"github.com/MrJamesThe3rd/retailboard/internal/http/datasets"
	"github.com/MrJamesThe3rd/retailboard/internal/http/eda"
	forecastHandler "github.com/MrJamesThe3rd/retailboard/internal/http/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/http/segments"
	"github.com/MrJamesThe3rd/retailboard/internal/http/uploads"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
	uploadStore "github.com/MrJamesThe3rd/retailboard/internal/upload/store"
)

func newServer(t *testing.T, uploadsPerMinute int) (*httptest.Server, *http.Client) {
	t.Helper()

	db, err := database.New(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	var (
		uploadService = upload.NewService(uploadStore.New(db, database.DriverSQLite), 1<<20)
		sessions      = session.NewManager(session.NewStore(time.Hour), session.NewTokens("test", time.Hour), false)
		dash          = dashboard.NewService(
			forecast.NewService(additive.New(additive.DefaultConfig()), 30),
			segment.NewEngine(4, 42),
		)
	)

	router := retailHttp.New(
		retailHttp.Options{CORSOrigins: []string{"http://localhost:3000"}, UploadsPerMinute: uploadsPerMinute},
		sessions,
		datasets.NewHandler(uploadService, sessions, dash, 1<<20),
		eda.NewHandler(sessions, dash),
		forecastHandler.NewHandler(sessions, dash),
		segments.NewHandler(sessions, dash),
		uploads.NewHandler(uploadService),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return srv, &http.Client{Jar: jar}
}

func retailCSV() string {
	var b strings.Builder

	b.WriteString("InvoiceNo,InvoiceDate,Description,Quantity,UnitPrice,CustomerID,Country\n")

	for i := range 30 {
		for c := range 6 {
			if (i+c)%(c+1) != 0 {
				continue
			}

			fmt.Fprintf(&b, "%d,2024-03-%02d 09:%02d,ITEM-%d,%d,%d.25,%d,Country-%d\n",
				600000+i*10+c, 1+i, c, c%4, 1+c, 1+i%3, 17000+c, c%3)
		}
	}

	b.WriteString("C999999,2024-03-05 10:00,ITEM-1,1,1,17000,Country-0\n")

	return b.String()
}

func postFile(t *testing.T, client *http.Client, url, filename, body string) *http.Response {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = io.WriteString(fw, body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := client.Post(url+"/api/v1/datasets/", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func getJSON(t *testing.T, client *http.Client, url string, v any) int {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}

	return resp.StatusCode
}

func TestRouter_NoDataset(t *testing.T) {
	srv, client := newServer(t, 0)

	for _, path := range []string{
		"/api/v1/datasets/current",
		"/api/v1/eda/sales-over-time",
		"/api/v1/forecast/",
		"/api/v1/segments/",
	} {
		assert.Equal(t, http.StatusConflict, getJSON(t, client, srv.URL+path, nil), path)
	}
}

func TestRouter_UploadErrors(t *testing.T) {
	type testCase struct {
		name     string
		filename string
		body     string
		wantCode int
	}

	tests := []testCase{
		{name: "UnsupportedFormat", filename: "sales.json", body: "{}", wantCode: http.StatusUnsupportedMediaType},
		{name: "NoDateColumn", filename: "sales.csv", body: "Product,Amount\nMUG,3\n", wantCode: http.StatusUnprocessableEntity},
		{name: "Empty", filename: "sales.csv", body: "\n\n", wantCode: http.StatusBadRequest},
	}

	srv, client := newServer(t, 0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postFile(t, client, srv.URL, tt.filename, tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}

	assert.Equal(t, http.StatusConflict, getJSON(t, client, srv.URL+"/api/v1/datasets/current", nil))
}

func TestRouter_Dashboard(t *testing.T) {
	srv, client := newServer(t, 0)

	resp := postFile(t, client, srv.URL, "online_retail.csv", retailCSV())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var preview struct {
		Filename  string            `json:"filename"`
		Columns   []string          `json:"columns"`
		Rows      [][]string        `json:"rows"`
		Schema    map[string]string `json:"schema"`
		Dropped   map[string]int    `json:"dropped"`
		CleanRows int               `json:"clean_rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))

	assert.Equal(t, "online_retail.csv", preview.Filename)
	assert.Equal(t, "InvoiceDate", preview.Columns[0])
	assert.Len(t, preview.Rows, dashboard.PreviewRows)
	assert.Equal(t, "CustomerID", preview.Schema["customer"])
	assert.Equal(t, 1, preview.Dropped["cancelled"])

	t.Run("Current", func(t *testing.T) {
		var current struct {
			CleanRows int `json:"clean_rows"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/datasets/current", &current))
		assert.Equal(t, preview.CleanRows, current.CleanRows)
	})

	t.Run("SalesOverTime", func(t *testing.T) {
		var got struct {
			Days []struct {
				Date  string  `json:"date"`
				Sales float64 `json:"sales"`
			} `json:"days"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/eda/sales-over-time", &got))
		assert.Len(t, got.Days, 30)
		assert.Equal(t, "2024-03-01", got.Days[0].Date)
	})

	t.Run("TopProducts", func(t *testing.T) {
		var got struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/eda/top-products?n=2", &got))
		assert.Len(t, got.Items, 2)

		assert.Equal(t, http.StatusBadRequest, getJSON(t, client, srv.URL+"/api/v1/eda/top-products?n=abc", nil))
	})

	t.Run("Countries", func(t *testing.T) {
		var got struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/eda/countries", &got))
		assert.Len(t, got.Items, 3)
	})

	t.Run("Forecast", func(t *testing.T) {
		var got struct {
			Points []struct {
				DS        string  `json:"ds"`
				Yhat      float64 `json:"yhat"`
				YhatLower float64 `json:"yhat_lower"`
				YhatUpper float64 `json:"yhat_upper"`
			} `json:"points"`
			History int `json:"history"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/forecast/", &got))
		assert.Equal(t, 30, got.History)
		require.Len(t, got.Points, 60)
		assert.Equal(t, "2024-04-29", got.Points[59].DS)
	})

	t.Run("ForecastSpreadsheet", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/api/v1/forecast/export.xlsx")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "sales_forecast.xlsx")

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetList()[0])
		require.NoError(t, err)
		assert.Len(t, rows, 61)
	})

	t.Run("ForecastReport", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/api/v1/forecast/report.txt")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 22, strings.Count(string(body), "\n"))
	})

	t.Run("Segments", func(t *testing.T) {
		var got struct {
			Records []struct {
				CustomerID string `json:"customer_id"`
				Segment    int    `json:"segment"`
			} `json:"records"`
			Clusters int    `json:"clusters"`
			Status   string `json:"status"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/segments/", &got))
		assert.Len(t, got.Records, 6)
		assert.Equal(t, 4, got.Clusters)
		assert.Equal(t, "ok", got.Status)
	})

	t.Run("Scatter", func(t *testing.T) {
		var got struct {
			Axes   []string `json:"axes"`
			Points []struct {
				Monetary float64 `json:"monetary"`
			} `json:"points"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/segments/scatter", &got))
		assert.Equal(t, []string{"recency", "frequency", "monetary"}, got.Axes)
		assert.Len(t, got.Points, 6)
	})

	t.Run("Uploads", func(t *testing.T) {
		var got []struct {
			Filename string `json:"filename"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/v1/uploads/", &got))
		require.Len(t, got, 1)
		assert.Equal(t, "online_retail.csv", got[0].Filename)
	})
}

func TestRouter_SessionsAreIsolated(t *testing.T) {
	srv, client := newServer(t, 0)

	resp := postFile(t, client, srv.URL, "a.csv", retailCSV())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stranger := &http.Client{}
	assert.Equal(t, http.StatusConflict, getJSON(t, stranger, srv.URL+"/api/v1/datasets/current", nil))
}

func TestRouter_UploadRateLimit(t *testing.T) {
	srv, client := newServer(t, 1)

	first := postFile(t, client, srv.URL, "a.csv", retailCSV())
	assert.Equal(t, http.StatusCreated, first.StatusCode)

	second := postFile(t, client, srv.URL, "a.csv", retailCSV())
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
