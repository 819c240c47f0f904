package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func record(id int64, person, amount string, dir models.Direction) models.DebtRecord {
	return models.DebtRecord{
		ID:        id,
		Person:    person,
		Amount:    decimal.RequireFromString(amount),
		Direction: dir,
		CreatedAt: strPtr("2024-05-01 12:00:00"),
		UpdatedAt: strPtr("2024-05-01 12:00:00"),
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func jsonBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func TestDashboardHandler(t *testing.T) {
	entries := []models.DebtRecord{
		record(3, "Sam", "5", models.YouOwe),
		record(2, "Alex", "20", models.YouOwe),
		record(1, "Alex", "50", models.TheyOwe),
	}
	settings := models.DefaultSettings()
	settings.RecordsPerPage = 2

	tests := []struct {
		name               string
		query              string
		setupMocks         func(reader *MockDebtReader, cfg *MockSettingsReader)
		expectedStatusCode int
		check              func(t *testing.T, resp map[string]any)
	}{
		{
			name:  "second page keeps summary over all entries",
			query: "?page=2&sort=amount&order=asc&person=%20Alex%20",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().
					List(gomock.Any(), models.DebtFilter{Person: "Alex"}, models.DebtSort{Key: models.SortAmount}).
					Return(entries, nil)
				reader.EXPECT().People(gomock.Any()).Return([]string{"Alex", "Sam"}, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(settings)
			},
			expectedStatusCode: http.StatusOK,
			check: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, 2.0, resp["page"])
				assert.Equal(t, 2.0, resp["total_pages"])
				assert.Equal(t, 3.0, resp["total"])
				assert.Len(t, resp["entries"], 1)

				summary := resp["summary"].(map[string]any)
				assert.Equal(t, 25.0, summary["net_balance"])
				assert.Equal(t, 50.0, summary["total_owed_to_you"])
				assert.Equal(t, 25.0, summary["total_you_owe"])

				filters := resp["filters"].(map[string]any)
				assert.Equal(t, "Alex", filters["person"])
				assert.Equal(t, "amount", filters["sort"])
				assert.Equal(t, "asc", filters["order"])
			},
		},
		{
			name:  "page past the end is clamped",
			query: "?page=9",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().List(gomock.Any(), models.DebtFilter{}, models.DefaultSort).Return(entries, nil)
				reader.EXPECT().People(gomock.Any()).Return([]string{"Alex", "Sam"}, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(settings)
			},
			expectedStatusCode: http.StatusOK,
			check: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, 2.0, resp["page"])
				first := resp["entries"].([]any)[0].(map[string]any)
				assert.Equal(t, "Alex", first["person"])
				assert.Equal(t, "$50.00", first["amount_display"])
				assert.Equal(t, "50", first["net_amount"])
				assert.Equal(t, "2024-05-01", first["created_display"])
			},
		},
		{
			name:  "empty ledger",
			query: "",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				reader.EXPECT().People(gomock.Any()).Return(nil, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(models.DefaultSettings())
			},
			expectedStatusCode: http.StatusOK,
			check: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, 1.0, resp["page"])
				assert.Equal(t, 1.0, resp["total_pages"])
				assert.Empty(t, resp["entries"])
				assert.NotNil(t, resp["people"])
			},
		},
		{
			name: "list failure",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			check: func(t *testing.T, resp map[string]any) {
				assert.Contains(t, resp, "error")
			},
		},
		{
			name: "people failure",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(entries, nil)
				reader.EXPECT().People(gomock.Any()).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			check: func(t *testing.T, resp map[string]any) {
				assert.Contains(t, resp, "error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			reader := NewMockDebtReader(ctrl)
			cfg := NewMockSettingsReader(ctrl)
			tt.setupMocks(reader, cfg)

			req := httptest.NewRequest(http.MethodGet, "/api/debts"+tt.query, nil)
			rr := httptest.NewRecorder()

			NewDashboardHandler(reader, cfg).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			tt.check(t, decodeBody(t, rr))
		})
	}
}

func TestCreateDebtHandler(t *testing.T) {
	created := record(7, "Alex", "12.5", models.TheyOwe)

	tests := []struct {
		name               string
		contentType        string
		body               func() *bytes.Reader
		setupMocks         func(writer *MockDebtWriter, cfg *MockSettingsReader)
		expectedStatusCode int
		expectedError      string
	}{
		{
			name:        "json with numeric amount",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": " Alex ", "amount": 12.5, "direction": "they_owe", "note": " lunch "})
			},
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in models.DebtInput) (*models.DebtRecord, error) {
						assert.Equal(t, "Alex", in.Person)
						assert.True(t, decimal.RequireFromString("12.5").Equal(in.Amount))
						assert.Equal(t, models.TheyOwe, in.Direction)
						assert.Equal(t, "lunch", in.Note)
						return &created, nil
					})
				cfg.EXPECT().Load(gomock.Any()).Return(models.DefaultSettings())
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:        "form post",
			contentType: "application/x-www-form-urlencoded",
			body: func() *bytes.Reader {
				v := url.Values{"person": {"Alex"}, "amount": {"12.5"}, "direction": {"they_owe"}}
				return bytes.NewReader([]byte(v.Encode()))
			},
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&created, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(models.DefaultSettings())
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:        "blank person",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "   ", "amount": "x", "direction": "nope"})
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Person's name is required",
		},
		{
			name:        "amount not a number",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": "ten", "direction": "nope"})
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid amount",
		},
		{
			name:        "zero amount",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": 0, "direction": "they_owe"})
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Amount must be positive",
		},
		{
			name:        "negative amount",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": "-3", "direction": "they_owe"})
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Amount must be positive",
		},
		{
			name:        "unknown direction",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": "3", "direction": "sideways"})
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid direction",
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return bytes.NewReader([]byte("{not json"))
			},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid request body",
		},
		{
			name:        "rejected by the database",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": "3", "direction": "you_owe"})
			},
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, models.ErrConstraintViolation)
			},
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedError:      "An error occurred while adding the debt record",
		},
		{
			name:        "service failure",
			contentType: "application/json",
			body: func() *bytes.Reader {
				return jsonBody(map[string]any{"person": "Alex", "amount": "3", "direction": "you_owe"})
			},
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "An error occurred while adding the debt record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := NewMockDebtWriter(ctrl)
			cfg := NewMockSettingsReader(ctrl)
			tt.setupMocks(writer, cfg)

			req := httptest.NewRequest(http.MethodPost, "/api/debts", tt.body())
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			NewCreateDebtHandler(writer, cfg).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			resp := decodeBody(t, rr)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, resp["error"])
				return
			}
			assert.Equal(t, "Debt record for Alex added successfully", resp["message"])
			entry := resp["entry"].(map[string]any)
			assert.Equal(t, 7.0, entry["id"])
			assert.Equal(t, "$12.50", entry["amount_display"])
		})
	}
}

// serveRouted runs h behind a chi route so {id} is populated.
func serveRouted(method, pattern, target string, h http.HandlerFunc, body *bytes.Reader) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUpdateDebtHandler(t *testing.T) {
	updated := record(4, "Alex", "45", models.TheyOwe)
	valid := map[string]any{"person": "Alex", "amount": "45", "direction": "they_owe"}

	tests := []struct {
		name               string
		target             string
		body               map[string]any
		setupMocks         func(writer *MockDebtWriter, cfg *MockSettingsReader)
		expectedStatusCode int
		expectedKey        string
	}{
		{
			name:   "updated",
			target: "/api/debts/4",
			body:   valid,
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Update(gomock.Any(), int64(4), gomock.Any()).Return(&updated, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(models.DefaultSettings())
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "entry",
		},
		{
			name:               "bad id",
			target:             "/api/debts/abc",
			body:               valid,
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusNotFound,
			expectedKey:        "error",
		},
		{
			name:               "invalid body never reaches the service",
			target:             "/api/debts/4",
			body:               map[string]any{"person": "Alex", "amount": "-1", "direction": "they_owe"},
			setupMocks:         func(writer *MockDebtWriter, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedKey:        "error",
		},
		{
			name:   "missing entry",
			target: "/api/debts/99",
			body:   valid,
			setupMocks: func(writer *MockDebtWriter, cfg *MockSettingsReader) {
				writer.EXPECT().Update(gomock.Any(), int64(99), gomock.Any()).Return(nil, models.ErrNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
			expectedKey:        "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := NewMockDebtWriter(ctrl)
			cfg := NewMockSettingsReader(ctrl)
			tt.setupMocks(writer, cfg)

			rr := serveRouted(http.MethodPut, "/api/debts/{id}", tt.target, NewUpdateDebtHandler(writer, cfg), jsonBody(tt.body))

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			assert.Contains(t, decodeBody(t, rr), tt.expectedKey)
		})
	}
}

func TestGetDebtHandler(t *testing.T) {
	rec := record(2, "Alex", "20", models.YouOwe)

	tests := []struct {
		name               string
		target             string
		setupMocks         func(reader *MockDebtReader, cfg *MockSettingsReader)
		expectedStatusCode int
	}{
		{
			name:   "found",
			target: "/api/debts/2",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().Get(gomock.Any(), int64(2)).Return(&rec, nil)
				cfg.EXPECT().Load(gomock.Any()).Return(models.DefaultSettings())
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:   "not found",
			target: "/api/debts/3",
			setupMocks: func(reader *MockDebtReader, cfg *MockSettingsReader) {
				reader.EXPECT().Get(gomock.Any(), int64(3)).Return(nil, models.ErrNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "zero id",
			target:             "/api/debts/0",
			setupMocks:         func(reader *MockDebtReader, cfg *MockSettingsReader) {},
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			reader := NewMockDebtReader(ctrl)
			cfg := NewMockSettingsReader(ctrl)
			tt.setupMocks(reader, cfg)

			rr := serveRouted(http.MethodGet, "/api/debts/{id}", tt.target, NewGetDebtHandler(reader, cfg), nil)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			resp := decodeBody(t, rr)
			if rr.Code == http.StatusOK {
				assert.Equal(t, "-20", resp["net_amount"])
				assert.Equal(t, "$20.00", resp["amount_display"])
			}
		})
	}
}

func TestDeleteDebtHandler(t *testing.T) {
	tests := []struct {
		name               string
		target             string
		setupMocks         func(writer *MockDebtWriter)
		expectedStatusCode int
		expectedMessage    string
	}{
		{
			name:   "deleted",
			target: "/api/debts/5",
			setupMocks: func(writer *MockDebtWriter) {
				writer.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedMessage:    "Entry deleted successfully",
		},
		{
			name:   "missing",
			target: "/api/debts/5",
			setupMocks: func(writer *MockDebtWriter) {
				writer.EXPECT().Delete(gomock.Any(), int64(5)).Return(models.ErrNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
			expectedMessage:    "Entry not found",
		},
		{
			name:   "failure",
			target: "/api/debts/5",
			setupMocks: func(writer *MockDebtWriter) {
				writer.EXPECT().Delete(gomock.Any(), int64(5)).Return(assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedMessage:    "An error occurred while deleting the entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := NewMockDebtWriter(ctrl)
			tt.setupMocks(writer)

			rr := serveRouted(http.MethodDelete, "/api/debts/{id}", tt.target, NewDeleteDebtHandler(writer), nil)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			resp := decodeBody(t, rr)
			msg, _ := resp["message"].(string)
			if msg == "" {
				msg, _ = resp["error"].(string)
			}
			assert.True(t, strings.EqualFold(tt.expectedMessage, msg), msg)
		})
	}
}
