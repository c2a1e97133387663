package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Seed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectedCount  float64
	}{
		{
			name:           "Success",
			mockReturn:     model.SampleProducts(),
			expectedStatus: http.StatusOK,
			expectedCount:  3,
		},
		{
			name:           "Nil slice is reported as empty array",
			mockReturn:     nil,
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "Service error",
			mockError:      errors.New("permission denied"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.mockError != nil {
				mockService.On("List", mock.Anything).Return(nil, tt.mockError)
			} else {
				mockService.On("List", mock.Anything).Return(tt.mockReturn, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			body := decodeBody(t, w)
			if tt.mockError != nil {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, model.MsgListFailed, body["message"])
				assert.Equal(t, "permission denied", body["error"])
			} else {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, tt.expectedCount, body["count"])
				assert.NotNil(t, body["data"])
				assert.Len(t, body["data"], int(tt.expectedCount))
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_List_KeyOrder(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, zerolog.Nop())
	mockService.On("List", mock.Anything).Return([]model.Product{
		{ID: 4, Name: "Desk Lamp", Price: 15.5, Category: "Home", CreatedAt: "2024-05-01T10:00:00.000Z"},
	}, nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	expected := `{"success":true,"count":1,"data":[{"id":4,"name":"Desk Lamp","price":15.5,"category":"Home","description":"","createdAt":"2024-05-01T10:00:00.000Z"}]}`
	assert.Equal(t, expected, strings.TrimSpace(w.Body.String()))
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	created := &model.Product{
		ID:        4,
		Name:      "Desk Lamp",
		Price:     15.5,
		Category:  "Home",
		CreatedAt: "2024-05-01T10:00:00.000Z",
	}

	tests := []struct {
		name            string
		body            string
		expectService   bool
		mockReturn      *model.Product
		mockError       error
		expectedStatus  int
		expectedMessage string
		expectedError   string
	}{
		{
			name:            "Success",
			body:            `{"name":"Desk Lamp","price":15.5,"category":"Home"}`,
			expectService:   true,
			mockReturn:      created,
			expectedStatus:  http.StatusCreated,
			expectedMessage: model.MsgCreated,
		},
		{
			name:            "Validation error",
			body:            `{"price":10,"category":"Home"}`,
			expectService:   true,
			mockError:       model.NewDomainError(model.ErrCodeMissingField, model.MsgRequiredFields, "name"),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: model.MsgRequiredFields,
			expectedError:   "missing fields: name",
		},
		{
			name:            "Empty body is validated as an empty object",
			body:            ``,
			expectService:   true,
			mockError:       model.NewDomainError(model.ErrCodeMissingField, model.MsgRequiredFields, "name", "price", "category"),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: model.MsgRequiredFields,
			expectedError:   "missing fields: name, price, category",
		},
		{
			name:            "Malformed JSON",
			body:            `{"name": "Lamp",`,
			expectService:   false,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: model.MsgInvalidJSON,
		},
		{
			name:            "Wrong type for name",
			body:            `{"name": 12, "price": 1, "category": "Home"}`,
			expectService:   false,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: model.MsgInvalidJSON,
		},
		{
			name:            "Storage error",
			body:            `{"name":"Desk Lamp","price":15.5,"category":"Home"}`,
			expectService:   true,
			mockError:       errors.New("failed to add product: no space left on device"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: model.MsgCreateFailed,
			expectedError:   "failed to add product: no space left on device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				if tt.mockError != nil {
					mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateProductRequest")).
						Return(nil, tt.mockError)
				} else {
					mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateProductRequest")).
						Return(tt.mockReturn, nil)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.expectedMessage, body["message"])
			assert.Equal(t, tt.expectedStatus == http.StatusCreated, body["success"])
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			}
			if tt.expectedStatus == http.StatusCreated {
				data := body["data"].(map[string]any)
				assert.Equal(t, float64(4), data["id"])
				assert.Equal(t, "", data["description"])
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_Create_PassesRequest(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, zerolog.Nop())

	mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateProductRequest) bool {
		return req.Name == "Desk Lamp" &&
			string(req.Price) == `"15.5"` &&
			req.Category == "Home" &&
			req.Description == "Warm light"
	})).Return(&model.Product{ID: 1}, nil)

	body := `{"name":"Desk Lamp","price":"15.5","category":"Home","description":"Warm light"}`
	w := httptest.NewRecorder()
	handler.Create(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestInfo(t *testing.T) {
	w := httptest.NewRecorder()
	Info(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	expected := `{"message":"E-commerce API is running!","endpoints":{"getProducts":"GET /products","addProduct":"POST /products"}}`
	assert.Equal(t, expected, strings.TrimSpace(w.Body.String()))
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(zerolog.Nop())(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, model.MsgRouteNotFound, body["message"])
	assert.Equal(t, "GET /nope", body["error"])
}
