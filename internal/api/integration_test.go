package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexivanou/cityinfo-api/internal/auth"
	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/alexivanou/cityinfo-api/internal/database"
	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"github.com/alexivanou/cityinfo-api/internal/service"
	"github.com/alexivanou/cityinfo-api/internal/stats"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// recordingMailer implements mail.Mailer interface
type recordingMailer struct {
	mock.Mock
}

func (m *recordingMailer) Send(subject, message string) {
	m.Called(subject, message)
}

type integrationStack struct {
	handler http.Handler
	repo    repository.CityInfoRepository
	mailer  *recordingMailer
	tokens  *auth.TokenService
}

func addCity(t *testing.T, repo repository.CityInfoRepository, city *model.City) {
	t.Helper()
	uow := repo.NewUnitOfWork()
	uow.AddCity(city)
	require.NoError(t, uow.SaveChanges(context.Background()))
}

func setupIntegrationStack(t *testing.T, repo repository.CityInfoRepository, mutate func(*Options)) *integrationStack {
	tokens, err := auth.NewTokenService(config.AuthConfig{
		Secret:        testSecret,
		Issuer:        "cityinfo-api",
		Audience:      "cityinfo-api",
		TokenLifetime: time.Hour,
	})
	require.NoError(t, err)

	mailer := new(recordingMailer)
	svc := service.NewService(repo, mailer, zap.NewNop())
	opts := Options{
		Logger:      zap.NewNop(),
		Tokens:      tokens,
		Credentials: auth.AnyCredentials{},
		Metrics:     NewMetrics(),
	}
	if mutate != nil {
		mutate(&opts)
	}

	return &integrationStack{
		handler: NewRouter(svc, opts),
		repo:    repo,
		mailer:  mailer,
		tokens:  tokens,
	}
}

func (s *integrationStack) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestAPI_Integration_ReykjavikScenario(t *testing.T) {
	repo := repository.NewMemoryRepository()
	addCity(t, repo, &model.City{Name: "Reykjavik"})
	stack := setupIntegrationStack(t, repo, nil)

	rr := stack.do("POST", "/api/cities/1/pointsofinterest", `{"name":"Hallgrímskirkja"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Hallgrímskirkja","description":null}`, rr.Body.String())

	location := rr.Header().Get("Location")
	require.Equal(t, "/api/cities/1/pointsofinterest/1", location)

	created := rr.Body.String()
	rr = stack.do("GET", location, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, created, rr.Body.String())
}

func TestAPI_Integration_DeleteNotifies(t *testing.T) {
	repo := repository.NewMemoryRepository()
	addCity(t, repo, &model.City{
		Name:             "Paris",
		PointsOfInterest: []model.PointOfInterest{{Name: "Eiffel Tower"}},
	})
	stack := setupIntegrationStack(t, repo, nil)

	t.Run("missing POI", func(t *testing.T) {
		rr := stack.do("DELETE", "/api/cities/1/pointsofinterest/99", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		stack.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("existing POI", func(t *testing.T) {
		stack.mailer.On("Send", "POI Deleted", "Deleted POI with id 1, from City with id 1").Once()

		rr := stack.do("DELETE", "/api/cities/1/pointsofinterest/1", "", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		stack.mailer.AssertExpectations(t)

		rr = stack.do("GET", "/api/cities/1/pointsofinterest/1", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAPI_Integration_PatchAndValidation(t *testing.T) {
	repo := repository.NewMemoryRepository()
	addCity(t, repo, &model.City{
		Name:             "Antwerp",
		PointsOfInterest: []model.PointOfInterest{{Name: "Cathedral"}},
	})
	stack := setupIntegrationStack(t, repo, nil)

	rr := stack.do("PATCH", "/api/cities/1/pointsofinterest/1",
		`[{"op":"replace","path":"/name","value":"`+strings.Repeat("x", 51)+`"}]`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var p problem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Contains(t, p.Errors, "name")

	rr = stack.do("GET", "/api/cities/1/pointsofinterest/1", "", nil)
	assert.JSONEq(t, `{"id":1,"name":"Cathedral","description":null}`, rr.Body.String())

	rr = stack.do("PATCH", "/api/cities/1/pointsofinterest/1",
		`[{"op":"add","path":"/description","value":"Cathedral of Our Lady"}]`, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = stack.do("GET", "/api/cities/1?includePOIs=true", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"id":1,"name":"Antwerp","description":null,"numberOfPointsOfInterest":1,
		"pointsOfInterest":[{"id":1,"name":"Cathedral","description":"Cathedral of Our Lady"}]
	}`, rr.Body.String())
}

func TestAPI_Integration_Pagination(t *testing.T) {
	repo := repository.NewMemoryRepository()
	for _, name := range []string{"Paris", "Antwerp", "New York City", "Reykjavik", "Berlin"} {
		addCity(t, repo, &model.City{Name: name})
	}
	stack := setupIntegrationStack(t, repo, nil)

	var names []string
	for page := 1; page <= 3; page++ {
		rr := stack.do("GET", "/api/cities?pageSize=2&pageNumber="+strconv.Itoa(page), "", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var meta model.PaginationMetadata
		require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("X-Pagination")), &meta))
		assert.Equal(t, model.PaginationMetadata{TotalItemCount: 5, PageSize: 2, CurrentPage: page, TotalPages: 3}, meta)

		var cities []model.CityWithoutPointsOfInterestDto
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cities))
		for _, c := range cities {
			names = append(names, c.Name)
		}
	}
	assert.Equal(t, []string{"Antwerp", "Berlin", "New York City", "Paris", "Reykjavik"}, names)
}

func TestAPI_Integration_Authentication(t *testing.T) {
	repo := repository.NewMemoryRepository()
	addCity(t, repo, &model.City{Name: "Reykjavik"})
	stack := setupIntegrationStack(t, repo, func(o *Options) {
		o.RequireAuth = true
	})

	rr := stack.do("GET", "/api/cities/1/pointsofinterest", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = stack.do("GET", "/api/cities/1/pointsofinterest", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// City routes stay public
	rr = stack.do("GET", "/api/cities/1", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = stack.do("POST", "/api/authentication/authenticate", `{"userName":"","password":""}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = stack.do("POST", "/api/authentication/authenticate", `{"userName":"bob","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var token string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))

	claims, err := stack.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Reykjavik", claims.City)

	rr = stack.do("GET", "/api/cities/1/pointsofinterest", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAPI_Integration_Files(t *testing.T) {
	dir := t.TempDir()
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.pdf"), pdf, 0o644))
	stack := setupIntegrationStack(t, repository.NewMemoryRepository(), func(o *Options) {
		o.FilesDir = dir
	})

	rr := stack.do("GET", "/api/files/1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, pdf, rr.Body.Bytes())

	rr = stack.do("GET", "/api/files/2", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_Integration_SQLiteStats(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeSQLite, Name: "api_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, cfg.Type))

	repo := repository.NewRepository(db, cfg.Type)
	addCity(t, repo, &model.City{
		Name:             "New York City",
		PointsOfInterest: []model.PointOfInterest{{Name: "Central Park"}, {Name: "Empire State Building"}},
	})
	stack := setupIntegrationStack(t, repo, func(o *Options) {
		o.Stats = stats.NewCollector(db, cfg)
	})

	rr := stack.do("GET", "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var s stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	assert.Equal(t, int64(2), s.Content.PointsOfInterest)

	rr = stack.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `cityinfo_http_requests_total{code="200",method="GET",route="/api/stats"} 1`)
}

func TestAPI_Integration_LargestPageNumber(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeSQLite, Name: "api_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, cfg.Type))

	repos := map[string]repository.CityInfoRepository{
		"memory": repository.NewMemoryRepository(),
		"sqlite": repository.NewRepository(db, cfg.Type),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			addCity(t, repo, &model.City{Name: "Reykjavik"})
			stack := setupIntegrationStack(t, repo, nil)

			rr := stack.do("GET", "/api/cities?pageNumber=9223372036854775807&pageSize=10", "", nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `[]`, rr.Body.String())

			var meta model.PaginationMetadata
			require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("X-Pagination")), &meta))
			assert.Equal(t, 1, meta.TotalItemCount)
			assert.Equal(t, model.MaxPageNumber, meta.CurrentPage)
		})
	}
}

func TestAPI_Integration_AuthenticationWithDefaultOptions(t *testing.T) {
	repo := repository.NewMemoryRepository()
	addCity(t, repo, &model.City{Name: "Reykjavik"})
	handler := NewRouter(service.NewService(repo, new(recordingMailer), zap.NewNop()), Options{RequireAuth: true})

	do := func(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	rr := do("POST", "/api/authentication/authenticate", `{"userName":`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do("POST", "/api/authentication/authenticate", `{"userName":"bob","password":""}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do("POST", "/api/authentication/authenticate", `{"userName":"bob","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var token string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))
	assert.NotEmpty(t, token)

	rr = do("GET", "/api/cities/1/pointsofinterest", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do("GET", "/api/cities/1/pointsofinterest", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)
}
