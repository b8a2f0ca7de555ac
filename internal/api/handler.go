package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	responder
	service service.ServiceInterface
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{responder: responder{logger: logger}, service: service}
}

// GetCities handles GET /api/cities
func (h *Handler) GetCities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	pageNumber, err := intQueryParam(query.Get("pageNumber"), model.DefaultPageNumber)
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid query parameter", "pageNumber must be an integer.", nil)
		return
	}
	pageSize, err := intQueryParam(query.Get("pageSize"), model.DefaultPageSize)
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid query parameter", "pageSize must be an integer.", nil)
		return
	}

	page, err := h.service.ListCities(r.Context(), model.CityFilter{
		Name:        query.Get("cityName"),
		SearchQuery: query.Get("searchQuery"),
		PageNumber:  pageNumber,
		PageSize:    pageSize,
	})
	if err != nil {
		h.writeInternalError(w, r, "Error listing cities", err)
		return
	}

	pagination, err := json.Marshal(page.Pagination)
	if err != nil {
		h.writeInternalError(w, r, "Error encoding pagination", err)
		return
	}
	w.Header().Set("X-Pagination", string(pagination))

	h.respond(w, r, http.StatusOK, page.Cities, newXMLList("cities", page.Cities))
}

func intQueryParam(value string, defaultValue int) (int, error) {
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// GetCity handles GET /api/cities/{id}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	includePOIs := false
	if raw := r.URL.Query().Get("includePOIs"); raw != "" {
		var err error
		includePOIs, err = strconv.ParseBool(raw)
		if err != nil {
			h.writeProblem(w, http.StatusBadRequest, "Invalid query parameter", "includePOIs must be true or false.", nil)
			return
		}
	}

	var (
		city interface{}
		err  error
	)
	if includePOIs {
		city, err = h.service.GetCityWithPointsOfInterest(r.Context(), id)
	} else {
		city, err = h.service.GetCity(r.Context(), id)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, city, nil)
}

// GetPointsOfInterest handles GET /api/cities/{cityId}/pointsofinterest
func (h *Handler) GetPointsOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, ok := h.pathID(w, r, "cityId")
	if !ok {
		return
	}

	pois, err := h.service.ListPointsOfInterest(r.Context(), cityID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, pois, newXMLList("pointsOfInterest", pois))
}

// GetPointOfInterest handles GET /api/cities/{cityId}/pointsofinterest/{poiId}
func (h *Handler) GetPointOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, poiID, ok := h.pointOfInterestIDs(w, r)
	if !ok {
		return
	}

	poi, err := h.service.GetPointOfInterest(r.Context(), cityID, poiID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, poi, nil)
}

// CreatePointOfInterest handles POST /api/cities/{cityId}/pointsofinterest
func (h *Handler) CreatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, ok := h.pathID(w, r, "cityId")
	if !ok {
		return
	}

	var payload model.PointOfInterestForCreationDto
	if !h.decode(w, r, &payload) {
		return
	}

	poi, err := h.service.CreatePointOfInterest(r.Context(), cityID, payload)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", pointOfInterestLocation(cityID, poi.ID))
	h.respond(w, r, http.StatusCreated, poi, nil)
}

func pointOfInterestLocation(cityID, poiID int) string {
	return fmt.Sprintf("/api/cities/%d/pointsofinterest/%d", cityID, poiID)
}

// UpdatePointOfInterest handles PUT /api/cities/{cityId}/pointsofinterest/{poiId}
func (h *Handler) UpdatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, poiID, ok := h.pointOfInterestIDs(w, r)
	if !ok {
		return
	}

	var payload model.PointOfInterestForUpdateDto
	if !h.decode(w, r, &payload) {
		return
	}

	if err := h.service.UpdatePointOfInterest(r.Context(), cityID, poiID, payload); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PatchPointOfInterest handles PATCH /api/cities/{cityId}/pointsofinterest/{poiId}
func (h *Handler) PatchPointOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, poiID, ok := h.pointOfInterestIDs(w, r)
	if !ok {
		return
	}

	document, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid request body", "The request body could not be read.", nil)
		return
	}

	if err := h.service.PatchPointOfInterest(r.Context(), cityID, poiID, document); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePointOfInterest handles DELETE /api/cities/{cityId}/pointsofinterest/{poiId}
func (h *Handler) DeletePointOfInterest(w http.ResponseWriter, r *http.Request) {
	cityID, poiID, ok := h.pointOfInterestIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePointOfInterest(r.Context(), cityID, poiID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		patchErr      *service.PatchError
	)
	switch {
	case errors.Is(err, service.ErrCityNotFound):
		h.writeProblem(w, http.StatusNotFound, "Not Found", "City not found.", nil)
	case errors.Is(err, service.ErrPointOfInterestNotFound):
		h.writeProblem(w, http.StatusNotFound, "Not Found", "Point of interest not found.", nil)
	case errors.As(err, &validationErr):
		h.writeValidationProblem(w, validationErr.Fields)
	case errors.As(err, &patchErr):
		h.writeProblem(w, http.StatusBadRequest, "Invalid patch document", patchErr.Err.Error(), nil)
	default:
		h.writeInternalError(w, r, "Error handling request", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := decodeBody(w, r, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, errUnsupportedMediaType) {
		h.writeProblem(w, http.StatusUnsupportedMediaType, "Unsupported Media Type",
			"Request bodies must be JSON or XML.", nil)
		return false
	}
	h.writeProblem(w, http.StatusBadRequest, "Invalid request body", strings.TrimSpace(err.Error()), nil)
	return false
}

// pathID reads a numeric route variable. Route patterns only admit digits,
// so a failure here means the value overflowed.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		h.writeProblem(w, http.StatusNotFound, "Not Found", "", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) pointOfInterestIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	cityID, ok := h.pathID(w, r, "cityId")
	if !ok {
		return 0, 0, false
	}
	poiID, ok := h.pathID(w, r, "poiId")
	if !ok {
		return 0, 0, false
	}
	return cityID, poiID, true
}
