package api

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/validation"
	"github.com/munnerz/goautoneg"
	"go.uber.org/zap"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeXML     = "application/xml"
	contentTypeTextXML = "text/xml"
	contentTypeProblem = "application/problem+json"

	maxBodyBytes = 1 << 20
)

var offeredContentTypes = []string{contentTypeJSON, contentTypeXML, contentTypeTextXML}

// responder writes negotiated bodies and problem details
type responder struct {
	logger *zap.Logger
}

// negotiate picks the response media type for the request's Accept header.
// It returns "" when none of the offered types is acceptable.
func negotiate(r *http.Request) string {
	accept := r.Header.Get("Accept")
	if strings.TrimSpace(accept) == "" {
		return contentTypeJSON
	}
	return goautoneg.Negotiate(accept, offeredContentTypes)
}

// xmlList wraps slices so they encode as a single XML document.
type xmlList[T any] struct {
	XMLName xml.Name
	Items   []T
}

func newXMLList[T any](root string, items []T) xmlList[T] {
	return xmlList[T]{XMLName: xml.Name{Local: root}, Items: items}
}

// respond writes body in the negotiated format. xmlBody replaces body for XML
// clients when the JSON shape has no single root element.
func (rs responder) respond(w http.ResponseWriter, r *http.Request, status int, body, xmlBody interface{}) {
	contentType := negotiate(r)
	if contentType == "" {
		rs.writeProblem(w, http.StatusNotAcceptable, "Not Acceptable",
			"None of the requested media types can be produced.", nil)
		return
	}

	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(status)

	var err error
	if contentType == contentTypeJSON {
		err = json.NewEncoder(w).Encode(body)
	} else {
		if xmlBody == nil {
			xmlBody = body
		}
		if _, err = io.WriteString(w, xml.Header); err == nil {
			err = xml.NewEncoder(w).Encode(xmlBody)
		}
	}
	if err != nil {
		rs.logger.Error("Error encoding response", zap.Error(err))
	}
}

// problem is an RFC 7807 problem details body
type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (rs responder) writeProblem(w http.ResponseWriter, status int, title, detail string, fieldErrors map[string][]string) {
	w.Header().Set("Content-Type", contentTypeProblem+"; charset=utf-8")
	w.WriteHeader(status)
	p := problem{
		Type:   fmt.Sprintf("https://httpstatuses.io/%d", status),
		Title:  title,
		Status: status,
		Detail: detail,
		Errors: fieldErrors,
	}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		rs.logger.Error("Error encoding problem", zap.Error(err))
	}
}

func (rs responder) writeValidationProblem(w http.ResponseWriter, fields []validation.FieldError) {
	errs := make(map[string][]string, len(fields))
	for _, f := range fields {
		errs[f.Field] = append(errs[f.Field], f.Message)
	}
	rs.writeProblem(w, http.StatusBadRequest, "One or more validation errors occurred.", "", errs)
}

func (rs responder) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	rs.logger.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	rs.writeProblem(w, http.StatusInternalServerError, "An error occurred while processing your request.", "", nil)
}

var errUnsupportedMediaType = errors.New("unsupported media type")

// decodeBody reads a JSON or XML request body according to its Content-Type.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := contentTypeJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return errUnsupportedMediaType
		}
		mediaType = parsed
	}

	switch {
	case mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json"):
		return json.NewDecoder(body).Decode(dst)
	case mediaType == contentTypeXML || mediaType == contentTypeTextXML:
		return xml.NewDecoder(body).Decode(dst)
	}
	return errUnsupportedMediaType
}
