package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// FilesHandler serves downloadable files from a directory
type FilesHandler struct {
	responder
	dir string
}

// NewFilesHandler creates a handler serving files named {fileId}.{ext} from dir
func NewFilesHandler(dir string, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{responder: responder{logger: logger}, dir: dir}
}

// GetFile handles GET /api/files/{fileId}
func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.Atoi(mux.Vars(r)["fileId"])
	if err != nil {
		h.writeProblem(w, http.StatusNotFound, "Not Found", "", nil)
		return
	}

	path, err := h.find(fileID)
	if err != nil {
		h.writeInternalError(w, r, "Error looking up file", err)
		return
	}
	if path == "" {
		h.writeProblem(w, http.StatusNotFound, "Not Found", "File not found.", nil)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		h.writeInternalError(w, r, "Error reading file", err)
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(path)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Error writing file", zap.Error(err))
	}
}

// find returns the first regular file named {fileID}.* in lexical order, or "" if none.
func (h *FilesHandler) find(fileID int) (string, error) {
	matches, err := filepath.Glob(filepath.Join(h.dir, strconv.Itoa(fileID)+".*"))
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m, nil
		}
	}
	return "", nil
}
