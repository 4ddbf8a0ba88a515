package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// Handler serves the upload, fetch, info page and delete endpoints
type Handler struct {
	service       simpleshare.Service
	uploadSecret  string
	maxUploadSize int64
	logger        *slog.Logger
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithMaxUploadSize limits upload request bodies to size bytes. Zero disables the limit.
func WithMaxUploadSize(size int64) HandlerOption {
	return func(h *Handler) {
		h.maxUploadSize = size
	}
}

// WithLogger sets the logger used for request errors
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a Handler for service. uploadSecret is the bearer secret
// required by POST /upload; an empty secret rejects every upload.
func NewHandler(service simpleshare.Service, uploadSecret string, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:      service,
		uploadSecret: uploadSecret,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router for all public endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)

	r.Get("/", h.Alive)
	r.Get("/healthz", h.Healthz)
	r.With(RequireBearer(h.uploadSecret)).Post("/upload", h.Upload)
	r.Get("/file/{filename}", h.GetFile)
	r.Delete("/delete/{token}/{filename}", h.DeleteFile)
	r.Get("/{filename}", h.GetFileInfo)
	return r
}

// UploadResponse is returned by a successful upload
type UploadResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	InfoURL   string `json:"info_url"`
	DeleteURL string `json:"delete_url"`
	Size      int64  `json:"size"`
}

func (h *Handler) Alive(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Still alive btw")
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "OK")
}

// Upload streams the first multipart part carrying a filename into storage
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		if r.ContentLength > h.maxUploadSize {
			h.writeError(w, r, &http.MaxBytesError{Limit: h.maxUploadSize})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, r, &multipartError{err: err})
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			h.writeError(w, r, simpleshare.ErrNoFile)
			return
		}
		if err != nil {
			h.writeError(w, r, &multipartError{err: err})
			return
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		result, err := h.service.Upload(r.Context(), simpleshare.UploadRequest{
			FileName: part.FileName(),
			Reader:   bodyReader{r: part},
		})
		part.Close()
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		render.JSON(w, r, UploadResponse{
			Success:   true,
			URL:       result.URL,
			InfoURL:   result.InfoURL,
			DeleteURL: result.DeleteURL,
			Size:      result.Size,
		})
		return
	}
}

// GetFile streams the raw bytes of a stored file
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "filename")

	reader, info, err := h.service.Open(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition("inline", info.Name))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if seeker, ok := reader.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Name, info.ModTime, seeker)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to stream file", "name", name, "error", err)
	}
}

// GetFileInfo renders the HTML preview page for a stored file
func (h *Handler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "filename")

	info, err := h.service.Stat(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := renderInfoPage(info)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(page)
	}
}

// DeleteFile removes a stored file after the delete token is verified
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "token")
	name := pathParam(r, "filename")

	if err := h.service.Delete(r.Context(), token, name); err != nil {
		h.writeError(w, r, err)
		return
	}

	render.PlainText(w, r, "File deleted successfully")
}

// bodyReader tags request body failures so they are reported as client errors
type bodyReader struct {
	r io.Reader
}

func (b bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		err = &multipartError{err: err}
	}
	return n, err
}

// pathParam returns the decoded URL parameter. chi matches on RawPath when it
// is set, so escaped names arrive still encoded.
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
