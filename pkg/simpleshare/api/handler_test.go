package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/deletetoken"
	"github.com/tendant/simple-share/pkg/simpleshare/storage/memory"
)

const (
	testSecret    = "hunter2"
	testPublicURL = "https://share.example.com"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	router http.Handler
	store  *memory.Backend
	signer *deletetoken.Signer
}

func newTestEnv(t *testing.T, opts ...HandlerOption) *testEnv {
	t.Helper()

	store := memory.New()
	signer := deletetoken.New(deletetoken.WithSecretKey(testSecret))
	svc, err := simpleshare.New(
		simpleshare.WithBlobStore(store),
		simpleshare.WithTokenSigner(signer),
		simpleshare.WithPublicURL(testPublicURL),
	)
	require.NoError(t, err)

	return &testEnv{
		router: NewHandler(svc, testSecret, opts...).Routes(),
		store:  store,
		signer: signer,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func multipartBody(t *testing.T, field, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField(field, string(data)))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, fileName string, data []byte) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, "file", fileName, data)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	return req
}

func (e *testEnv) upload(t *testing.T, fileName string, data []byte) UploadResponse {
	t.Helper()

	rr := e.do(uploadRequest(t, fileName, data))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func localPath(u string) string {
	return strings.TrimPrefix(u, testPublicURL)
}

func TestAliveAndHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Still alive btw", rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestUploadFetchDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	data := append(append([]byte{}, pngHeader...), []byte("pixels")...)

	resp := env.upload(t, "photo.png", data)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(len(data)), resp.Size)
	assert.Regexp(t, `^https://share\.example\.com/file/[A-Za-z0-9_-]{8}\.png$`, resp.URL)
	assert.Regexp(t, `^https://share\.example\.com/[A-Za-z0-9_-]{8}\.png$`, resp.InfoURL)
	assert.Regexp(t, `^https://share\.example\.com/delete/[0-9a-f]{64}/[A-Za-z0-9_-]{8}\.png$`, resp.DeleteURL)

	name := strings.TrimPrefix(resp.URL, testPublicURL+"/file/")
	assert.Equal(t, testPublicURL+"/delete/"+deletetoken.Generate(name, testSecret)+"/"+name, resp.DeleteURL)

	// fetch
	rr := env.do(httptest.NewRequest(http.MethodGet, localPath(resp.URL), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, data, rr.Body.Bytes())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="`+name+`"`, rr.Header().Get("Content-Disposition"))

	// delete
	rr = env.do(httptest.NewRequest(http.MethodDelete, localPath(resp.DeleteURL), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "File deleted successfully", rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodGet, localPath(resp.URL), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// a second delete with the same valid token reports the file as gone
	rr = env.do(httptest.NewRequest(http.MethodDelete, localPath(resp.DeleteURL), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "File not found", rr.Body.String())
}

func TestUploadUnauthorized(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer nope"},
		{"no scheme", testSecret},
		{"lowercase scheme", "bearer " + testSecret},
		{"secret prefix", "Bearer " + testSecret[:3]},
		{"trailing data", "Bearer " + testSecret + " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := uploadRequest(t, "photo.png", pngHeader)
			req.Header.Del("Authorization")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := env.do(req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, 0, env.store.Len(), "nothing is stored")
		})
	}
}

func TestUploadBadRequests(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no file part", func(t *testing.T) {
		body, contentType := multipartBody(t, "comment", "", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testSecret)

		rr := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file provided", rr.Body.String())
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testSecret)

		rr := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("truncated multipart", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "a.txt", []byte("hello"))
		truncated := body.Bytes()[:body.Len()/2]
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(truncated))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testSecret)

		rr := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	assert.Equal(t, 0, env.store.Len())
}

func TestUploadTooLarge(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 4096)

	t.Run("declared length", func(t *testing.T) {
		env := newTestEnv(t, WithMaxUploadSize(1024))
		rr := env.do(uploadRequest(t, "big.bin", data))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("streamed body", func(t *testing.T) {
		env := newTestEnv(t, WithMaxUploadSize(1024))
		req := uploadRequest(t, "big.bin", data)
		req.ContentLength = -1

		rr := env.do(req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("within limit", func(t *testing.T) {
		env := newTestEnv(t, WithMaxUploadSize(1<<20))
		resp := env.upload(t, "big.bin", data)
		assert.Equal(t, int64(len(data)), resp.Size)
	})
}

func TestUploadKeepsOriginalExtension(t *testing.T) {
	tests := []struct {
		original string
		pattern  string
	}{
		{"photo.png", `^[A-Za-z0-9_-]{8}\.png$`},
		{"archive.tar.gz", `^[A-Za-z0-9_-]{8}\.gz$`},
		{"Clip.MP4", `^[A-Za-z0-9_-]{8}\.MP4$`},
		{"README", `^[A-Za-z0-9_-]{8}$`},
		{".bashrc", `^[A-Za-z0-9_-]{8}$`},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			resp := env.upload(t, tt.original, []byte("data"))
			name := strings.TrimPrefix(resp.URL, testPublicURL+"/file/")
			assert.Regexp(t, tt.pattern, name)
		})
	}
}

func TestUploadNameNeedingEscape(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "notes.my file", []byte("hello"))
	assert.True(t, strings.HasSuffix(resp.URL, ".my%20file"), resp.URL)

	rr := env.do(httptest.NewRequest(http.MethodGet, localPath(resp.URL), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodDelete, localPath(resp.DeleteURL), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, env.store.Len())
}

func TestFetchRangeAndHead(t *testing.T) {
	env := newTestEnv(t)
	resp := env.upload(t, "notes.txt", []byte("hello world"))

	req := httptest.NewRequest(http.MethodGet, localPath(resp.URL), nil)
	req.Header.Set("Range", "bytes=0-4")
	rr := env.do(req)
	assert.Equal(t, http.StatusPartialContent, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodHead, localPath(resp.URL), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "11", rr.Header().Get("Content-Length"))
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodHead, localPath(resp.InfoURL), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Body.String())
}

func TestInfoPage(t *testing.T) {
	env := newTestEnv(t)

	t.Run("image", func(t *testing.T) {
		resp := env.upload(t, "photo.png", pngHeader)

		rr := env.do(httptest.NewRequest(http.MethodGet, localPath(resp.InfoURL), nil))
		require.Equal(t, http.StatusOK, rr.Code)
		page := rr.Body.String()

		assert.Contains(t, page, `url=`+resp.URL)
		assert.Contains(t, page, `<meta property="og:image" content="`+resp.URL+`" />`)
		assert.Contains(t, page, `<meta name="twitter:card" content="summary_large_image">`)
		assert.Contains(t, page, `<meta name="twitter:image:src" content="`+resp.URL+`">`)
		assert.NotContains(t, page, "og:video")
		assert.Contains(t, page, "16.00 B")
	})

	t.Run("video", func(t *testing.T) {
		resp := env.upload(t, "clip.mp4", []byte("not really a video"))

		rr := env.do(httptest.NewRequest(http.MethodGet, localPath(resp.InfoURL), nil))
		require.Equal(t, http.StatusOK, rr.Code)
		page := rr.Body.String()

		assert.Contains(t, page, `<meta property="og:video" content="`+resp.URL+`"/>`)
		assert.Contains(t, page, `<meta property="og:video:type" content="video/mp4"/>`)
		assert.Contains(t, page, `<meta property="twitter:player:width" content="996"/>`)
		assert.Contains(t, page, `<meta property="twitter:player:height" content="626"/>`)
		assert.Contains(t, page, `<meta property="twitter:card" content="player"/>`)
		assert.NotContains(t, page, "og:image")
	})

	t.Run("other", func(t *testing.T) {
		resp := env.upload(t, "notes.txt", []byte("hello"))

		rr := env.do(httptest.NewRequest(http.MethodGet, localPath(resp.InfoURL), nil))
		require.Equal(t, http.StatusOK, rr.Code)
		page := rr.Body.String()

		assert.Contains(t, page, `url=`+resp.URL)
		assert.NotContains(t, page, "og:image")
		assert.NotContains(t, page, "og:video")
		assert.Contains(t, page, "<strong>Size:</strong> 5.00 B")
		assert.Regexp(t, `Last Modified:</strong> \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`, page)
	})

	t.Run("missing", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/nothere.png", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "File not found", rr.Body.String())
	})
}

func TestDeleteRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	resp := env.upload(t, "photo.png", pngHeader)
	name := strings.TrimPrefix(resp.URL, testPublicURL+"/file/")
	other := env.upload(t, "other.png", pngHeader)
	otherName := strings.TrimPrefix(other.URL, testPublicURL+"/file/")

	tokens := []struct {
		name  string
		token string
	}{
		{"garbage", "deadbeef"},
		{"other file's token", env.signer.Generate(otherName)},
		{"wrong secret", deletetoken.Generate(name, "not-the-secret")},
		{"uppercase", strings.ToUpper(env.signer.Generate(name))},
	}

	for _, tt := range tokens {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodDelete, "/delete/"+tt.token+"/"+name, nil))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Invalid delete token", rr.Body.String())
		})
	}

	assert.Equal(t, 2, env.store.Len(), "both files survive")

	// a valid token for a file that never existed is still answered after verification
	ghost := "ghost123.png"
	rr := env.do(httptest.NewRequest(http.MethodDelete, "/delete/"+env.signer.Generate(ghost)+"/"+ghost, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInvalidFilenames(t *testing.T) {
	env := newTestEnv(t)

	paths := []string{
		"/file/..%2Fsecret.txt",
		"/file/.upload-abc",
		"/..%2F..%2Fetc%2Fpasswd",
		"/.hidden",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Invalid filename", rr.Body.String())
		})
	}

	t.Run("delete", func(t *testing.T) {
		name := "../secret.txt"
		token := env.signer.Generate(name)
		rr := env.do(httptest.NewRequest(http.MethodDelete, "/delete/"+token+"/..%2Fsecret.txt", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"unauthorized", simpleshare.ErrUnauthorized, http.StatusUnauthorized, "Invalid delete token"},
		{"not found", simpleshare.ErrNotFound, http.StatusNotFound, "File not found"},
		{"invalid name", simpleshare.ErrInvalidName, http.StatusBadRequest, "Invalid filename"},
		{"no file", simpleshare.ErrNoFile, http.StatusBadRequest, "No file provided"},
		{"name taken", simpleshare.ErrAlreadyExists, http.StatusConflict, "File already exists"},
		{"too large", &simpleshare.StorageError{Op: "write", Err: &http.MaxBytesError{Limit: 1}}, http.StatusRequestEntityTooLarge, "File too large"},
		{"multipart", &multipartError{err: io.ErrUnexpectedEOF}, http.StatusBadRequest, "Invalid multipart request"},
		{"storage", &simpleshare.StorageError{Op: "write", Key: "k", Err: errors.New("disk full")}, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1024.00 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, humanSize(tt.n), tt.n)
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `inline; filename="aB3x_9Qz.png"`, contentDisposition("inline", "aB3x_9Qz.png"))
	assert.Equal(t, `inline; filename="a\"b.txt"`, contentDisposition("inline", `a"b.txt`))
	assert.Equal(t, `inline; filename="plain-token.txt"`, contentDisposition("inline", "plain-token.txt"))
	assert.Equal(t, `inline; filename*=utf-8''aB3x_9Qz.%C3%A9t%C3%A9`, contentDisposition("inline", "aB3x_9Qz.été"))
}
