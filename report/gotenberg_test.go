package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "8.27", r.FormValue("paperWidth"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		require.Equal(t, "index.html", header.Filename)

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pdf, err := client.RenderHTML(context.Background(), "<html><body>hi</body></html>")
	require.NoError(t, err)
	require.Contains(t, string(pdf), "%PDF")
}

func TestRenderHTMLSurfacesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.RenderHTML(context.Background(), "<html></html>")
	require.ErrorContains(t, err, "502")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).Ping(context.Background()))
	require.Error(t, NewClient(srv.URL+"/missing").Ping(context.Background()))
}
