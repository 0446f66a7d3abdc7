package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Read(t *testing.T) {
	var gotPath, gotAuth, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		gotFormat = r.Header.Get("X-Return-Format")
		w.Write([]byte("<html><body>relayed</body></html>"))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	res, err := c.Read(context.Background(), "https://dir.example.com/companies?page=2")

	require.NoError(t, err)
	assert.Equal(t, "https://dir.example.com/companies?page=2", res.URL)
	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, res.HTML, "relayed")
	assert.Equal(t, "/https://dir.example.com/companies?page=2", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "html", gotFormat)
}

func TestClient_Read_NoKeyOmitsAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.Read(context.Background(), "https://dir.example.com")

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Read_RetriesTransientStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	res, err := c.Read(context.Background(), "https://dir.example.com")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, res.HTML, "ok")
}

func TestClient_Read_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.Read(context.Background(), "https://dir.example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}
