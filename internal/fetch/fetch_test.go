package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractText(t *testing.T) {
	html := `<html><head>
		<style>body { color: red; }</style>
		<script>alert("hi");</script>
	</head><body>
		<h1>ISCA 2026</h1>
		<p>Paper   deadline:
		March 15, 2026</p>
		<table><tr><td>Notification</td><td>June 1, 2026</td></tr></table>
	</body></html>`

	text := ExtractText(html, 0)
	assert.Contains(t, text, "ISCA 2026")
	assert.Contains(t, text, "Paper deadline:")
	assert.Contains(t, text, "March 15, 2026")
	assert.Contains(t, text, "Notification June 1, 2026")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
}

func TestExtractTextTruncates(t *testing.T) {
	text := ExtractText("<p>"+strings.Repeat("x", 10000)+"</p>", 100)
	assert.Len(t, text, 100)
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Submission deadline: April 4, 2026</p></body></html>"))
	}))
	defer srv.Close()

	c := New(5*time.Second, zap.NewNop())
	text, err := c.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Submission deadline: April 4, 2026")
}

func TestFetchTextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(5*time.Second, zap.NewNop())
	c.http.SetRetryCount(0)
	_, err := c.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetchTextUnreachable(t *testing.T) {
	c := New(500*time.Millisecond, zap.NewNop())
	c.http.SetRetryCount(0)
	_, err := c.FetchText(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetchAllText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte("<p>Welcome to DAC 2026</p>"))
		case "/cfp/":
			w.Write([]byte("<p>Paper deadline: November 17, 2025</p>"))
		case "/important-dates/":
			w.Write([]byte("<p>Notification: February 20, 2026</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(5*time.Second, zap.NewNop())
	c.http.SetRetryCount(0)
	text, err := c.FetchAllText(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Welcome to DAC 2026")
	assert.Contains(t, text, "Paper deadline: November 17, 2025")
	assert.Contains(t, text, "Notification: February 20, 2026")
	// Sections are labeled with their source URL.
	assert.Contains(t, text, "=== Content from "+srv.URL+"/cfp/ ===")
	// Dead subpages leave no trace.
	assert.NotContains(t, text, "/submissions")
}

func TestFetchAllTextDeadMainPageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(5*time.Second, zap.NewNop())
	c.http.SetRetryCount(0)
	_, err := c.FetchAllText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
