package chart

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mx-space/landing/internal/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExportURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://docs.google.com/spreadsheets/d/1AbC_d-9/edit#gid=42",
			"https://docs.google.com/spreadsheets/d/1AbC_d-9/export?format=csv&gid=42",
		},
		{
			"https://docs.google.com/spreadsheets/d/1AbC/edit?usp=sharing",
			"https://docs.google.com/spreadsheets/d/1AbC/export?format=csv",
		},
		{
			"https://docs.google.com/spreadsheets/d/e/2PACX-xyz/pubhtml",
			"https://docs.google.com/spreadsheets/d/e/2PACX-xyz/pub?output=csv",
		},
		{
			"https://docs.google.com/spreadsheets/d/e/2PACX-xyz/pubhtml?gid=7",
			"https://docs.google.com/spreadsheets/d/e/2PACX-xyz/pub?gid=7&output=csv&single=true",
		},
		{
			"https://example.com/data.csv",
			"https://example.com/data.csv",
		},
	}
	for _, tc := range cases {
		got, err := CSVExportURL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "ftp://example.com/x.csv", "javascript:alert(1)", "https://docs.google.com/document/d/abc"} {
		_, err := CSVExportURL(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("Month,Revenue\nJan,100\n\"Feb, late\",150,extra\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Month", "Revenue"}, {"Jan", "100"}, {"Feb, late", "150", "extra"}}, rows)
}

func TestFetcher_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "Month,Revenue\nJan,100\nFeb,150\n")
	}))
	defer srv.Close()

	c, err := cache.New[[][]string](1 << 20)
	require.NoError(t, err)
	defer c.Close()

	f := NewFetcher(WithHTTPClient(srv.Client()), WithPrivateNetworks(), WithCache(c, time.Minute))
	ctx := context.Background()

	rows, err := f.Fetch(ctx, srv.URL+"/sheet.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	again, err := f.Fetch(ctx, srv.URL+"/sheet.csv")
	require.NoError(t, err)
	assert.Equal(t, rows, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/login":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html>sign in</html>")
		case "/big":
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, strings.Repeat("a,b\n", 100))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, "a,b\n")
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithHTTPClient(srv.Client()), WithPrivateNetworks(), WithMaxBytes(64))
	ctx := context.Background()

	for _, path := range []string{"/missing", "/login", "/big"} {
		_, err := f.Fetch(ctx, srv.URL+path)
		assert.ErrorIs(t, err, ErrFetch, path)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(short, srv.URL+"/slow")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetcher_RejectsNonPublicHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "a,b\n1,2\n3,4\n")
	}))
	defer srv.Close()

	f := NewFetcher(WithHTTPClient(srv.Client()))
	ctx := context.Background()
	for _, raw := range []string{
		srv.URL + "/sheet.csv",
		"http://127.0.0.1/sheet.csv",
		"http://localhost:8080/sheet.csv",
		"http://10.0.0.5/sheet.csv",
		"http://192.168.1.1/sheet.csv",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/sheet.csv",
		"http://[::ffff:127.0.0.1]/sheet.csv",
		"http://0.0.0.0/sheet.csv",
	} {
		_, err := f.Fetch(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
	assert.Zero(t, hits.Load())
}

func TestNewHTTPClient_RefusesNonPublicDial(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	// Skip the URL check so the dial guard is the only line of defense.
	f := NewFetcher(WithHTTPClient(NewHTTPClient(time.Second)), WithPrivateNetworks())
	_, err := f.Fetch(context.Background(), srv.URL+"/sheet.csv")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Zero(t, hits.Load())
}

func TestDialControl(t *testing.T) {
	blocked := []string{"127.0.0.1:80", "10.1.2.3:443", "172.16.0.1:80", "169.254.169.254:80", "[::1]:443", "[fe80::1]:80", "100.64.0.1:80"}
	for _, addr := range blocked {
		assert.ErrorIs(t, dialControl("tcp", addr, nil), errBlockedAddress, addr)
	}
	for _, addr := range []string{"142.250.72.14:443", "[2607:f8b0:4004:800::200e]:443"} {
		assert.NoError(t, dialControl("tcp", addr, nil), addr)
	}
}
