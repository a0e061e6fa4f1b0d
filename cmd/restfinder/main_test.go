package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/restfinder/internal/config"
	"github.com/rendis/restfinder/internal/engine/api"
	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/model"
)

func TestSortFlag(t *testing.T) {
	var f sortFlag
	assert.Equal(t, model.RatingDesc.String(), f.String())

	require.NoError(t, f.Set("reviews"))
	assert.Equal(t, model.ReviewCountDesc, f.order)

	assert.Error(t, f.Set("alphabetical"))
	assert.Equal(t, model.ReviewCountDesc, f.order)
}

func TestDurationFlag(t *testing.T) {
	var d config.Duration
	f := durationFlag{&d}
	assert.Equal(t, "", f.String())

	require.NoError(t, f.Set("45s"))
	assert.Equal(t, 45*time.Second, d.Duration)
	assert.Error(t, f.Set("soon"))
}

func TestGlobalOptions_ApplyOnlyChanged(t *testing.T) {
	var opts globalOptions
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	opts.register(cmd)
	cmd.SetArgs([]string{"--per-page", "50", "--debug"})
	require.NoError(t, cmd.Execute())

	cfg := config.Default()
	cfg.APIURL = "http://from-file/api"
	opts.apply(cmd, cfg)

	assert.Equal(t, "http://from-file/api", cfg.APIURL)
	assert.Equal(t, 50, cfg.PerPage)
	assert.True(t, cfg.Debug)
}

// pagedHandler serves pages of two items with three pages in total.
func pagedHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.SearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := []map[string]any{
			{"name": fmt.Sprintf("Page%dA", req.Page), "rating": 4.0 + float64(req.Page)/10, "reviewCount": req.Page},
			{"name": fmt.Sprintf("Page%dB", req.Page), "rating": 4.5, "reviewCount": 100 * req.Page},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"data":       data,
			"totalCount": 6,
			"hasMore":    req.Page < 3,
		})
	}
}

func newTestController(t *testing.T, handler http.HandlerFunc) *session.Controller {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(api.Options{
		BaseURL:     server.URL,
		Fingerprint: api.FingerprintNone,
		Logger:      zerolog.Nop(),
	})
	return session.New(client, session.Options{Logger: zerolog.Nop()})
}

func TestRunSearch_JSONAcrossPages(t *testing.T) {
	ctrl := newTestController(t, pagedHandler(t))

	var out, errOut bytes.Buffer
	c := model.SearchCriteria{City: "İstanbul", District: "Kadıköy", MinRating: 4.5}
	require.NoError(t, runSearch(context.Background(), &out, &errOut, ctrl, c, 2, model.ReviewCountDesc, true))

	var got sessionJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 6, got.TotalCount)
	assert.True(t, got.HasMore)
	assert.Equal(t, "reviews", got.Sort)
	require.Len(t, got.Items, 4)
	assert.Equal(t, "Page2B", got.Items[0].Name)
	assert.Empty(t, errOut.String())
}

func TestRunSearch_StopsWhenNoMorePages(t *testing.T) {
	ctrl := newTestController(t, pagedHandler(t))

	var out, errOut bytes.Buffer
	c := model.SearchCriteria{City: "Ankara", FoodCategory: "mantı", MinRating: 4.5}
	require.NoError(t, runSearch(context.Background(), &out, &errOut, ctrl, c, 10, model.RatingDesc, false))

	assert.Contains(t, out.String(), "Ankara")
	assert.Contains(t, out.String(), "6 of 6 results, page 3")
	assert.NotContains(t, out.String(), "more available")
}

func TestRunSearch_ValidationError(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	var out, errOut bytes.Buffer
	err := runSearch(context.Background(), &out, &errOut, ctrl, model.SearchCriteria{MinRating: 4.5}, 1, model.RatingDesc, false)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunSearch_ServiceError(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"upstream quota exceeded"}`))
	})

	var out, errOut bytes.Buffer
	err := runSearch(context.Background(), &out, &errOut, ctrl, model.SearchCriteria{City: "İzmir", District: "Bornova", MinRating: 4.5}, 1, model.RatingDesc, false)
	require.Error(t, err)
	assert.Equal(t, "upstream quota exceeded", err.Error())
}

func TestExportCmd_NoArchive(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	root := newRootCmd()
	root.SetArgs([]string{"export", "--db", filepath.Join(dir, "missing.db")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
