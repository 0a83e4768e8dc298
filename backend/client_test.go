package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsidev/karsi/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestFetchApplications_SkipsMalformedAssets(t *testing.T) {
	body := `{
		"assigned": [
			{"asset_id": "i-1", "service_type": "ec2 instance", "profiles": []},
			"not an object",
			{"asset_id": "", "service_type": "vm"}
		],
		"unassigned": [
			{"asset_id": "vol-9", "service_type": "ebs", "profiles": null}
		]
	}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimization/recommendations/applications", r.URL.Path)
		assert.Equal(t, "billing", r.URL.Query().Get("application"))
		assert.Equal(t, "aws", r.URL.Query().Get("c_provider"))
		_, _ = w.Write([]byte(body))
	}))

	resp, err := c.FetchApplications(context.Background(), Filters{Application: "billing", Provider: "aws"})
	require.NoError(t, err)

	// The string entry and the asset without an ID are dropped.
	require.Len(t, resp.Assigned, 1)
	assert.Equal(t, "i-1", resp.Assigned[0].AssetID)
	require.Len(t, resp.Unassigned, 1)
	assert.Empty(t, resp.Unassigned[0].Profiles)
}

func TestFetchApplications_NonArrayProfilesDegradeToEmpty(t *testing.T) {
	body := `{
		"assigned": [
			{"asset_id": "i-ok", "service_type": "ec2 instance", "profiles": []},
			{"asset_id": "i-bad-profiles", "service_type": "ec2 instance", "profiles": "garbage"}
		],
		"unassigned": []
	}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))

	resp, err := c.FetchApplications(context.Background(), Filters{})
	require.NoError(t, err)

	// The asset survives with its scalar fields; only the unusable
	// profiles value is discarded.
	require.Len(t, resp.Assigned, 2)
	assert.Equal(t, "i-bad-profiles", resp.Assigned[1].AssetID)
	assert.Equal(t, "ec2 instance", resp.Assigned[1].ServiceType)
	assert.Empty(t, resp.Assigned[1].Profiles)
}

func TestAccept_Success(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimization/recommendations/accept", r.URL.Path)
		gotQuery = map[string]string{
			"asset_id":      r.URL.Query().Get("asset_id"),
			"asset_type":    r.URL.Query().Get("asset_type"),
			"accepted_type": r.URL.Query().Get("accepted_type"),
		}
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))

	err := c.Accept(context.Background(), "i-1", types.CategoryVM, types.VariantSafe)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"asset_id":      "i-1",
		"asset_type":    "vm",
		"accepted_type": "safe",
	}, gotQuery)
}

func TestAccept_BackendRejection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "message": "asset is locked"}`))
	}))

	err := c.Accept(context.Background(), "i-1", types.CategoryVM, types.VariantSafe)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrRejected, apiErr.Kind)
	assert.Contains(t, apiErr.Error(), "asset is locked")
}

func TestRevoke_HTTPStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.Revoke(context.Background(), "i-1", types.CategoryDB)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrStatus, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestAction_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))

	err := c.Revoke(context.Background(), "i-1", types.CategoryVM)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrDecode, apiErr.Kind)
}

func TestAssignAndDeleteAssets(t *testing.T) {
	var assignBody, deleteBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/assets/assign":
			assert.Equal(t, http.MethodPost, r.Method)
			assignBody = string(buf)
		case "/assets/delete":
			assert.Equal(t, http.MethodDelete, r.Method)
			deleteBody = string(buf)
		}
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))

	require.NoError(t, c.AssignAssets(context.Background(), []string{"i-1", "i-2"}, "billing"))
	assert.JSONEq(t, `{"asset_ids": ["i-1", "i-2"], "application_name": "billing"}`, assignBody)

	require.NoError(t, c.DeleteAssets(context.Background(), []string{"i-3"}))
	assert.JSONEq(t, `{"asset_ids": ["i-3"]}`, deleteBody)
}

func TestDo_SendsRequestIDAndSessionCookie(t *testing.T) {
	var gotCookie, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, SessionCookie: "session=abc", Logger: zerolog.Nop()})
	require.NoError(t, err)

	require.NoError(t, c.Revoke(context.Background(), "i-1", types.CategoryVM))
	assert.Equal(t, "session=abc", gotCookie)
	assert.NotEmpty(t, gotRequestID)
}
