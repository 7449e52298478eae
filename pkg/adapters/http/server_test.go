package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/KDL-umass/Toybox/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, engine ports.Engine) *Client {
	t.Helper()
	srv := httptest.NewServer(NewHandler(engine))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestClient_EngineContract(t *testing.T) {
	seed := domain.Snapshot{"score": 3, "board": map[string]any{"width": 2}}
	eng, err := memory.NewEngine("amidar", seed)
	require.NoError(t, err)

	ports.RunEngineContract(t, newServer(t, eng), "amidar", seed)
}

func TestServer_Health(t *testing.T) {
	eng, err := memory.NewEngine("amidar", domain.Snapshot{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewHandler(eng).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_PutStateRejectsNonObject(t *testing.T) {
	eng, err := memory.NewEngine("amidar", domain.Snapshot{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewHandler(eng).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/state", strings.NewReader(`[1,2]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, eng.Writes())
}

func TestClient_ErrorMapping(t *testing.T) {
	eng, err := memory.NewEngine("amidar", domain.Snapshot{}, memory.WithGridGeometry(4, 4, 0, 0))
	require.NoError(t, err)
	c := newServer(t, eng)
	ctx := context.Background()

	_, err = c.Query(ctx, "no-such-query", nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "not_found", se.Code)

	_, err = c.Query(ctx, ports.QueryTileToWorld, "not a point")
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	_, err = c.Config(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Config(t *testing.T) {
	eng, err := memory.NewEngine("amidar", domain.Snapshot{}, memory.WithConfig(domain.Snapshot{"jump_time": 10}))
	require.NoError(t, err)

	cfg, err := newServer(t, eng).Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, json.Number("10"), cfg["jump_time"])
}

func TestClient_AmidarSessionOverHTTP(t *testing.T) {
	data, err := os.ReadFile("../../amidar/testdata/start.json")
	require.NoError(t, err)
	eng, err := memory.NewEngineJSON("amidar", data, memory.WithGridGeometry(4, 4, 0, 0))
	require.NoError(t, err)

	m := session.NewManager(newServer(t, eng))
	ctx := context.Background()

	err = amidar.Run(ctx, m, func(iv *amidar.Intervention) error {
		wp, err := iv.TilePointToWorld(ctx, amidar.TilePoint{TX: 2, TY: 3})
		if err != nil {
			return err
		}
		assert.Equal(t, amidar.WorldPoint{X: 8, Y: 12}, wp)
		return iv.RemoveEnemy(4)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Writes())

	require.NoError(t, amidar.Run(ctx, m, func(iv *amidar.Intervention) error {
		assert.Equal(t, 4, iv.NumEnemies())
		return nil
	}))
	assert.Equal(t, 1, eng.Writes())
}
