package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/internal/testutil"
	"github.com/riorajhon/lotteryd/pkg/api/handlers"
	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/storage"
	"github.com/riorajhon/lotteryd/pkg/tasks"
)

type mockEnqueuer struct {
	payloads []tasks.TaskPayload
	err      error
}

func (m *mockEnqueuer) Enqueue(payload tasks.TaskPayload, _ ...asynq.Option) error {
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, payload)
	return nil
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedStore fills a memory store with raw draws and derived artifacts for
// La Primitiva.
func seedStore(t *testing.T, n int) (*storage.Memory, []draws.Draw) {
	t.Helper()

	cfg := lottery.LaPrimitiva()
	mem := storage.NewMemory()
	ds := testutil.GenerateDraws(cfg, n, 7)

	raws := make([]draws.RawDraw, 0, len(ds))
	for _, d := range ds {
		raws = append(raws, draws.RawDraw{
			DrawID:  d.ID,
			GameID:  cfg.GameID,
			Date:    d.Date + " 21:30:00",
			Numbers: d.Primary,
		})
	}
	_, err := mem.SaveRawDraws(context.Background(), cfg, raws)
	require.NoError(t, err)

	eng, err := engine.New(cfg)
	require.NoError(t, err)
	_, err = eng.Rebuild(context.Background(), ds, storage.NewResultSink(mem, cfg))
	require.NoError(t, err)

	return mem, ds
}

func newTestApp(store storage.Store, queue handlers.TaskEnqueuer) *fiber.App {
	app := fiber.New()
	server := handlers.NewServer(store, queue, testLogger())
	server.Register(app.Group("/api/v1"))
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	app := newTestApp(storage.NewMemory(), &mockEnqueuer{})

	resp := get(t, app, "/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestListLotteries(t *testing.T) {
	app := newTestApp(storage.NewMemory(), &mockEnqueuer{})

	resp := get(t, app, "/api/v1/lotteries")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Lotteries []handlers.LotteryInfo `json:"lotteries"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Lotteries, len(lottery.All()))

	slugs := make(map[string][]handlers.PoolInfo)
	for _, info := range body.Lotteries {
		slugs[info.Slug] = info.Pools
	}
	require.Contains(t, slugs, "euromillones")
	assert.Len(t, slugs["euromillones"], 2)
	assert.Equal(t, "main", slugs["euromillones"][0].Name)
	assert.Equal(t, "star", slugs["euromillones"][1].Name)
	require.Contains(t, slugs, "la-primitiva")
	require.Contains(t, slugs, "el-gordo")
}

func TestListDraws(t *testing.T) {
	store, ds := seedStore(t, 12)
	app := newTestApp(store, &mockEnqueuer{})

	t.Run("returns draws newest first", func(t *testing.T) {
		resp := get(t, app, "/api/v1/draws?lottery=la-primitiva")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.DrawListResponse
		decode(t, resp, &body)
		assert.Equal(t, "la-primitiva", body.Lottery)
		assert.Equal(t, len(ds), body.Total)
		require.Len(t, body.Draws, len(ds))
		assert.Equal(t, ds[len(ds)-1].ID, body.Draws[0].DrawID)
		assert.Equal(t, ds[0].ID, body.Draws[len(ds)-1].DrawID)
	})

	t.Run("paginates", func(t *testing.T) {
		resp := get(t, app, "/api/v1/draws?lottery=la-primitiva&limit=5&offset=5")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.DrawListResponse
		decode(t, resp, &body)
		assert.Equal(t, len(ds), body.Total)
		require.Len(t, body.Draws, 5)
		assert.Equal(t, ds[len(ds)-6].ID, body.Draws[0].DrawID)
	})

	t.Run("filters by date window", func(t *testing.T) {
		from := ds[3].Date
		to := ds[6].Date
		resp := get(t, app, "/api/v1/draws?lottery=la-primitiva&from="+from+"&to="+to)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.DrawListResponse
		decode(t, resp, &body)
		assert.Equal(t, 4, body.Total)
	})

	t.Run("missing lottery parameter", func(t *testing.T) {
		resp := get(t, app, "/api/v1/draws")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown lottery", func(t *testing.T) {
		resp := get(t, app, "/api/v1/draws?lottery=powerball")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListFeatures(t *testing.T) {
	store, ds := seedStore(t, 8)
	app := newTestApp(store, &mockEnqueuer{})

	resp := get(t, app, "/api/v1/lotteries/la-primitiva/features?limit=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.FeatureListResponse
	decode(t, resp, &body)
	assert.Equal(t, len(ds), body.Total)
	require.Len(t, body.Features, 3)

	latest := body.Features[0]
	assert.Equal(t, ds[len(ds)-1].ID, latest["draw_id"])
	assert.Contains(t, latest, "main_numbers")
	assert.Contains(t, latest, "main_frequency_counts")
	assert.Contains(t, latest, "reintegro_numbers")
}

func TestBetSeries(t *testing.T) {
	cfg := lottery.LaPrimitiva()
	store := storage.NewMemory()
	_, err := store.SaveRawDraws(context.Background(), cfg, []draws.RawDraw{
		{DrawID: "d1", Date: "2024-06-01 21:30:00", Apuestas: "1.234.567", Premios: "500.000,00", PremioBote: "2.100.000,00"},
		{DrawID: "d2", Date: "2024-06-03 21:30:00", Apuestas: "no disponible"},
		{DrawID: "d3", Date: "2024-06-05 21:30:00", Apuestas: "987.654"},
	})
	require.NoError(t, err)
	app := newTestApp(store, &mockEnqueuer{})

	t.Run("returns the series oldest first", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/la-primitiva/bets")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.BetSeriesResponse
		decode(t, resp, &body)
		assert.Equal(t, "la-primitiva", body.Lottery)
		require.Len(t, body.Points, 3)

		first := body.Points[0]
		assert.Equal(t, "d1", first.DrawID)
		assert.Equal(t, "2024-06-01", first.Date)
		require.NotNil(t, first.Bets)
		assert.Equal(t, 1234567, *first.Bets)
		require.NotNil(t, first.Prizes)
		assert.InDelta(t, 5000.0, *first.Prizes, 1e-6)
		require.NotNil(t, first.Jackpot)
		assert.InDelta(t, 2100000.0, *first.Jackpot, 1e-6)

		assert.Nil(t, body.Points[1].Bets)
		assert.Nil(t, body.Points[1].Prizes)
	})

	t.Run("filters by date window", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/la-primitiva/bets?from=2024-06-03&to=2024-06-05")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.BetSeriesResponse
		decode(t, resp, &body)
		require.Len(t, body.Points, 2)
		assert.Equal(t, "d2", body.Points[0].DrawID)
	})

	t.Run("unknown lottery", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/powerball/bets")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestImportDraws(t *testing.T) {
	post := func(t *testing.T, app *fiber.App, path, body string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	payload := `[
		{"id_sorteo": "imp1", "fecha_sorteo": "2024-07-04 21:30:00", "combinacion": "04 - 12 - 16 - 37 - 39 - 45 C(44) R(9)"},
		{"id_sorteo": "imp2", "fecha_sorteo": "2024-07-06 21:30:00", "combinacion": "01 - 05 - 23 - 30 - 41 - 48 C(11) R(2)"},
		{"fecha_sorteo": "2024-07-08 21:30:00", "combinacion": "02 - 03 - 04 - 05 - 06 - 07"}
	]`

	t.Run("saves normalized records", func(t *testing.T) {
		store := storage.NewMemory()
		app := newTestApp(store, &mockEnqueuer{})

		resp := post(t, app, "/api/v1/lotteries/la-primitiva/draws/import", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.ImportResponse
		decode(t, resp, &body)
		assert.Equal(t, "la-primitiva", body.Lottery)
		// The record without id_sorteo is skipped
		assert.Equal(t, 2, body.Saved)
		assert.Equal(t, 2, body.Total)

		cfg := lottery.LaPrimitiva()
		raws, err := store.RawDraws(context.Background(), cfg, storage.DateWindow{})
		require.NoError(t, err)
		require.Len(t, raws, 2)
		assert.Equal(t, cfg.GameID, raws[0].GameID)
		assert.Equal(t, []int{4, 12, 16, 37, 39, 45}, raws[0].Numbers)
		require.NotNil(t, raws[0].Reintegro)
		assert.Equal(t, 9, *raws[0].Reintegro)
	})

	t.Run("re-import counts nothing new", func(t *testing.T) {
		store := storage.NewMemory()
		app := newTestApp(store, &mockEnqueuer{})

		resp := post(t, app, "/api/v1/lotteries/la-primitiva/draws/import", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = post(t, app, "/api/v1/lotteries/la-primitiva/draws/import", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.ImportResponse
		decode(t, resp, &body)
		assert.Equal(t, 0, body.Saved)
		assert.Equal(t, 2, body.Total)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newTestApp(storage.NewMemory(), &mockEnqueuer{})
		resp := post(t, app, "/api/v1/lotteries/la-primitiva/draws/import", `{"not": "an array"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown lottery", func(t *testing.T) {
		app := newTestApp(storage.NewMemory(), &mockEnqueuer{})
		resp := post(t, app, "/api/v1/lotteries/powerball/draws/import", payload)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNumberHistory(t *testing.T) {
	store, ds := seedStore(t, 8)
	app := newTestApp(store, &mockEnqueuer{})

	number := ds[0].Primary[0]

	t.Run("returns appearances", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/la-primitiva/pools/main/numbers/"+strconv.Itoa(number)+"/history")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.NumberHistoryResponse
		decode(t, resp, &body)
		assert.Equal(t, "la-primitiva", body.Lottery)
		assert.Equal(t, "main", body.Pool)
		assert.Equal(t, number, body.Number)
		require.NotEmpty(t, body.Appearances)
		first := body.Appearances[0]
		assert.Equal(t, 0, first.DrawIndex)
		assert.Equal(t, ds[0].Date, first.Date)
		assert.Nil(t, first.Gap)
	})

	t.Run("unknown pool", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/la-primitiva/pools/bonus/numbers/1/history")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric number", func(t *testing.T) {
		resp := get(t, app, "/api/v1/lotteries/la-primitiva/pools/main/numbers/abc/history")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNumberDates(t *testing.T) {
	store, ds := seedStore(t, 8)
	app := newTestApp(store, &mockEnqueuer{})

	resp := get(t, app, "/api/v1/lotteries/la-primitiva/pools/main/dates")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.NumberDatesResponse
	decode(t, resp, &body)
	assert.Equal(t, "main", body.Pool)
	require.NotEmpty(t, body.Dates)
	number := ds[0].Primary[0]
	require.Contains(t, body.Dates, number)
	assert.Equal(t, ds[0].Date, body.Dates[number][0])
}

func TestTriggerTasks(t *testing.T) {
	t.Run("scrape enqueues", func(t *testing.T) {
		queue := &mockEnqueuer{}
		app := newTestApp(storage.NewMemory(), queue)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/lotteries/euromillones/scrape", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		var body handlers.TaskResponse
		decode(t, resp, &body)
		assert.Equal(t, "queued", body.Status)
		assert.Equal(t, tasks.TypeScrape, body.Type)

		require.Len(t, queue.payloads, 1)
		payload := queue.payloads[0]
		assert.Equal(t, tasks.TypeScrape, payload.Type)
		assert.Equal(t, "euromillones", payload.Lottery)
		assert.Equal(t, tasks.TriggerAPI, payload.Trigger)
		assert.False(t, payload.EnqueuedAt.IsZero())
	})

	t.Run("rebuild enqueues", func(t *testing.T) {
		queue := &mockEnqueuer{}
		app := newTestApp(storage.NewMemory(), queue)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/lotteries/el-gordo/rebuild", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		require.Len(t, queue.payloads, 1)
		assert.Equal(t, tasks.TypeRebuild, queue.payloads[0].Type)
	})

	t.Run("duplicate task reports conflict", func(t *testing.T) {
		queue := &mockEnqueuer{err: asynq.ErrTaskIDConflict}
		app := newTestApp(storage.NewMemory(), queue)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/lotteries/euromillones/scrape", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		var body handlers.TaskResponse
		decode(t, resp, &body)
		assert.Equal(t, "already queued", body.Status)
	})

	t.Run("unknown lottery", func(t *testing.T) {
		app := newTestApp(storage.NewMemory(), &mockEnqueuer{})
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/lotteries/powerball/scrape", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
