package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/known", func(fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "lottery not found")
	})
	app.Get("/unknown", func(fiber.Ctx) error {
		return errors.New("mongo exploded")
	})

	t.Run("fiber errors keep status and message", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/known", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "lottery not found", body["error"])
		assert.Equal(t, float64(http.StatusNotFound), body["code"])
	})

	t.Run("other errors stay opaque", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unknown", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "internal server error", body["error"])
		assert.NotContains(t, body["error"], "mongo")
	})
}
