package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ceramicflow/internal/app"
	"ceramicflow/internal/config"
	"ceramicflow/internal/database"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type reservationDTO struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	SlotInstant time.Time `json:"slot_instant"`
	Status      string    `json:"status"`
}

type artifactDTO struct {
	ID               int64  `json:"id"`
	ReservationID    int64  `json:"reservation_id"`
	Name             string `json:"name"`
	CurrentStage     string `json:"current_stage"`
	RemindersEnabled bool   `json:"reminders_enabled"`
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		DatabaseURL:           "memory",
		JWTSecret:             "test-secret",
		JWTTTL:                time.Hour,
		Location:              time.UTC,
		OpenHour:              10,
		CloseHour:             22,
		TickInterval:          time.Second,
		SelectionPolicy:       "batch",
		NotableStages:         []string{"painting", "finished"},
		NotificationRetention: 24 * time.Hour,
		PushChannel:           "test:push",
	}
}

func newTestApp(t *testing.T, backend string) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var db *gorm.DB
	if backend == "sqlite" {
		var err error
		name := strings.ReplaceAll(t.Name(), "/", "_")
		db, err = database.Connect(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
		require.NoError(t, err)
		require.NoError(t, app.Migrate(db))
	}

	a, err := app.New(testConfig(), db, true)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage, key string) T {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &wrapper))
	var out T
	require.NoError(t, json.Unmarshal(wrapper[key], &out))
	return out
}

func register(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	code, env := call(t, h, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username, "password": "secret1", "display_name": strings.ToUpper(username[:1]) + username[1:],
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	return decode[string](t, env.Data, "token")
}

func TestRouter_ReservationFlow(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t, backend)
			h := a.Router

			tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

			code, _ := call(t, h, http.MethodGet, "/healthz", "", nil)
			assert.Equal(t, http.StatusOK, code)

			alice := register(t, h, "alice")
			bob := register(t, h, "bob")

			code, env := call(t, h, http.MethodGet, "/api/v1/availability?date="+tomorrow, "", nil)
			require.Equal(t, http.StatusOK, code)
			slots := decode[[]string](t, env.Data, "slots")
			require.Len(t, slots, 12)
			assert.Equal(t, "10:00", slots[0])
			assert.Equal(t, "21:00", slots[11])

			code, env = call(t, h, http.MethodPost, "/api/v1/reservations", alice, gin.H{
				"label": "wheel class", "date": tomorrow, "slot": "14:00", "artifact_kind": "mug",
			})
			require.Equal(t, http.StatusCreated, code, env.Error)
			res := decode[reservationDTO](t, env.Data, "reservation")
			assert.Equal(t, "scheduled", res.Status)
			assert.Equal(t, tomorrow, res.Date)
			assert.Equal(t, 14, res.SlotInstant.UTC().Hour())

			code, env = call(t, h, http.MethodGet, "/api/v1/availability?date="+tomorrow, "", nil)
			require.Equal(t, http.StatusOK, code)
			slots = decode[[]string](t, env.Data, "slots")
			assert.Len(t, slots, 11)
			assert.NotContains(t, slots, "14:00")

			code, env = call(t, h, http.MethodPost, "/api/v1/reservations", bob, gin.H{
				"label": "same slot", "date": tomorrow, "slot": "14:00", "artifact_kind": "vase",
			})
			assert.Equal(t, http.StatusConflict, code)
			assert.Equal(t, "CONFLICT", env.Error.Code)

			path := fmt.Sprintf("/api/v1/artifacts/%d", res.ID)
			code, env = call(t, h, http.MethodGet, path, alice, nil)
			require.Equal(t, http.StatusOK, code)
			art := decode[artifactDTO](t, env.Data, "artifact")
			assert.Equal(t, "My mug", art.Name)
			assert.Equal(t, "modeling", art.CurrentStage)
			assert.True(t, art.RemindersEnabled)

			// foreign ids look exactly like missing ones
			codeForeign, envForeign := call(t, h, http.MethodGet, path, bob, nil)
			codeMissing, envMissing := call(t, h, http.MethodGet, "/api/v1/artifacts/99999", bob, nil)
			assert.Equal(t, http.StatusNotFound, codeForeign)
			assert.Equal(t, codeMissing, codeForeign)
			assert.Equal(t, envMissing.Error, envForeign.Error)

			code, _ = call(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", res.ID), bob, nil)
			assert.Equal(t, http.StatusNotFound, code)

			code, env = call(t, h, http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", res.ID), alice, gin.H{"slot": "15:00"})
			require.Equal(t, http.StatusOK, code, env.Error)
			moved := decode[reservationDTO](t, env.Data, "reservation")
			assert.Equal(t, 15, moved.SlotInstant.UTC().Hour())

			code, env = call(t, h, http.MethodPut, path, alice, gin.H{"reminders_enabled": false})
			require.Equal(t, http.StatusOK, code, env.Error)
			assert.False(t, decode[artifactDTO](t, env.Data, "artifact").RemindersEnabled)

			code, env = call(t, h, http.MethodPut, path, alice, gin.H{})
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Equal(t, "required", env.Error.Details["reminders_enabled"])

			code, env = call(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", res.ID), alice, nil)
			require.Equal(t, http.StatusOK, code, env.Error)

			code, env = call(t, h, http.MethodGet, "/api/v1/artifacts", alice, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Empty(t, decode[[]artifactDTO](t, env.Data, "artifacts"))

			code, env = call(t, h, http.MethodGet, "/api/v1/availability?date="+tomorrow, "", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Len(t, decode[[]string](t, env.Data, "slots"), 12)
		})
	}
}

func TestRouter_StageProgressionNotifies(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t, backend)
			h := a.Router
			ctx := context.Background()

			alice := register(t, h, "alice")
			yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

			code, env := call(t, h, http.MethodPost, "/api/v1/reservations", alice, gin.H{
				"label": "past class", "date": yesterday, "slot": "12:00", "artifact_kind": "vase",
			})
			require.Equal(t, http.StatusCreated, code, env.Error)
			res := decode[reservationDTO](t, env.Data, "reservation")

			srv := httptest.NewServer(h)
			defer srv.Close()

			conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?token="+alice, nil)
			require.NoError(t, err)
			defer conn.Close()
			readFrame(t, conn) // connected

			for i := 0; i < 3; i++ {
				moved, err := a.Advancer.Tick(ctx)
				require.NoError(t, err)
				assert.Equal(t, 1, moved)
			}

			stages := make([]string, 0, 3)
			for i := 0; i < 3; i++ {
				f := readFrame(t, conn)
				assert.Equal(t, "stage_updated", f.Event)
				stages = append(stages, f.Payload.Stage)
				assert.Equal(t, res.ID, f.Payload.ReservationID)
			}
			assert.Equal(t, []string{"drying", "firing", "painting"}, stages)

			code, env = call(t, h, http.MethodGet, "/api/v1/notifications", alice, nil)
			require.Equal(t, http.StatusOK, code)
			events := decode[[]map[string]any](t, env.Data, "notifications")
			require.Len(t, events, 1)
			assert.Equal(t, `Your object "My vase" is now ready for painting.`, events[0]["message"])
			assert.NotContains(t, events[0], "owner_id")

			code, env = call(t, h, http.MethodGet, "/api/v1/notifications", alice, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Empty(t, decode[[]map[string]any](t, env.Data, "notifications"))

			code, env = call(t, h, http.MethodGet, "/api/v1/reservations?date="+yesterday, alice, nil)
			require.Equal(t, http.StatusOK, code)
			list := decode[[]reservationDTO](t, env.Data, "reservations")
			require.Len(t, list, 1)
			assert.Equal(t, "in_progress", list[0].Status)
		})
	}
}

type pushFrame struct {
	Event   string `json:"event"`
	Payload struct {
		ReservationID int64  `json:"reservation_id"`
		Stage         string `json:"stage"`
	} `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) pushFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f pushFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestRouter_AuthAndErrors(t *testing.T) {
	a := newTestApp(t, "memory")
	h := a.Router

	token := register(t, h, "alice")

	code, env := call(t, h, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "alice", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "carol", "password": "secret1", "phone": "555"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "e164", env.Error.Details["phone"])

	code, env = call(t, h, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong!!"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "ALICE", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, decode[string](t, env.Data, "token"))

	code, env = call(t, h, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, string(env.Data), "password")

	code, env = call(t, h, http.MethodGet, "/api/v1/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/api/v1/reservations", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	code, env = call(t, h, http.MethodDelete, "/api/v1/reservations/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/api/v1/availability?date=June-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/api/v1/reservations", token, gin.H{
		"label": "x", "date": "2030-01-01", "slot": "10:00", "artifact_kind": "teapot",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
