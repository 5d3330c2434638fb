package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/controller"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t     *testing.T
	app   *App
	token string
}

func newTestClient(t *testing.T, compensate bool) *testClient {
	t.Helper()
	a, err := New(&Config{
		RunAddress:        "localhost:0",
		JWTSecretKey:      "test-secret",
		TokenTTL:          time.Hour,
		CompensateBalance: compensate,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return &testClient{t: t, app: a}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.app.Router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (c *testClient) register(name, email string) *model.User {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/users", model.CreateUserInput{Name: name, Email: email, Password: "Secr3t!"})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decodeBody[model.User](c.t, rec)
	return &user
}

func (c *testClient) login(email string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/login", map[string]string{"email": email, "password": "Secr3t!"})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	c.token = decodeBody[controller.LoginResponse](c.t, rec).AccessToken
	require.NotEmpty(c.t, c.token)
}

func (c *testClient) balance(userID string) decimal.Decimal {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/users/"+userID, nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[model.User](c.t, rec).Balance
}

func (c *testClient) createReceive(userID, typ string, value int64) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodPost, "/receives", map[string]any{
		"description": typ + " entry",
		"value":       value,
		"type":        typ,
		"date":        "2024-05-01",
		"user_id":     userID,
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newTestClient(t, false)

	for _, path := range []string{"/users", "/receives/all", "/receives?user_id=x&date=y"} {
		rec := c.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.Equal(t, "unauthorized", decodeBody[controller.ErrorResponse](t, rec).Kind)
	}

	c.token = "not.a.token"
	rec := c.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationAndLogin(t *testing.T) {
	c := newTestClient(t, false)

	user := c.register("Alice", "alice@example.com")
	require.Equal(t, "alice@example.com", user.Email)
	require.True(t, user.Balance.IsZero())
	require.Empty(t, user.PasswordHash)

	rec := c.do(http.MethodPost, "/users", model.CreateUserInput{Name: "Alice", Email: "ALICE@example.com", Password: "Secr3t!"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/users", model.CreateUserInput{Name: "Bob", Email: "bob", Password: "weak"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, decodeBody[controller.ErrorResponse](t, rec).Fields)

	rec = c.do(http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "Wr0ng!!"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := decodeBody[controller.ErrorResponse](t, rec)

	rec = c.do(http.MethodPost, "/login", map[string]string{"email": "nobody@example.com", "password": "Secr3t!"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, wrongPassword, decodeBody[controller.ErrorResponse](t, rec))

	rec = c.do(http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "Secr3t!"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestLedgerFlow(t *testing.T) {
	c := newTestClient(t, false)
	alice := c.register("Alice", "alice@example.com")
	c.login("alice@example.com")

	rec := c.createReceive(alice.ID, "income", 100)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	income := decodeBody[model.Receive](t, rec)
	require.NotNil(t, income.User)
	require.Equal(t, alice.ID, income.User.ID)

	rec = c.createReceive(alice.ID, "expense", 40)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	expense := decodeBody[model.Receive](t, rec)

	require.True(t, c.balance(alice.ID).Equal(decimal.NewFromInt(60)))

	rec = c.createReceive(alice.ID, "transfer", 5)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.createReceive("3f2b8c1d-0000-4000-8000-000000000000", "income", 5)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, c.balance(alice.ID).Equal(decimal.NewFromInt(60)))

	rec = c.do(http.MethodGet, "/receives?user_id="+alice.ID+"&date=2024-05-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]model.Receive](t, rec), 2)

	rec = c.do(http.MethodGet, "/receives?user_id="+alice.ID+"&date=2024-06-01", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPatch, "/receives/"+expense.ID, map[string]any{"description": "rent"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "rent", decodeBody[model.Receive](t, rec).Description)

	rec = c.do(http.MethodDelete, "/receives/"+expense.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, c.balance(alice.ID).Equal(decimal.NewFromInt(60)))

	rec = c.do(http.MethodGet, "/receives/"+expense.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/receives/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]model.Receive](t, rec)
	require.Len(t, all, 1)
	require.Equal(t, income.ID, all[0].ID)
}

func TestCompensatedDelete(t *testing.T) {
	c := newTestClient(t, true)
	alice := c.register("Alice", "alice@example.com")
	c.login("alice@example.com")

	require.Equal(t, http.StatusCreated, c.createReceive(alice.ID, "income", 100).Code)
	rec := c.createReceive(alice.ID, "expense", 40)
	require.Equal(t, http.StatusCreated, rec.Code)
	expense := decodeBody[model.Receive](t, rec)

	rec = c.do(http.MethodDelete, "/receives/"+expense.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, c.balance(alice.ID).Equal(decimal.NewFromInt(100)))
}

func TestUserManagement(t *testing.T) {
	c := newTestClient(t, false)
	alice := c.register("Alice", "alice@example.com")
	bob := c.register("Bob", "bob@example.com")
	c.login("alice@example.com")

	rec := c.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[[]model.User](t, rec), 2)

	rec = c.do(http.MethodGet, "/users/email?email=bob@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, bob.ID, decodeBody[model.User](t, rec).ID)

	rec = c.do(http.MethodPut, "/users/"+alice.ID, map[string]any{"email": "bob@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPut, "/users/"+alice.ID, map[string]any{"name": "Alice Cooper"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Alice Cooper", decodeBody[model.User](t, rec).Name)

	rec = c.do(http.MethodDelete, "/users/"+bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/users/"+bob.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
