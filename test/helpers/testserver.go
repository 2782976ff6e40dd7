package helpers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"miaoyou_backend/database"
	"miaoyou_backend/internal/app"
	"miaoyou_backend/internal/config"
	"miaoyou_backend/internal/services"
)

// TestDatabaseEnv - DSN тестовой базы. Без него интеграционные тесты пропускаются.
const TestDatabaseEnv = "TEST_DATABASE_URL"

const (
	AdminUsername = "admin"
	AdminPassword = "admin_password_123"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	DB     *gorm.DB
	LogDir string
}

// NewTestServer поднимает приложение целиком поверх тестовой БД.
// Планировщик не запускается: задачи дергаются через admin API.
func NewTestServer(logDir string) (*TestServer, error) {
	os.Setenv("CONFIG_PATH", "does-not-exist.yaml")
	os.Setenv("APP_ENV", "test")
	os.Setenv("DATABASE_URL", os.Getenv(TestDatabaseEnv))
	os.Setenv("JWT_SECRET", "integration_secret_key_12345")
	os.Setenv("ANALYTICS_TIMEZONE", "UTC")
	os.Setenv("ANALYTICS_LOG_DIR", logDir)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	application, err := app.New(cfg, db)
	if err != nil {
		return nil, err
	}

	log.Printf("Test server ready, event log in %s", logDir)
	return &TestServer{
		Server: httptest.NewServer(application.Router),
		App:    application,
		DB:     db,
		LogDir: logDir,
	}, nil
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	database.Close(ts.DB)
}

// ClearTables очищает все таблицы и заново создает администратора.
func (ts *TestServer) ClearTables(t *testing.T) {
	t.Helper()

	err := ts.DB.Exec("TRUNCATE TABLE comments, articles, moments, works, categories, analytics, daily_stats, users RESTART IDENTITY CASCADE").Error
	if err != nil {
		t.Fatalf("Не удалось очистить таблицы: %v", err)
	}

	err = ts.App.Services.AuthService.EnsureAdmin(ts.DB, services.AdminSeed{
		Username: AdminUsername,
		Email:    "admin@miaoyou.test",
		Password: AdminPassword,
	})
	if err != nil {
		t.Fatalf("Не удалось создать администратора: %v", err)
	}
}

// SendRequest отправляет JSON-запрос и возвращает ответ с телом.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	return res, string(resBody)
}

// Login логинится и возвращает access token.
func (ts *TestServer) Login(t *testing.T, username, password string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Логин %s не удался (%d): %s", username, res.StatusCode, body)
	}

	var resp struct {
		Token string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Не удалось распарсить ответ логина: %v", err)
	}
	return resp.Token
}

func (ts *TestServer) LoginAdmin(t *testing.T) string {
	return ts.Login(t, AdminUsername, AdminPassword)
}

// Decode разбирает JSON-тело ответа в out.
func Decode(t *testing.T, body string, out interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("Не удалось распарсить JSON %q: %v", body, err)
	}
}
