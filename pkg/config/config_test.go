package config

import (
	"os"
	"testing"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"APP_NAME", "APP_ENVIRONMENT", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT",
		"DATABASE_HOST", "DATABASE_PORT", "DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_DBNAME",
		"STRIPE_SECRET_KEY", "STRIPE_ENVIRONMENT", "STRIPE_CURRENCY",
		"OTEL_ENABLED",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "clubcuvee" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "clubcuvee")
	}

	if cfg.App.Environment != "development" {
		t.Errorf("App.Environment = %q, want %q", cfg.App.Environment, "development")
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}

	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want %d", cfg.Database.MaxConns, 25)
	}

	if cfg.Stripe.Environment != "test" {
		t.Errorf("Stripe.Environment = %q, want %q", cfg.Stripe.Environment, "test")
	}

	if cfg.Stripe.Currency != "usd" {
		t.Errorf("Stripe.Currency = %q, want %q", cfg.Stripe.Currency, "usd")
	}
}

func TestLoad_WithEnvOverride(t *testing.T) {
	os.Setenv("APP_NAME", "test-app")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DATABASE_HOST", "db.example.com")
	os.Setenv("STRIPE_SECRET_KEY", "sk_test_abc123")
	defer func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DATABASE_HOST")
		os.Unsetenv("STRIPE_SECRET_KEY")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "test-app")
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}

	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "db.example.com")
	}

	if cfg.Stripe.SecretKey != "sk_test_abc123" {
		t.Errorf("Stripe.SecretKey = %q, want %q", cfg.Stripe.SecretKey, "sk_test_abc123")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.DSN(); dsn != expected {
		t.Errorf("DSN() = %q, want %q", dsn, expected)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test"},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				App:      AppConfig{Name: "", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test"},
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: -1},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test"},
			},
			wantErr: true,
		},
		{
			name: "port too high",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 70000},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test"},
			},
			wantErr: true,
		},
		{
			name: "missing database host",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test"},
			},
			wantErr: true,
		},
		{
			name: "invalid stripe environment",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "sandbox"},
			},
			wantErr: true,
		},
		{
			name: "missing stripe key in production",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "production"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "live", SecretKey: ""},
			},
			wantErr: true,
		},
		{
			name: "test stripe environment in production",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "production"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Host: "localhost", DBName: "testdb"},
				Stripe:   StripeConfig{Environment: "test", SecretKey: "sk_test_abc"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}

	cfg.App.Environment = "development"
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "development"},
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}

	cfg.App.Environment = "production"
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
}
