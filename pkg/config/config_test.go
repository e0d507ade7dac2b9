package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8085" {
		t.Errorf("Expected Port to be 8085, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected DB MaxConns to be 10, got %d", cfg.Database.MaxConns)
	}

	if cfg.LLM.Provider != "groq" {
		t.Errorf("Expected LLM Provider to be groq, got %s", cfg.LLM.Provider)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LLM_PROVIDER", "openai")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("DB_MAX_CONNS")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("LLM_PROVIDER")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected LLM Provider to be openai, got %s", cfg.LLM.Provider)
	}
}

func TestValidateHistoryRequiresDatabaseURL(t *testing.T) {
	os.Setenv("HISTORY_ENABLED", "true")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("HISTORY_ENABLED")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when HISTORY_ENABLED is set without DATABASE_URL, got nil")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestResolvedBaseURL(t *testing.T) {
	tests := []struct {
		name string
		llm  LLMConfig
		want string
	}{
		{
			name: "explicit URL wins",
			llm:  LLMConfig{Provider: "groq", BaseURL: "http://localhost:9999/v1"},
			want: "http://localhost:9999/v1",
		},
		{
			name: "groq default",
			llm:  LLMConfig{Provider: "groq"},
			want: "https://api.groq.com/openai/v1",
		},
		{
			name: "ollama default",
			llm:  LLMConfig{Provider: "ollama"},
			want: "http://localhost:11434/v1",
		},
		{
			name: "unknown provider falls back to openai",
			llm:  LLMConfig{Provider: "mystery"},
			want: "https://api.openai.com/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.llm.ResolvedBaseURL(); got != tt.want {
				t.Errorf("ResolvedBaseURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "3.5")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 1.0)
	if value != 3.5 {
		t.Errorf("Expected value to be 3.5, got %v", value)
	}
}
