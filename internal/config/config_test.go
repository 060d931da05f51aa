package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Embedding: EmbeddingConfig{Provider: ProviderHashing},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "nebius"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	expected := `embedding.provider must be "openai" or "hashing", got "nebius"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_OpenAIRequiresKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = ProviderOpenAI
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}

	cfg.Embedding.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }},
		{"top_p", func(c *Config) { c.LLM.TopP = 1.5 }},
		{"dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }},
		{"extension", func(c *Config) { c.Knowledge.Extension = "md" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Errorf("expected CORSOrigins=[*], got %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected Driver=sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("expected Provider=openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.TopP != 0.8 {
		t.Errorf("expected TopP=0.8, got %v", cfg.LLM.TopP)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("expected MaxTokens=2048, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Knowledge.Dir != "knowledge_base" {
		t.Errorf("expected Dir=knowledge_base, got %q", cfg.Knowledge.Dir)
	}
	if cfg.Knowledge.Extension != ".md" {
		t.Errorf("expected Extension=.md, got %q", cfg.Knowledge.Extension)
	}
	if cfg.Knowledge.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Knowledge.TopK)
	}
	if cfg.Cache.Enabled() {
		t.Error("expected cache disabled without addrs")
	}
}

func TestApplyDefaults_HashingDimensions(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Provider: ProviderHashing}}
	cfg.ApplyDefaults()

	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{DSN: ":memory:"},
		Knowledge: KnowledgeConfig{TopK: 5, SnapshotPath: "/tmp/kb.bin"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("expected DSN=:memory:, got %q", cfg.Database.DSN)
	}
	if cfg.Knowledge.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Knowledge.TopK)
	}
	if cfg.Knowledge.SnapshotPath != "/tmp/kb.bin" {
		t.Errorf("expected SnapshotPath=/tmp/kb.bin, got %q", cfg.Knowledge.SnapshotPath)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("COURSEBOT_TEST_KEY", "gm-123")

	data := []byte(`
embedding:
  provider: hashing
llm:
  api_key: ${COURSEBOT_TEST_KEY}
  model: ${COURSEBOT_TEST_MODEL:-gemini-test}
cache:
  addrs:
    - ${COURSEBOT_TEST_REDIS:-localhost:6379}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "gm-123" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gemini-test" {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if !cfg.Cache.Enabled() || cfg.Cache.Addrs[0] != "localhost:6379" {
		t.Errorf("expected cache addr default, got %v", cfg.Cache.Addrs)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("embedding:\n  provider: bogus\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "invalid config:") {
		t.Errorf("expected invalid config error, got %q", err.Error())
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", ProviderHashing)

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Knowledge.Dir == "" {
		t.Error("expected knowledge dir")
	}
}
