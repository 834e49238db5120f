package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VECTOR_DB_ENDPOINT", "postgres://bot@localhost:5432/ecomm")
	t.Setenv("VECTOR_DB_TOKEN", "secret")
	t.Setenv("VECTOR_DB_NAMESPACE", "reviews")
	t.Setenv("GROQ_API_KEY", "gsk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, "ecomm", cfg.VectorDB.Collection)
	assert.Equal(t, "openai", cfg.Embedding.Preference)
	assert.Equal(t, "BAAI/bge-base-en-v1.5", cfg.Embedding.HFModel)
	assert.Equal(t, "llama-3.1-70b-versatile", cfg.LLM.Model)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "data/flipkart_product_review.csv", cfg.Ingest.CSVPath)
	assert.False(t, cfg.Ingest.OnStartup)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("EMBEDDING_PREFERENCE", "HuggingFace")
	t.Setenv("EMBEDDING_STRICT", "true")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("LLM_TEMPERATURE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "huggingface", cfg.Embedding.Preference)
	assert.True(t, cfg.Embedding.Strict)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-9)
}

func TestValidateListsEveryMissingVariable(t *testing.T) {
	setRequired(t)
	t.Setenv("HF_TOKEN", "")
	t.Setenv("VECTOR_DB_NAMESPACE", "  ")

	err := Load().Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingConfig))

	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"HF_TOKEN", "VECTOR_DB_NAMESPACE"}, missing.Names)
	assert.Contains(t, err.Error(), "HF_TOKEN, VECTOR_DB_NAMESPACE")
}

func TestGroqKeyRequiredOnlyForGroq(t *testing.T) {
	setRequired(t)
	t.Setenv("GROQ_API_KEY", "")

	t.Setenv("LLM_PROVIDER", "huggingface")
	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", cfg.LLM.Model)

	t.Setenv("LLM_PROVIDER", "openai")
	cfg = Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)

	t.Setenv("LLM_PROVIDER", "groq")
	var missing *MissingError
	require.ErrorAs(t, Load().Validate(), &missing)
	assert.Equal(t, []string{"GROQ_API_KEY"}, missing.Names)
}

func TestExplicitModelWins(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "huggingface")
	t.Setenv("LLM_MODEL", "Qwen/Qwen2.5-7B-Instruct")

	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", Load().LLM.Model)
}
