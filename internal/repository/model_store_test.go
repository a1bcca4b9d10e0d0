package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/ml"
)

func trainedFixture(t *testing.T, symbol string) *ml.TrainedModel {
	t.Helper()
	cols := []string{"a", "b"}
	X := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}, {5, 10}}
	y := []float64{3, 6, 9, 12, 15}

	scaler := ml.NewStandardScaler(cols)
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	lr := ml.NewLinearRegression()
	require.NoError(t, lr.Fit(scaled, y))

	return &ml.TrainedModel{
		Symbol:        symbol,
		Columns:       cols,
		SchemaVersion: models.FeatureSchemaVersion,
		Model:         lr,
		Scaler:        scaler,
		ValidationMSE: 0.01,
		TrainedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestModelStoreRoundTrip(t *testing.T) {
	store, err := NewModelStore(t.TempDir())
	require.NoError(t, err)

	m := trainedFixture(t, "BTCUSDT")
	require.False(t, store.Exists("BTCUSDT"))
	require.NoError(t, store.Save(m))
	require.True(t, store.Exists("BTCUSDT"))

	back, err := store.Load("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, m.Symbol, back.Symbol)
	assert.Equal(t, m.Columns, back.Columns)
	assert.Equal(t, m.ValidationMSE, back.ValidationMSE)
	assert.Equal(t, ml.ModelLinear, back.Model.Name())

	want, err := m.PredictRow([]float64{3, 6}, m.Columns)
	require.NoError(t, err)
	got, err := back.PredictRow([]float64{3, 6}, back.Columns)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestModelStoreMissingArtifact(t *testing.T) {
	store, err := NewModelStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("ETHUSDT")
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
}

func TestModelStoreCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewModelStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(trainedFixture(t, "SOLUSDT")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SOLUSDT_model.gob"), []byte("garbage"), 0o644))

	_, err = store.Load("SOLUSDT")
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
}

func TestModelStoreHalfPairIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	store, err := NewModelStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(trainedFixture(t, "ADAUSDT")))
	require.NoError(t, os.Remove(filepath.Join(dir, "ADAUSDT_scaler.gob")))

	assert.False(t, store.Exists("ADAUSDT"))
	_, err = store.Load("ADAUSDT")
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
}

func TestModelStoreDelete(t *testing.T) {
	store, err := NewModelStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(trainedFixture(t, "BTCUSDT")))
	require.NoError(t, store.Delete("BTCUSDT"))
	assert.False(t, store.Exists("BTCUSDT"))
	require.NoError(t, store.Delete("BTCUSDT"), "deleting twice is fine")
}
