package repository

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	domainrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/ml"
)

var _ domainrepo.ModelStore = (*ModelStore)(nil)

// ModelStore persists one artifact pair per symbol on disk:
// {SYMBOL}_model.gob next to {SYMBOL}_scaler.gob. The pair is written
// atomically and loaded only when both halves agree on the column layout.
type ModelStore struct {
	dir string
}

// modelArtifact is the serialized model half of the pair.
type modelArtifact struct {
	Symbol        string
	Columns       []string
	SchemaVersion int
	Model         ml.Regressor
	ValidationMSE float64
	Samples       int
	TrainedAt     time.Time
}

// scalerArtifact is the serialized scaler half of the pair.
type scalerArtifact struct {
	Symbol        string
	Columns       []string
	SchemaVersion int
	Scaler        *ml.StandardScaler
}

// NewModelStore creates the artifact directory if needed.
func NewModelStore(dir string) (*ModelStore, error) {
	if dir == "" {
		dir = "models"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir %s: %w", dir, err)
	}
	return &ModelStore{dir: dir}, nil
}

// Exists reports whether both halves of the artifact pair are on disk.
func (s *ModelStore) Exists(symbol string) bool {
	for _, p := range []string{s.modelPath(symbol), s.scalerPath(symbol)} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Save writes both artifacts through temp files and renames them into place,
// so a crash mid-write never leaves a truncated artifact behind.
func (s *ModelStore) Save(m *ml.TrainedModel) error {
	if m == nil || m.Model == nil || m.Scaler == nil {
		return fmt.Errorf("save model: incomplete trained model")
	}
	ma := modelArtifact{
		Symbol:        m.Symbol,
		Columns:       m.Columns,
		SchemaVersion: m.SchemaVersion,
		Model:         m.Model,
		ValidationMSE: m.ValidationMSE,
		Samples:       m.Samples,
		TrainedAt:     m.TrainedAt,
	}
	sa := scalerArtifact{
		Symbol:        m.Symbol,
		Columns:       m.Columns,
		SchemaVersion: m.SchemaVersion,
		Scaler:        m.Scaler,
	}
	if err := writeGob(s.modelPath(m.Symbol), &ma); err != nil {
		return fmt.Errorf("save model %s: %w", m.Symbol, err)
	}
	if err := writeGob(s.scalerPath(m.Symbol), &sa); err != nil {
		return fmt.Errorf("save scaler %s: %w", m.Symbol, err)
	}
	return nil
}

// Load reads and validates the artifact pair. A missing, corrupt or
// schema-incompatible pair comes back as ErrModelUnavailable so callers can
// fall through to a retrain.
func (s *ModelStore) Load(symbol string) (*ml.TrainedModel, error) {
	var ma modelArtifact
	if err := readGob(s.modelPath(symbol), &ma); err != nil {
		return nil, fmt.Errorf("load model %s: %v: %w", symbol, err, models.ErrModelUnavailable)
	}
	var sa scalerArtifact
	if err := readGob(s.scalerPath(symbol), &sa); err != nil {
		return nil, fmt.Errorf("load scaler %s: %v: %w", symbol, err, models.ErrModelUnavailable)
	}

	if ma.SchemaVersion != models.FeatureSchemaVersion || sa.SchemaVersion != models.FeatureSchemaVersion {
		return nil, fmt.Errorf("artifact schema v%d for %s: %w", ma.SchemaVersion, symbol, models.ErrModelUnavailable)
	}
	if !ml.ColumnsEqual(ma.Columns, sa.Columns) || sa.Scaler == nil || ma.Model == nil {
		return nil, fmt.Errorf("artifact pair disagreement for %s: %w", symbol, models.ErrModelUnavailable)
	}

	return &ml.TrainedModel{
		Symbol:        ma.Symbol,
		Columns:       ma.Columns,
		SchemaVersion: ma.SchemaVersion,
		Model:         ma.Model,
		Scaler:        sa.Scaler,
		ValidationMSE: ma.ValidationMSE,
		Samples:       ma.Samples,
		TrainedAt:     ma.TrainedAt,
	}, nil
}

// Delete removes both halves, ignoring files already gone.
func (s *ModelStore) Delete(symbol string) error {
	for _, p := range []string{s.modelPath(symbol), s.scalerPath(symbol)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete artifact %s: %w", p, err)
		}
	}
	return nil
}

func (s *ModelStore) modelPath(symbol string) string {
	return filepath.Join(s.dir, sanitize(symbol)+"_model.gob")
}

func (s *ModelStore) scalerPath(symbol string) string {
	return filepath.Join(s.dir, sanitize(symbol)+"_scaler.gob")
}

func sanitize(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		default:
			return -1
		}
	}, symbol)
}

func writeGob(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func readGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
