package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/spf13/cast"
)

// SettingsRepository keeps the presentation preferences in a JSON document next to the database.
type SettingsRepository struct {
	path     string
	validate *validator.Validate
}

func NewSettingsRepository(path string) *SettingsRepository {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &SettingsRepository{path: path, validate: v}
}

// Path returns the settings document location.
func (r *SettingsRepository) Path() string {
	return r.path
}

// Load reads the settings document. A missing or unreadable document yields the defaults;
// a field that cannot be coerced or fails validation falls back to its own default.
func (r *SettingsRepository) Load(ctx context.Context) models.Settings {
	s := models.DefaultSettings()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return s
	}
	if err != nil {
		logger.Log.Warnw("failed to read settings, using defaults", "path", r.path, "error", err)
		return s
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Log.Warnw("malformed settings, using defaults", "path", r.path, "error", err)
		return s
	}

	def := models.DefaultSettings()
	for key, val := range raw {
		var err error
		switch key {
		case "currency_symbol":
			s.CurrencySymbol, err = cast.ToStringE(val)
		case "date_format":
			s.DateFormat, err = cast.ToStringE(val)
		case "theme":
			s.Theme, err = cast.ToStringE(val)
		case "records_per_page":
			s.RecordsPerPage, err = cast.ToIntE(val)
		case "show_charts":
			s.ShowCharts, err = toBool(val)
		default:
			continue
		}
		if err != nil {
			logger.Log.Warnw("unreadable setting, using default", "field", key, "value", val, "error", err)
			resetField(&s, def, key)
		}
	}

	var verrs validator.ValidationErrors
	if err := r.validate.Struct(s); errors.As(err, &verrs) {
		for _, fe := range verrs {
			logger.Log.Warnw("invalid setting, using default", "field", fe.Field(), "value", fe.Value())
			resetField(&s, def, fe.Field())
		}
	}
	return s
}

// Validate checks s against the settings rules.
func (r *SettingsRepository) Validate(s models.Settings) error {
	return r.validate.Struct(s)
}

// Save validates s and replaces the settings document atomically.
func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	if err := r.Validate(s); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode settings: %w", models.ErrIO, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}

	logger.Log.Infow("settings saved", "path", r.path)
	return nil
}

// toBool accepts the checkbox values older settings files carry ("on"/"off") on top of cast's rules.
func toBool(v any) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes":
			return true, nil
		case "off", "no", "":
			return false, nil
		}
	}
	return cast.ToBoolE(v)
}

func resetField(s *models.Settings, def models.Settings, field string) {
	switch field {
	case "currency_symbol":
		s.CurrencySymbol = def.CurrencySymbol
	case "date_format":
		s.DateFormat = def.DateFormat
	case "theme":
		s.Theme = def.Theme
	case "records_per_page":
		s.RecordsPerPage = def.RecordsPerPage
	case "show_charts":
		s.ShowCharts = def.ShowCharts
	}
}
