package config

import (
	"os"
	"path/filepath"
	"testing"

	"bjorkvang/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: bjorkvang
booking:
  policy: board
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.AllowOrigin)
	assert.Equal(t, "x-api-key", cfg.Auth.HeaderAPIKey)
	assert.Equal(t, float64(models.DefaultDurationHours), cfg.Booking.DefaultDurationHours)
	assert.Equal(t, float64(models.AutoConfirmHours), cfg.Booking.AutoConfirmHours)
	assert.Equal(t, models.FullVenueSpace, cfg.Booking.FullVenueSpace)
	assert.Equal(t, models.DefaultMaxBookingDays, cfg.Booking.MaxBookingDays)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_SMTP_PASSWORD", "hemmelig")
	path := writeConfig(t, `
booking:
  policy: heuristic
mail:
  enabled: true
  from: post@example.com
  smtp:
    password: ${TEST_SMTP_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hemmelig", cfg.Mail.SMTP.Password)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := writeConfig(t, `
booking:
  policy: maybe
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking.policy")
}

func TestLoadBoardPolicyNeedsBoardAddress(t *testing.T) {
	path := writeConfig(t, `
booking:
  policy: board
mail:
  enabled: true
  from: post@example.com
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board_to")
}

func TestValidateSpaces(t *testing.T) {
	good := []models.Space{
		{ID: 1, Name: "storsalen"},
		{ID: 2, Name: "kjøkken"},
	}
	assert.NoError(t, ValidateSpaces(good))

	dupID := []models.Space{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}
	assert.Error(t, ValidateSpaces(dupID))

	dupName := []models.Space{{ID: 1, Name: "a"}, {ID: 2, Name: "a"}}
	assert.Error(t, ValidateSpaces(dupName))

	zeroID := []models.Space{{Name: "a"}}
	assert.Error(t, ValidateSpaces(zeroID))
}
