package unit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OnlyExecUsesDefaults(t *testing.T) {
	u, err := Parse([]byte(`Exec = "echo hi"`))
	require.NoError(t, err)

	assert.Equal(t, "echo hi", u.Exec)
	assert.True(t, u.WakeLock, "WakeLock should default to true")
	assert.Nil(t, u.OnBootSec)
	assert.Nil(t, u.OnUnitActiveSec)
	assert.Empty(t, u.Description)
	assert.Equal(t, DefaultBootDelay, u.InitialDelay())
	_, repeats := u.Interval()
	assert.False(t, repeats)
}

func TestParse_AllFields(t *testing.T) {
	u, err := Parse([]byte(`
Description = "Nightly backup"
Exec = "/data/adb/backup.sh --full"
OnBootSec = "2m"
OnUnitActiveSec = "1h 30m"
WakeLock = false
`))
	require.NoError(t, err)

	assert.Equal(t, "Nightly backup", u.Description)
	assert.Equal(t, "/data/adb/backup.sh --full", u.Exec)
	require.NotNil(t, u.OnBootSec)
	assert.Equal(t, 2*time.Minute, u.OnBootSec.Std())
	assert.Equal(t, 2*time.Minute, u.InitialDelay())
	interval, repeats := u.Interval()
	assert.True(t, repeats)
	assert.Equal(t, 90*time.Minute, interval)
	assert.False(t, u.WakeLock)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing exec", input: `Description = "x"`, wantErr: ErrMissingExec},
		{name: "blank exec", input: `Exec = "   "`, wantErr: ErrMissingExec},
		{name: "unknown field", input: "Exec = \"true\"\nRetries = 3", wantErr: ErrUnknownField},
		{name: "wrong capitalisation", input: `exec = "true"`, wantErr: ErrUnknownField},
		{name: "nested table", input: "Exec = \"true\"\n[Extra]\nKey = 1", wantErr: ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestParse_NegativeDuration(t *testing.T) {
	_, err := Parse([]byte("Exec = \"true\"\nOnBootSec = \"-5s\""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrNegativeDuration.Error())
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		`Exec = `,
		`Exec = "true"` + "\nOnBootSec = \"soon\"",
		`Exec = "true"` + "\nOnBootSec = 30",
		`Exec = "true"` + "\nWakeLock = \"yes\"",
	}
	for _, in := range inputs {
		_, err := Parse([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestInterval_ZeroMeansOnce(t *testing.T) {
	u, err := Parse([]byte("Exec = \"true\"\nOnUnitActiveSec = \"0s\""))
	require.NoError(t, err)

	require.NotNil(t, u.OnUnitActiveSec)
	_, repeats := u.Interval()
	assert.False(t, repeats)
}
