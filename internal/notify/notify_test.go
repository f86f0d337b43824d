package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
)

func TestWindowsFromConfig(t *testing.T) {
	cfg := &config.Config{
		PrayerWindowMin: 5,
		DelayOffsetMin:  20,
		DelayWindowMin:  5,
		QuranStart:      "20:30",
		QuranWindowMin:  15,
	}

	win, err := WindowsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Windows{
		PrayerWindowMin: 5,
		DelayOffsetMin:  20,
		DelayWindowMin:  5,
		QuranStartMin:   20*60 + 30,
		QuranWindowMin:  15,
	}, win)
}

func TestWindowsFromConfigRejectsBadQuranStart(t *testing.T) {
	cfg := &config.Config{QuranStart: "25:99"}
	_, err := WindowsFromConfig(cfg)
	require.Error(t, err)
}

func TestDefaultWindowsPreserveDeployedBehavior(t *testing.T) {
	assert.Equal(t, Windows{
		PrayerWindowMin: 10,
		DelayOffsetMin:  15,
		DelayWindowMin:  10,
		QuranStartMin:   21 * 60,
		QuranWindowMin:  20,
	}, DefaultWindows())
}
