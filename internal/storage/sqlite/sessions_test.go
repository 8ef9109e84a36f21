package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/session"
	"github.com/aerosense/aerosense/pkg/logger"
)

func newTestSessionStorage(t *testing.T) *SessionStorage {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSessionStorage(db, logger.NewNop())
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func sampleReading(co2 int, phase airquality.FlightPhase) *airquality.Reading {
	p := phase
	return &airquality.Reading{
		ID:          "r-" + string(phase),
		CO2:         co2,
		Temperature: f64Ptr(22.5),
		Humidity:    f64Ptr(18),
		Pressure:    f64Ptr(812.3),
		Battery:     f64Ptr(88),
		Timestamp:   time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Source:      airquality.DeviceAranet4,
		FlightPhase: &p,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	storage := newTestSessionStorage(t)

	sess := session.New()
	sess.Airline = strPtr("QF")
	sess.FlightNumber = strPtr("QF12")
	sess.Seat = strPtr("34A")
	sess.HydrationMl = 500
	sess.CurrentPhase = airquality.PhaseCruise
	sess.Append(sampleReading(950, airquality.PhaseBoarding))
	sess.Append(sampleReading(1600, airquality.PhaseCruise))

	require.NoError(t, storage.SaveSession(sess))

	loaded, err := storage.GetSession(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, airquality.PhaseCruise, loaded.CurrentPhase)
	require.NotNil(t, loaded.Airline)
	assert.Equal(t, "QF", *loaded.Airline)
	require.NotNil(t, loaded.Seat)
	assert.Equal(t, "34A", *loaded.Seat)
	assert.Equal(t, 500, loaded.HydrationMl)
	assert.Nil(t, loaded.EndTime)

	require.Len(t, loaded.Readings, 2)
	assert.Equal(t, 950, loaded.Readings[0].CO2)
	assert.Equal(t, 1600, loaded.Readings[1].CO2)
	require.NotNil(t, loaded.Readings[1].Temperature)
	assert.InDelta(t, 22.5, *loaded.Readings[1].Temperature, 0.001)
	require.NotNil(t, loaded.Readings[0].FlightPhase)
	assert.Equal(t, airquality.PhaseBoarding, *loaded.Readings[0].FlightPhase)
}

func TestSessionOptionalFieldsStayNil(t *testing.T) {
	storage := newTestSessionStorage(t)

	sess := session.New()
	require.NoError(t, storage.SaveSession(sess))

	loaded, err := storage.GetSession(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Nil(t, loaded.Airline)
	assert.Nil(t, loaded.FlightNumber)
	assert.Nil(t, loaded.Seat)
	assert.Empty(t, loaded.Readings)
}

func TestActiveSessionExcludedFromArchive(t *testing.T) {
	storage := newTestSessionStorage(t)

	active := session.New()
	require.NoError(t, storage.SaveSession(active))

	archived, err := storage.GetSessions()
	require.NoError(t, err)
	assert.Empty(t, archived)

	restored, err := storage.GetActiveSession()
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, active.ID, restored.ID)
}

func TestEndingSessionMovesItToArchive(t *testing.T) {
	storage := newTestSessionStorage(t)

	sess := session.New()
	require.NoError(t, storage.SaveSession(sess))

	sess.End(sess.StartTime.Add(2 * time.Hour))
	require.NoError(t, storage.SaveSession(sess))

	restored, err := storage.GetActiveSession()
	require.NoError(t, err)
	assert.Nil(t, restored)

	archived, err := storage.GetSessions()
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.NotNil(t, archived[0].EndTime)
	assert.Equal(t, sess.EndTime.Unix(), archived[0].EndTime.Unix())
}

func TestSessionsOrderedMostRecentFirst(t *testing.T) {
	storage := newTestSessionStorage(t)

	older := session.New()
	older.StartTime = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	older.End(older.StartTime.Add(time.Hour))
	require.NoError(t, storage.SaveSession(older))

	newer := session.New()
	newer.StartTime = time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC)
	newer.End(newer.StartTime.Add(time.Hour))
	require.NoError(t, storage.SaveSession(newer))

	archived, err := storage.GetSessions()
	require.NoError(t, err)
	require.Len(t, archived, 2)
	assert.Equal(t, newer.ID, archived[0].ID)
	assert.Equal(t, older.ID, archived[1].ID)
}

func TestUpsertOverwritesSnapshot(t *testing.T) {
	storage := newTestSessionStorage(t)

	sess := session.New()
	require.NoError(t, storage.SaveSession(sess))

	sess.Append(sampleReading(1200, airquality.PhaseTaxi))
	sess.HydrationMl = 250
	sess.CurrentPhase = airquality.PhaseTaxi
	require.NoError(t, storage.SaveSession(sess))

	loaded, err := storage.GetSession(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Readings, 1)
	assert.Equal(t, 250, loaded.HydrationMl)
	assert.Equal(t, airquality.PhaseTaxi, loaded.CurrentPhase)
}

func TestGetSessionNotFound(t *testing.T) {
	storage := newTestSessionStorage(t)

	loaded, err := storage.GetSession("nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteSession(t *testing.T) {
	storage := newTestSessionStorage(t)

	sess := session.New()
	sess.End(time.Now())
	require.NoError(t, storage.SaveSession(sess))

	require.NoError(t, storage.DeleteSession(sess.ID))

	loaded, err := storage.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting a missing session is not an error
	assert.NoError(t, storage.DeleteSession("nope"))
}
