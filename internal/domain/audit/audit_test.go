package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestStampCreate(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	f := StampCreate(Fields{}, userID, fixedClock(now))

	assert.Equal(t, userID, f.CreatedBy)
	assert.Equal(t, userID, f.UpdatedBy)
	assert.Equal(t, now, f.CreatedAt)
	assert.Equal(t, now, f.UpdatedAt)
}

func TestStampUpdate_PreservesCreator(t *testing.T) {
	creator := uuid.New()
	editor := uuid.New()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	edited := created.Add(2 * time.Hour)

	original := StampCreate(Fields{}, creator, fixedClock(created))
	f := StampUpdate(original, editor, fixedClock(edited))

	assert.Equal(t, creator, f.CreatedBy)
	assert.Equal(t, created, f.CreatedAt)
	assert.Equal(t, editor, f.UpdatedBy)
	assert.Equal(t, edited, f.UpdatedAt)

	// input is passed by value
	assert.Equal(t, creator, original.UpdatedBy)
}

func TestSystemClock_IsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock().Location())
}
