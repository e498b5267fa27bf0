package model

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestNewFriendRequestOrdersPair(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	fr := NewFriendRequest(7, 3, now)
	assert.Equal(t, uint(7), fr.SenderID)
	assert.Equal(t, uint(3), fr.RecipientID)
	assert.Equal(t, uint(3), fr.PairLow)
	assert.Equal(t, uint(7), fr.PairHigh)
	assert.False(t, fr.Accepted)
	assert.Equal(t, now, fr.CreatedAt)

	reverse := NewFriendRequest(3, 7, now)
	assert.Equal(t, fr.PairLow, reverse.PairLow)
	assert.Equal(t, fr.PairHigh, reverse.PairHigh)
}

func TestBoolColumnsHaveNoDefault(t *testing.T) {
	for _, m := range []interface{}{&User{}, &FriendRequest{}} {
		s, err := schema.Parse(m, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, f := range s.Fields {
			if f.FieldType.Kind() != reflect.Bool {
				continue
			}
			assert.False(t, f.HasDefaultValue, "%s.%s", s.Name, f.Name)
		}
	}
}
