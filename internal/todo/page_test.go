package todo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Size(t *testing.T) {
	tests := []struct {
		name  string
		limit *uint32
		want  int
	}{
		{"default", nil, DefaultLimit},
		{"zero", ptr(uint32(0)), 0},
		{"within bound", ptr(uint32(5)), 5},
		{"at max", ptr(uint32(MaxLimit)), MaxLimit},
		{"clamped", ptr(uint32(1000)), MaxLimit},
		{"clamped max uint32", ptr(uint32(math.MaxUint32)), MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Page{Limit: tt.limit}.Size())
		})
	}
}

func TestPage_Lower(t *testing.T) {
	id, ok := Page{}.Lower()
	assert.True(t, ok)
	assert.Equal(t, uint64(0), id)

	id, ok = After(4, 10).Lower()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), id)

	_, ok = After(math.MaxUint64, 10).Lower()
	assert.False(t, ok, "nothing can follow the largest id")
}

func TestPage_Constructors(t *testing.T) {
	p := First(3)
	assert.Nil(t, p.StartAfter)
	assert.Equal(t, 3, p.Size())

	p = After(9, 2)
	assert.Equal(t, uint64(9), *p.StartAfter)
	assert.Equal(t, 2, p.Size())
}
