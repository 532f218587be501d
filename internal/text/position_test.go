package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionCompare(t *testing.T) {
	cases := []struct {
		name string
		p, q Position
		want int
	}{
		{"equal", Position{1, 2}, Position{1, 2}, 0},
		{"row wins over column", Position{0, 9}, Position{1, 0}, -1},
		{"column breaks row tie", Position{1, 3}, Position{1, 2}, 1},
		{"earlier column", Position{2, 1}, Position{2, 5}, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.p.Compare(tc.q))
			assert.Equal(t, -tc.want, tc.q.Compare(tc.p))
		})
	}
}

func TestNewRange_NormalizesEndpoints(t *testing.T) {
	r := NewRange(Position{1, 0}, Position{0, 4})
	assert.Equal(t, Position{0, 4}, r.Start)
	assert.Equal(t, Position{1, 0}, r.End)
	assert.False(t, r.IsEmpty())

	empty := NewRange(Position{2, 2}, Position{2, 2})
	assert.True(t, empty.IsEmpty())
}
