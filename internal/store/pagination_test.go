package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Limit: 20}},
		{"caps limit", Page{Limit: 500, Offset: 10}, Page{Limit: 100, Offset: 10}},
		{"negative offset", Page{Limit: 5, Offset: -3}, Page{Limit: 5}},
		{"untouched", Page{Limit: 7, Offset: 14}, Page{Limit: 7, Offset: 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(20, 100))
		})
	}
}
