package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

func TestCredential_IsWellFormed(t *testing.T) {
	tests := []struct {
		credential model.Credential
		want       bool
	}{
		{"Bearer tok123", true},
		{"Bearer ", true},
		{"Bearer   ", true},
		{"", false},
		{"tok123", false},
		{"bearer tok123", false},
		{"Bearer", false},
		{"Basic dXNlcjpwdw==", false},
	}

	for _, tc := range tests {
		t.Run(string(tc.credential), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.credential.IsWellFormed())
		})
	}
}
